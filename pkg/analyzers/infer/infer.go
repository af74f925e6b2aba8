// Package infer synthesizes short natural-language descriptions for
// undocumented Python declarations from their names and method lists.
package infer

import (
	"strings"
)

// Dictionary resolves a word to the definition of its first sense.
type Dictionary interface {
	Lookup(word string) (definition string, ok bool)
}

// Inferencer turns identifiers into purpose phrases. A nil Dictionary means
// no lexicon is configured and raw name tokens are used.
type Inferencer struct {
	dict Dictionary
}

// New creates an Inferencer backed by dict, which may be nil.
func New(dict Dictionary) *Inferencer {
	return &Inferencer{dict: dict}
}

// InferPurpose describes identifier by looking up each of its name tokens.
// Tokens the dictionary does not know are used verbatim. The second result
// is false only when the identifier has no tokens.
func (inf *Inferencer) InferPurpose(identifier string) (string, bool) {
	tokens := Tokenize(identifier)
	if len(tokens) == 0 {
		return "", false
	}

	parts := make([]string, 0, len(tokens))

	for _, token := range tokens {
		parts = append(parts, inf.define(token))
	}

	return strings.Join(parts, " "), true
}

func (inf *Inferencer) define(token string) string {
	if inf == nil || inf.dict == nil {
		return token
	}

	definition, ok := inf.dict.Lookup(strings.ToLower(token))
	if !ok || definition == "" {
		return token
	}

	return definition
}

// MapDictionary is an in-memory Dictionary keyed by lower-case word.
type MapDictionary map[string]string

// Lookup implements Dictionary.
func (d MapDictionary) Lookup(word string) (string, bool) {
	definition, ok := d[strings.ToLower(word)]

	return definition, ok
}
