package infer

import (
	"strings"

	"github.com/Sumatoshi-tech/autodoc/pkg/alg/mapx"
)

// Functionality tags derived from method-name prefixes.
const (
	TagRetrievesData        = "retrieves data"
	TagModifiesData         = "modifies data"
	TagChecksConditions     = "checks conditions"
	TagPerformsCalculations = "performs calculations"
)

// Separator joins functionality tags.
const Separator = ", "

type prefixRule struct {
	tag      string
	prefixes []string
}

// First matching rule wins for a given method name.
var prefixRules = []prefixRule{
	{tag: TagRetrievesData, prefixes: []string{"get"}},
	{tag: TagModifiesData, prefixes: []string{"set"}},
	{tag: TagChecksConditions, prefixes: []string{"is", "has"}},
	{tag: TagPerformsCalculations, prefixes: []string{"calc", "compute"}},
}

// MethodTags returns the distinct functionality tags implied by method-name
// prefixes, in order of first appearance. Prefix matching is case-sensitive.
func MethodTags(methodNames []string) []string {
	var tags mapx.OrderedSet[string]

	for _, name := range methodNames {
		if tag, ok := methodTag(name); ok {
			tags.Add(tag)
		}
	}

	return tags.Values()
}

// MethodFunctionality joins MethodTags with Separator. Empty when no method
// matches.
func MethodFunctionality(methodNames []string) string {
	return strings.Join(MethodTags(methodNames), Separator)
}

func methodTag(name string) (string, bool) {
	for _, rule := range prefixRules {
		for _, prefix := range rule.prefixes {
			if strings.HasPrefix(name, prefix) {
				return rule.tag, true
			}
		}
	}

	return "", false
}

// CallTag describes a call site: "calls name" for a direct call and
// "uses attr" for a method-style call.
func CallTag(callee string, method bool) string {
	if method {
		return "uses " + callee
	}

	return "calls " + callee
}
