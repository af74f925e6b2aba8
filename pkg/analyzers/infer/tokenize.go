package infer

import (
	"unicode"
)

// Tokenize splits an identifier into name tokens. A token is a capitalized
// or lower-case word ("Get", "value"), an upper-case run that ends where a
// new capitalized word, a digit, a non-word character or the end of input
// begins ("HTTP" in "HTTPServer"), or a run of digits. Characters that start
// none of these are skipped, so an underscore-only identifier has no tokens.
func Tokenize(identifier string) []string {
	runes := []rune(identifier)

	var tokens []string

	for pos := 0; pos < len(runes); {
		end := matchAt(runes, pos)
		if end <= pos {
			pos++

			continue
		}

		tokens = append(tokens, string(runes[pos:end]))
		pos = end
	}

	return tokens
}

// matchAt returns the end of the token starting at pos, or pos when no
// token starts there. Alternatives are tried in order: word, upper-case
// run, digit run.
func matchAt(runes []rune, pos int) int {
	if end := matchWord(runes, pos); end > pos {
		return end
	}

	if end := matchUpperRun(runes, pos); end > pos {
		return end
	}

	return matchDigits(runes, pos)
}

func matchWord(runes []rune, pos int) int {
	start := pos
	if isUpper(runes, start) && isLower(runes, start+1) {
		start++
	}

	end := start
	for isLower(runes, end) {
		end++
	}

	if end == start {
		return pos
	}

	return end
}

func matchUpperRun(runes []rune, pos int) int {
	end := pos
	for isUpper(runes, end) {
		end++
	}

	// Give back upper-case letters until the boundary condition holds.
	for ; end > pos; end-- {
		if upperRunBoundary(runes, end) {
			return end
		}
	}

	return pos
}

func upperRunBoundary(runes []rune, pos int) bool {
	if pos >= len(runes) {
		return true
	}

	if isUpper(runes, pos) && isLower(runes, pos+1) {
		return true
	}

	r := runes[pos]

	return unicode.IsDigit(r) || !isWordRune(r)
}

func matchDigits(runes []rune, pos int) int {
	end := pos
	for end < len(runes) && unicode.IsDigit(runes[end]) {
		end++
	}

	return end
}

func isUpper(runes []rune, pos int) bool {
	return pos < len(runes) && runes[pos] >= 'A' && runes[pos] <= 'Z'
}

func isLower(runes []rune, pos int) bool {
	return pos < len(runes) && runes[pos] >= 'a' && runes[pos] <= 'z'
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
