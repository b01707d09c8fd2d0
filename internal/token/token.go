package token

import "strings"

// Tokenize splits text into lowercase alphanumeric tokens in order of appearance.
func Tokenize(text string) []string {
	tokens := make([]string, 0, len(text)/6)

	start := -1
	for i := 0; i < len(text); i++ {
		if isAlnum(text[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, strings.ToLower(text[start:i]))
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, strings.ToLower(text[start:]))
	}

	return tokens
}

// Frequencies counts the occurrences of each token.
func Frequencies(tokens []string) map[string]int {
	tf := make(map[string]int, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return tf
}

// TermFrequencies is Frequencies(Tokenize(text)).
func TermFrequencies(text string) map[string]int {
	return Frequencies(Tokenize(text))
}

// isAlnum reports whether b is an ASCII letter or digit.
// Bytes of multi-byte UTF-8 sequences are always >= 0x80 and therefore separators.
func isAlnum(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}
