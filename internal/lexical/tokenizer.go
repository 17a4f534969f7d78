package lexical

import "strings"

// Tokenize splits text into BM25 index terms: the full identifier survives
// alongside camelCase/snake_case subtokens, so a query for either the whole
// name or one of its parts matches. Single-character tokens are dropped as
// noise.
func Tokenize(text string) []string {
	var tokens []string
	for _, word := range splitNonIdentifier(text) {
		if word == "" {
			continue
		}
		lower := strings.ToLower(word)
		if len(lower) > 1 {
			tokens = append(tokens, lower)
		}
		tokens = append(tokens, subtokens(word)...)
	}
	return tokens
}

// splitNonIdentifier breaks text on runs of characters that are neither
// letters, digits, nor underscores, preserving underscore-joined
// identifiers as single words for subtokens() to split further.
func splitNonIdentifier(text string) []string {
	var words []string
	var cur strings.Builder
	for _, r := range text {
		if isIdentifierRune(r) {
			cur.WriteRune(r)
			continue
		}
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		words = append(words, cur.String())
	}
	return words
}

func isIdentifierRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}

// subtokens splits a single identifier word into its camelCase and
// snake_case parts, lowercased. The word itself (already emitted by the
// caller) is not repeated here.
func subtokens(word string) []string {
	parts := strings.Split(word, "_")
	var out []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		for _, piece := range splitCamelCase(part) {
			lower := strings.ToLower(piece)
			if len(lower) > 1 {
				out = append(out, lower)
			}
		}
	}
	if len(parts) == 1 && len(out) <= 1 {
		// No snake_case boundary and camelCase split produced nothing new
		// beyond the whole word; don't emit a redundant duplicate.
		return nil
	}
	return out
}

func splitCamelCase(s string) []string {
	var pieces []string
	var cur strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && r >= 'A' && r <= 'Z' && runes[i-1] >= 'a' && runes[i-1] <= 'z' {
			pieces = append(pieces, cur.String())
			cur.Reset()
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		pieces = append(pieces, cur.String())
	}
	return pieces
}
