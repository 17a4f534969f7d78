package context

import "github.com/pkoukk/tiktoken-go"

// TokenCounter counts tokens the way a downstream LLM call would be
// billed, so a token budget means the same thing here as it does to the
// caller spending it.
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenCounter returns a counter using the cl100k_base encoding shared
// by the GPT-3.5/4 family, the same choice the reference adapter makes.
func NewTokenCounter() (*TokenCounter, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, err
	}
	return &TokenCounter{encoding: enc}, nil
}

// Count returns the token count of text, or a rune-count estimate if no
// encoding was loaded.
func (tc *TokenCounter) Count(text string) int {
	if tc == nil || tc.encoding == nil {
		return estimateTokens(text)
	}
	return len(tc.encoding.Encode(text, nil, nil))
}

// TruncateToTokens returns the longest whole-line prefix of text whose
// token count does not exceed maxTokens, per spec §4.11's truncation rule
// ("truncated to a whole-line prefix").
func (tc *TokenCounter) TruncateToTokens(text string, maxTokens int) (string, bool) {
	if tc.Count(text) <= maxTokens {
		return text, false
	}
	lines := splitLines(text)
	var kept []string
	for _, line := range lines {
		candidate := append(kept, line)
		if tc.Count(joinLines(candidate)) > maxTokens {
			break
		}
		kept = candidate
	}
	return joinLines(kept), true
}

func estimateTokens(text string) int {
	return len([]rune(text)) / 3
}

func splitLines(text string) []string {
	var lines []string
	start := 0
	for i, r := range text {
		if r == '\n' {
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	lines = append(lines, text[start:])
	return lines
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}
