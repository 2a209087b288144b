package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const (
	encodingName = "cl100k_base"
	// runesPerToken approximates the token count when no encoder is available.
	runesPerToken = 4
)

var (
	tk     *tiktoken.Tiktoken
	tkErr  error
	tkOnce sync.Once
)

func getTokenizer() (*tiktoken.Tiktoken, error) {
	tkOnce.Do(func() {
		tk, tkErr = tiktoken.GetEncoding(encodingName)
	})
	return tk, tkErr
}

// Count returns the number of cl100k tokens in text, or a rune-based
// estimate when the encoding cannot be loaded.
func Count(text string) int {
	if text == "" {
		return 0
	}
	enc, err := getTokenizer()
	if err != nil {
		return (len([]rune(text)) + runesPerToken - 1) / runesPerToken
	}
	return len(enc.Encode(text, nil, nil))
}

// Truncate keeps the first max tokens of text. max <= 0 disables truncation.
func Truncate(text string, max int) string {
	if max <= 0 || text == "" {
		return text
	}

	enc, err := getTokenizer()
	if err != nil {
		runes := []rune(text)
		if len(runes) <= max*runesPerToken {
			return text
		}
		return string(runes[:max*runesPerToken])
	}

	ids := enc.Encode(text, nil, nil)
	if len(ids) <= max {
		return text
	}
	return enc.Decode(ids[:max])
}
