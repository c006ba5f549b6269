package vectorstore

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// tokenEncoding is the tokenizer shared by OpenAI embedding models.
const tokenEncoding = "cl100k_base"

// truncator caps texts at a token budget before they are embedded.
type truncator struct {
	encoding  *tiktoken.Tiktoken
	maxTokens int
}

func newTruncator(maxTokens int) (*truncator, error) {
	encoding, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding: %w", err)
	}
	return &truncator{encoding: encoding, maxTokens: maxTokens}, nil
}

// Truncate returns text cut to at most maxTokens tokens.
func (t *truncator) Truncate(text string) string {
	tokens := t.encoding.Encode(text, nil, nil)
	if len(tokens) <= t.maxTokens {
		return text
	}
	return t.encoding.Decode(tokens[:t.maxTokens])
}
