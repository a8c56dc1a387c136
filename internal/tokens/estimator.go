// Package tokens estimates prompt token counts for observability. OpenAI
// models get exact tiktoken counts; everything else falls back to a
// character-based estimate.
package tokens

import (
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// charsPerToken is the fallback ratio for models without a known encoding.
const charsPerToken = 4

// Estimator counts tokens for outbound prompts. Safe for concurrent use.
type Estimator struct {
	mu     sync.Mutex
	codecs map[tokenizer.Encoding]tokenizer.Codec
}

// NewEstimator creates an estimator with an empty codec cache.
func NewEstimator() *Estimator {
	return &Estimator{codecs: make(map[tokenizer.Encoding]tokenizer.Codec)}
}

// Estimate returns the token count of text for the given model. Counts are
// exact for OpenAI models and approximate otherwise; either way the result
// is only used for logging, never for call semantics.
func (e *Estimator) Estimate(model, text string) int {
	if enc, ok := encodingFor(model); ok {
		if codec := e.codec(enc); codec != nil {
			if ids, _, err := codec.Encode(text); err == nil {
				return len(ids)
			}
		}
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}

func (e *Estimator) codec(enc tokenizer.Encoding) tokenizer.Codec {
	e.mu.Lock()
	defer e.mu.Unlock()

	if codec, ok := e.codecs[enc]; ok {
		return codec
	}
	codec, err := tokenizer.Get(enc)
	if err != nil {
		return nil
	}
	e.codecs[enc] = codec
	return codec
}

// encodingFor maps model names to tiktoken encodings. Non-OpenAI models
// (e.g. Gemini) have no public tokenizer, so they report no encoding and
// use the character estimate.
func encodingFor(model string) (tokenizer.Encoding, bool) {
	model = strings.ToLower(model)
	switch {
	case strings.HasPrefix(model, "gpt-4o"):
		return tokenizer.O200kBase, true
	case strings.HasPrefix(model, "gpt-"):
		return tokenizer.Cl100kBase, true
	default:
		return "", false
	}
}
