// Package tokenizer provides the public API for text encoding in the MNMT
// pipeline.
//
// The pipeline treats tokenization as an opaque text-to-token-ids contract;
// two implementations are provided (tiktoken BPE and SentencePiece), and
// LocaleEncoder layers the multilingual batch contract on top: fixed-length
// sequences with a per-language marker id at index 0.
//
// Example:
//
//	tok, err := tokenizer.NewTikToken("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	enc := tokenizer.NewLocaleEncoder(tok, lang.LocaleTagList())
//	ids, err := enc.EncodeFixed("hello world", "en_XX", 40)
package tokenizer

import (
	"github.com/IanYHWu/mnmt/internal/tokenizer"
)

// Tokenizer is the core interface for text tokenization.
type Tokenizer = tokenizer.Tokenizer

// LocaleEncoder produces fixed-length sequences with a language marker at
// index 0, the contract every training batch is built on.
type LocaleEncoder = tokenizer.LocaleEncoder

// ErrUnknownLocale indicates a locale tag the encoder has no marker id for.
var ErrUnknownLocale = tokenizer.ErrUnknownLocale

// NewTikToken creates a tiktoken BPE tokenizer with the specified encoding.
//
// Supported encodings: "cl100k_base", "p50k_base".
func NewTikToken(encodingName string) (Tokenizer, error) {
	return tokenizer.NewTikToken(encodingName)
}

// NewSentencePiece loads a SentencePiece model proto from disk, the
// mBART-style multilingual tokenizer path.
func NewSentencePiece(modelPath string) (Tokenizer, error) {
	return tokenizer.NewSentencePiece(modelPath)
}

// NewLocaleEncoder wraps a Tokenizer with marker ids for the given locale
// tags.
func NewLocaleEncoder(tok Tokenizer, localeTags []string) *LocaleEncoder {
	return tokenizer.NewLocaleEncoder(tok, localeTags)
}
