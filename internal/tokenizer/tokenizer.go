// Package tokenizer provides the text encoding boundary for the MNMT
// pipeline: an opaque text-to-token-ids contract, concrete implementations
// backed by tiktoken and SentencePiece, and the locale-aware fixed-length
// encoder used to build training batches.
package tokenizer

// Tokenizer is the core interface for text tokenization.
//
// The pipeline depends only on this contract, not on any particular
// vocabulary or subword algorithm.
type Tokenizer interface {
	// Encode converts text to token IDs.
	Encode(text string) ([]int32, error)

	// Decode converts token IDs back to text.
	Decode(tokens []int32) (string, error)

	// VocabSize returns the total vocabulary size. Locale marker ids are
	// allocated directly above it.
	VocabSize() int

	// PadToken returns the padding token ID.
	// Returns -1 if the vocabulary reserves none.
	PadToken() int32
}
