package tokenizer

import (
	"fmt"

	esentencepiece "github.com/eliben/go-sentencepiece"
)

// SentencePiece wraps the eliben/go-sentencepiece processor as a Tokenizer.
//
// This is the mBART-style path: a single multilingual SentencePiece model
// file shared by all languages, with the pad id taken from the model proto.
type SentencePiece struct {
	proc *esentencepiece.Processor
	info *esentencepiece.ModelInfo
}

// NewSentencePiece loads a SentencePiece model proto from disk.
func NewSentencePiece(modelPath string) (*SentencePiece, error) {
	proc, err := esentencepiece.NewProcessorFromPath(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load sentencepiece model %q: %w", modelPath, err)
	}

	return &SentencePiece{
		proc: proc,
		info: proc.ModelInfo(),
	}, nil
}

// Encode converts text to token IDs.
func (s *SentencePiece) Encode(text string) ([]int32, error) {
	tokens := s.proc.Encode(text)

	result := make([]int32, len(tokens))
	for i, tok := range tokens {
		result[i] = int32(tok.ID) //nolint:gosec // G115: token ids fit in int32.
	}
	return result, nil
}

// Decode converts token IDs back to text.
func (s *SentencePiece) Decode(tokens []int32) (string, error) {
	intTokens := make([]int, len(tokens))
	for i, tok := range tokens {
		intTokens[i] = int(tok)
	}
	return s.proc.Decode(intTokens), nil
}

// VocabSize returns the total vocabulary size.
func (s *SentencePiece) VocabSize() int {
	return s.info.VocabularySize
}

// PadToken returns the model's padding token id, or -1 if it reserves none.
func (s *SentencePiece) PadToken() int32 {
	return int32(s.info.PadID) //nolint:gosec // G115: token ids fit in int32.
}
