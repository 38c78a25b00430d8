package tokenizer

import (
	"errors"
	"fmt"
)

// ErrUnknownLocale indicates a locale tag the encoder has no marker id for.
var ErrUnknownLocale = errors.New("unknown locale tag")

// LocaleEncoder produces fixed-length token sequences with a language marker
// at index 0, the contract every training batch is built on.
//
// Marker ids are allocated directly above the base vocabulary, one per
// locale tag in the order given at construction. The marker overwrites
// whatever the underlying tokenizer produced at index 0, unconditionally.
type LocaleEncoder struct {
	tok     Tokenizer
	pad     int32
	markers map[string]int32
}

// NewLocaleEncoder wraps a Tokenizer with marker ids for the given locale
// tags. The tag order must be stable across processes, since it determines
// each language's marker id.
func NewLocaleEncoder(tok Tokenizer, localeTags []string) *LocaleEncoder {
	pad := tok.PadToken()
	if pad < 0 {
		pad = 0
	}

	base := int32(tok.VocabSize()) //nolint:gosec // G115: vocab size < 2^31.
	markers := make(map[string]int32, len(localeTags))
	for i, tag := range localeTags {
		markers[tag] = base + int32(i) //nolint:gosec // G115: tag count is tiny.
	}

	return &LocaleEncoder{
		tok:     tok,
		pad:     pad,
		markers: markers,
	}
}

// MarkerID returns the marker token id for a locale tag.
func (e *LocaleEncoder) MarkerID(localeTag string) (int32, error) {
	id, ok := e.markers[localeTag]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLocale, localeTag)
	}
	return id, nil
}

// PadToken returns the padding id used to fill short sequences.
func (e *LocaleEncoder) PadToken() int32 {
	return e.pad
}

// VocabSize returns the vocabulary size including the marker ids.
func (e *LocaleEncoder) VocabSize() int {
	return e.tok.VocabSize() + len(e.markers)
}

// EncodeFixed tokenizes text into exactly maxLen ids: over-length input is
// silently truncated, short input padded, and index 0 is overwritten with
// the locale marker.
func (e *LocaleEncoder) EncodeFixed(text, localeTag string, maxLen int) ([]int32, error) {
	if maxLen < 1 {
		return nil, fmt.Errorf("max length must be >= 1, got %d", maxLen)
	}

	marker, err := e.MarkerID(localeTag)
	if err != nil {
		return nil, err
	}

	ids, err := e.tok.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("encode failed: %w", err)
	}

	out := make([]int32, maxLen)
	n := copy(out, ids)
	for i := n; i < maxLen; i++ {
		out[i] = e.pad
	}
	out[0] = marker
	return out, nil
}
