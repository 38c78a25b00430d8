package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordTok is a trivial whitespace tokenizer for tests: every distinct word
// gets the next free id. Deterministic within a single instance.
type wordTok struct {
	vocab map[string]int32
	words []string
	size  int
}

func newWordTok(size int) *wordTok {
	return &wordTok{vocab: make(map[string]int32), size: size}
}

func (w *wordTok) Encode(text string) ([]int32, error) {
	var ids []int32
	for _, word := range strings.Fields(text) {
		id, ok := w.vocab[word]
		if !ok {
			id = int32(1 + len(w.words)) // 0 reserved for padding
			w.vocab[word] = id
			w.words = append(w.words, word)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (w *wordTok) Decode(tokens []int32) (string, error) {
	var words []string
	for _, id := range tokens {
		if id >= 1 && int(id) <= len(w.words) {
			words = append(words, w.words[id-1])
		}
	}
	return strings.Join(words, " "), nil
}

func (w *wordTok) VocabSize() int { return w.size }

func (w *wordTok) PadToken() int32 { return 0 }

func TestEncodeFixedLengthAndMarker(t *testing.T) {
	enc := NewLocaleEncoder(newWordTok(1000), []string{"az_AZ", "en_XX", "tr_TR"})

	ids, err := enc.EncodeFixed("hello world", "en_XX", 8)
	require.NoError(t, err)
	require.Len(t, ids, 8)

	marker, err := enc.MarkerID("en_XX")
	require.NoError(t, err)
	assert.Equal(t, marker, ids[0], "index 0 must carry the locale marker")

	// Padded tail.
	for i := 2; i < 8; i++ {
		assert.Equal(t, int32(0), ids[i], "position %d should be padding", i)
	}
}

func TestEncodeFixedTruncatesSilently(t *testing.T) {
	enc := NewLocaleEncoder(newWordTok(1000), []string{"en_XX"})

	ids, err := enc.EncodeFixed("a b c d e f g h i j", "en_XX", 4)
	require.NoError(t, err)
	require.Len(t, ids, 4)

	marker, _ := enc.MarkerID("en_XX")
	assert.Equal(t, marker, ids[0])
	for _, id := range ids[1:] {
		assert.NotEqual(t, int32(0), id, "truncated sequence should have no padding")
	}
}

func TestEncodeFixedMarkerOverwritesFirstToken(t *testing.T) {
	tok := newWordTok(1000)
	enc := NewLocaleEncoder(tok, []string{"en_XX"})

	// Single-token input: the marker must replace it, not prepend.
	ids, err := enc.EncodeFixed("solo", "en_XX", 2)
	require.NoError(t, err)

	marker, _ := enc.MarkerID("en_XX")
	assert.Equal(t, []int32{marker, 0}, ids)
}

func TestEncodeFixedUnknownLocale(t *testing.T) {
	enc := NewLocaleEncoder(newWordTok(1000), []string{"en_XX"})

	_, err := enc.EncodeFixed("hello", "zz_ZZ", 8)
	assert.ErrorIs(t, err, ErrUnknownLocale)
}

func TestMarkerIDsAboveVocab(t *testing.T) {
	tags := []string{"az_AZ", "en_XX", "tr_TR"}
	enc := NewLocaleEncoder(newWordTok(500), tags)

	seen := make(map[int32]bool)
	for i, tag := range tags {
		id, err := enc.MarkerID(tag)
		require.NoError(t, err)
		assert.Equal(t, int32(500+i), id)
		assert.False(t, seen[id], "marker ids must be distinct")
		seen[id] = true
	}
	assert.Equal(t, 503, enc.VocabSize())
}

func TestPadTokenFallback(t *testing.T) {
	// A tokenizer reporting no pad token falls back to 0.
	enc := NewLocaleEncoder(&noPadTok{}, []string{"en_XX"})
	assert.Equal(t, int32(0), enc.PadToken())
}

type noPadTok struct{}

func (*noPadTok) Encode(string) ([]int32, error) { return []int32{7}, nil }
func (*noPadTok) Decode([]int32) (string, error) { return "", nil }
func (*noPadTok) VocabSize() int                 { return 10 }
func (*noPadTok) PadToken() int32                { return -1 }
