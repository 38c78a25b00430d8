package corpus

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IanYHWu/mnmt/internal/lang"
	"github.com/IanYHWu/mnmt/internal/tokenizer"
)

// wordTok assigns each distinct word the next free id, starting at 1.
type wordTok struct {
	vocab map[string]int32
	words []string
}

func newWordTok() *wordTok {
	return &wordTok{vocab: make(map[string]int32)}
}

func (w *wordTok) Encode(text string) ([]int32, error) {
	var ids []int32
	for _, word := range strings.Fields(text) {
		id, ok := w.vocab[word]
		if !ok {
			id = int32(1 + len(w.words))
			w.vocab[word] = id
			w.words = append(w.words, word)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (w *wordTok) Decode([]int32) (string, error) { return "", nil }
func (w *wordTok) VocabSize() int                 { return 1000 }
func (w *wordTok) PadToken() int32                { return 0 }

func testEncoder() *tokenizer.LocaleEncoder {
	return tokenizer.NewLocaleEncoder(newWordTok(), lang.LocaleTagList())
}

// memCatalog serves fixed splits and records every lookup key.
type memCatalog struct {
	corpora map[string]Splits // key: name or name/pairKey
	lookups []string
}

func (c *memCatalog) Load(name, pairKey string) (Splits, error) {
	key := name
	if pairKey != "" {
		key += "/" + pairKey
	}
	c.lookups = append(c.lookups, key)
	splits, ok := c.corpora[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCorpusUnavailable, key)
	}
	return splits, nil
}

func multiExamples(n int) []Example {
	examples := make([]Example, n)
	for i := range examples {
		examples[i] = Example{
			"en": fmt.Sprintf("english sentence %d", i),
			"tr": fmt.Sprintf("turkish sentence %d", i),
			"az": fmt.Sprintf("azeri sentence %d", i),
		}
	}
	return examples
}

func testParams(batchSize, maxLen int) Params {
	return Params{Enc: testEncoder(), BatchSize: batchSize, MaxLen: maxLen, Seed: 7}
}

func TestMultiParallelLoadSplit(t *testing.T) {
	cat := &memCatalog{corpora: map[string]Splits{
		"ted_multi": {SplitTrain: multiExamples(10)},
	}}

	m, err := NewMultiParallel(cat, "ted_multi", lang.NewPair("en", "tr"), testParams(4, 16))
	require.NoError(t, err)

	src, n, err := m.LoadSplit(SplitTrain, false)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	it := src.Iter()
	batch, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, 4, batch.Size)
	assert.True(t, batch.Seqs["en"].Shape().Equal([]int{4, 16}))
	assert.True(t, batch.Seqs["tr"].Shape().Equal([]int{4, 16}))
}

func TestMultiParallelDropsIncompleteExamples(t *testing.T) {
	examples := multiExamples(6)
	delete(examples[1], "tr")
	examples[4]["en"] = ""

	cat := &memCatalog{corpora: map[string]Splits{
		"ted_multi": {SplitTrain: examples},
	}}

	m, err := NewMultiParallel(cat, "ted_multi", lang.NewPair("en", "tr"), testParams(8, 16))
	require.NoError(t, err)

	_, n, err := m.LoadSplit(SplitTrain, false)
	require.NoError(t, err)
	assert.Equal(t, 4, n, "examples missing a requested language must be dropped")
}

func TestMultiParallelMarkerAtIndexZero(t *testing.T) {
	cat := &memCatalog{corpora: map[string]Splits{
		"ted_multi": {SplitTrain: multiExamples(3)},
	}}
	params := testParams(3, 12)

	m, err := NewMultiParallel(cat, "ted_multi", lang.NewPair("en", "tr"), params)
	require.NoError(t, err)

	src, _, err := m.LoadSplit(SplitTrain, false)
	require.NoError(t, err)

	batch, err := src.Iter().Next()
	require.NoError(t, err)

	enMarker, err := params.Enc.MarkerID("en_XX")
	require.NoError(t, err)
	trMarker, err := params.Enc.MarkerID("tr_TR")
	require.NoError(t, err)

	en := batch.Seqs["en"].AsInt32()
	tr := batch.Seqs["tr"].AsInt32()
	for i := 0; i < batch.Size; i++ {
		assert.Equal(t, enMarker, en[i*12], "row %d en marker", i)
		assert.Equal(t, trMarker, tr[i*12], "row %d tr marker", i)
	}
}

func TestIteratorExhaustionAndPartialBatch(t *testing.T) {
	cat := &memCatalog{corpora: map[string]Splits{
		"ted_multi": {SplitTrain: multiExamples(10)},
	}}

	m, err := NewMultiParallel(cat, "ted_multi", lang.NewPair("en", "tr"), testParams(4, 8))
	require.NoError(t, err)

	src, _, err := m.LoadSplit(SplitTrain, false)
	require.NoError(t, err)

	it := src.Iter()
	sizes := []int{}
	for {
		batch, err := it.Next()
		if errors.Is(err, ErrExhausted) {
			break
		}
		require.NoError(t, err)
		sizes = append(sizes, batch.Size)
	}
	assert.Equal(t, []int{4, 4, 2}, sizes)

	// Exhaustion is sticky for a single pass.
	_, err = it.Next()
	assert.ErrorIs(t, err, ErrExhausted)

	// A fresh pass starts over.
	batch, err := src.Iter().Next()
	require.NoError(t, err)
	assert.Equal(t, 4, batch.Size)
}

func TestEvalSplitDeterministic(t *testing.T) {
	cat := &memCatalog{corpora: map[string]Splits{
		"ted_multi": {SplitValidation: multiExamples(9)},
	}}

	m, err := NewMultiParallel(cat, "ted_multi", lang.NewPair("en", "tr"), testParams(3, 8))
	require.NoError(t, err)

	// shuffle=true must be ignored outside the train split.
	src, _, err := m.LoadSplit(SplitValidation, true)
	require.NoError(t, err)

	first := collectFirstRows(t, src)
	second := collectFirstRows(t, src)
	assert.Equal(t, first, second, "validation order must be deterministic")
}

func TestTrainShufflePreservesMultiset(t *testing.T) {
	cat := &memCatalog{corpora: map[string]Splits{
		"ted_multi": {SplitTrain: multiExamples(32)},
	}}

	m, err := NewMultiParallel(cat, "ted_multi", lang.NewPair("en", "tr"), testParams(8, 8))
	require.NoError(t, err)

	src, _, err := m.LoadSplit(SplitTrain, true)
	require.NoError(t, err)

	plain, _, err := m.LoadSplit(SplitTrain, false)
	require.NoError(t, err)

	shuffled := collectFirstRows(t, src)
	ordered := collectFirstRows(t, plain)
	assert.ElementsMatch(t, ordered, shuffled, "shuffling must not add or drop examples")
}

// collectFirstRows drains one pass and returns each row's en-side sequence
// rendered as a comparable string.
func collectFirstRows(t *testing.T, src BatchSource) []string {
	t.Helper()
	var rows []string
	it := src.Iter()
	for {
		batch, err := it.Next()
		if errors.Is(err, ErrExhausted) {
			return rows
		}
		require.NoError(t, err)
		data := batch.Seqs["en"].AsInt32()
		maxLen := batch.Seqs["en"].Shape()[1]
		for i := 0; i < batch.Size; i++ {
			rows = append(rows, fmt.Sprint(data[i*maxLen:(i+1)*maxLen]))
		}
	}
}

func bilingualExamples(n int) []Example {
	examples := make([]Example, n)
	for i := range examples {
		examples[i] = Example{
			"cs": fmt.Sprintf("czech sentence %d", i),
			"en": fmt.Sprintf("english sentence %d", i),
		}
	}
	return examples
}

func TestBilingualCanonicalKey(t *testing.T) {
	cat := &memCatalog{corpora: map[string]Splits{
		"wmt14/cs-en": {SplitTrain: bilingualExamples(5)},
	}}

	b, err := NewBilingual(cat, "wmt14", lang.NewPair("en", "cs"), testParams(2, 10))
	require.NoError(t, err)
	assert.Equal(t, "cs-en", b.ResolvedKey())
	assert.Equal(t, []string{"wmt14/cs-en"}, cat.lookups)
}

func TestBilingualReversedFallback(t *testing.T) {
	cat := &memCatalog{corpora: map[string]Splits{
		"wmt14/en-cs": {SplitTrain: bilingualExamples(5)},
	}}

	b, err := NewBilingual(cat, "wmt14", lang.NewPair("cs", "en"), testParams(2, 10))
	require.NoError(t, err)
	assert.Equal(t, "en-cs", b.ResolvedKey())
	assert.Equal(t, []string{"wmt14/cs-en", "wmt14/en-cs"}, cat.lookups)
}

func TestBilingualBothOrdersAbsent(t *testing.T) {
	cat := &memCatalog{corpora: map[string]Splits{}}

	_, err := NewBilingual(cat, "wmt14", lang.NewPair("cs", "en"), testParams(2, 10))
	assert.ErrorIs(t, err, ErrCorpusUnavailable)
}

func TestBilingualBatches(t *testing.T) {
	cat := &memCatalog{corpora: map[string]Splits{
		"wmt14/cs-en": {SplitTrain: bilingualExamples(7)},
	}}
	params := testParams(3, 10)

	b, err := NewBilingual(cat, "wmt14", lang.NewPair("cs", "en"), params)
	require.NoError(t, err)

	src, n, err := b.LoadSplit(SplitTrain, false)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	csMarker, err := params.Enc.MarkerID("cs_CZ")
	require.NoError(t, err)

	it := src.Iter()
	batch, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, 3, batch.Size)
	assert.True(t, batch.Seqs["cs"].Shape().Equal([]int{3, 10}))
	assert.Equal(t, csMarker, batch.Seqs["cs"].AsInt32()[0])
}

func TestBilingualMissingSplit(t *testing.T) {
	cat := &memCatalog{corpora: map[string]Splits{
		"wmt14/cs-en": {SplitTrain: bilingualExamples(4)},
	}}

	b, err := NewBilingual(cat, "wmt14", lang.NewPair("cs", "en"), testParams(2, 10))
	require.NoError(t, err)

	_, _, err = b.LoadSplit(SplitValidation, false)
	assert.Error(t, err)
}
