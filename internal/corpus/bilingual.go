package corpus

import (
	"errors"
	"fmt"

	"github.com/IanYHWu/mnmt/internal/lang"
)

// Bilingual adapts a corpus of two-language translation records. The catalog
// may index the pair under either ordering, so resolution tries the
// canonical key first and falls back to the reversed one; only when both are
// absent does construction fail with ErrCorpusUnavailable.
//
// Unlike MultiParallel, batches are tokenized per mini-batch rather than per
// whole split, which keeps load time flat on large corpora.
type Bilingual struct {
	name   string
	pair   lang.Pair
	key    string // the catalog key that resolved
	tags   map[string]string
	params Params
	splits Splits
}

// NewBilingual loads the named corpus for a pair, trying both key orders.
func NewBilingual(cat Catalog, name string, pair lang.Pair, params Params) (*Bilingual, error) {
	if err := params.validate(); err != nil {
		return nil, fmt.Errorf("corpus %q: %w", name, err)
	}
	tags, err := localeTags(pair)
	if err != nil {
		return nil, err
	}

	key := pair.Key()
	splits, err := cat.Load(name, key)
	if errors.Is(err, ErrCorpusUnavailable) {
		key = pair.Reversed()
		splits, err = cat.Load(name, key)
		if errors.Is(err, ErrCorpusUnavailable) {
			return nil, fmt.Errorf("%w: corpus %q has neither %q nor %q",
				ErrCorpusUnavailable, name, pair.Key(), pair.Reversed())
		}
	}
	if err != nil {
		return nil, err
	}

	return &Bilingual{
		name:   name,
		pair:   pair,
		key:    key,
		tags:   tags,
		params: params,
		splits: splits,
	}, nil
}

// ResolvedKey reports which catalog key ordering the corpus answered to.
func (b *Bilingual) ResolvedKey() string {
	return b.key
}

// LoadSplit returns a lazily tokenizing batch source plus the example count.
// shuffle is honored only for the train split.
func (b *Bilingual) LoadSplit(split string, shuffle bool) (BatchSource, int, error) {
	examples, ok := b.splits[split]
	if !ok {
		return nil, 0, fmt.Errorf("corpus %q has no %q split", b.name, split)
	}

	kept := make([]Example, 0, len(examples))
	for _, ex := range examples {
		if ex[b.pair.First] == "" || ex[b.pair.Second] == "" {
			continue
		}
		kept = append(kept, ex)
	}

	if len(kept) == 0 {
		return nil, 0, fmt.Errorf("corpus %q split %q has no examples covering %s",
			b.name, split, b.pair.Key())
	}

	src := &lazySource{
		pair:      b.pair,
		tags:      b.tags,
		enc:       b.params.Enc,
		examples:  kept,
		batchSize: b.params.BatchSize,
		maxLen:    b.params.MaxLen,
		shuffle:   shuffle && split == SplitTrain,
		rng:       b.params.newRand(),
	}
	return src, len(kept), nil
}
