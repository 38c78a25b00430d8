package corpus

import (
	"fmt"

	"github.com/IanYHWu/mnmt/internal/lang"
)

// MultiParallel adapts a multi-parallel corpus (many languages per example)
// to one language pair. Examples missing either requested language are
// dropped at load time, keeping the pair strictly parallel.
type MultiParallel struct {
	name   string
	pair   lang.Pair
	tags   map[string]string
	params Params
	splits Splits
}

// NewMultiParallel loads the named corpus from the catalog for a pair.
// The corpus is loaded once here; LoadSplit only filters and tokenizes.
func NewMultiParallel(cat Catalog, name string, pair lang.Pair, params Params) (*MultiParallel, error) {
	if err := params.validate(); err != nil {
		return nil, fmt.Errorf("corpus %q: %w", name, err)
	}
	tags, err := localeTags(pair)
	if err != nil {
		return nil, err
	}
	splits, err := cat.Load(name, "")
	if err != nil {
		return nil, err
	}

	return &MultiParallel{
		name:   name,
		pair:   pair,
		tags:   tags,
		params: params,
		splits: splits,
	}, nil
}

// LoadSplit filters the split down to examples covering both languages,
// tokenizes it whole, and returns a batch source plus the example count.
// shuffle is honored only for the train split; other splits stay ordered
// so evaluation is reproducible.
func (m *MultiParallel) LoadSplit(split string, shuffle bool) (BatchSource, int, error) {
	examples, ok := m.splits[split]
	if !ok {
		return nil, 0, fmt.Errorf("corpus %q has no %q split", m.name, split)
	}

	rows := make([]tokenizedRow, 0, len(examples))
	for i, ex := range examples {
		if ex[m.pair.First] == "" || ex[m.pair.Second] == "" {
			continue
		}
		var row tokenizedRow
		for li, code := range m.pair.Langs() {
			ids, err := m.params.Enc.EncodeFixed(ex[code], m.tags[code], m.params.MaxLen)
			if err != nil {
				return nil, 0, fmt.Errorf("tokenize %s example %d: %w", m.pair.Key(), i, err)
			}
			row[li] = ids
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("corpus %q split %q has no examples covering %s",
			m.name, split, m.pair.Key())
	}

	src := &tokenizedSource{
		pair:      m.pair,
		rows:      rows,
		batchSize: m.params.BatchSize,
		maxLen:    m.params.MaxLen,
		shuffle:   shuffle && split == SplitTrain,
		rng:       m.params.newRand(),
	}
	return src, len(rows), nil
}
