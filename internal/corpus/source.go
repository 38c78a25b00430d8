package corpus

import (
	"fmt"
	"math/rand"

	"github.com/IanYHWu/mnmt/internal/lang"
	"github.com/IanYHWu/mnmt/internal/tensor"
	"github.com/IanYHWu/mnmt/internal/tokenizer"
)

// Params configures a corpus adapter.
type Params struct {
	Enc       *tokenizer.LocaleEncoder
	BatchSize int
	MaxLen    int

	// Seed drives shuffle order. -1 (or any negative) means nondeterministic.
	Seed int64
}

func (p Params) validate() error {
	if p.Enc == nil {
		return fmt.Errorf("encoder is required")
	}
	if p.BatchSize < 1 {
		return fmt.Errorf("batch size must be >= 1, got %d", p.BatchSize)
	}
	if p.MaxLen < 1 {
		return fmt.Errorf("max length must be >= 1, got %d", p.MaxLen)
	}
	return nil
}

func (p Params) newRand() *rand.Rand {
	seed := p.Seed
	if seed < 0 {
		seed = rand.Int63() //nolint:gosec // shuffle order needs no crypto strength
	}
	return rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic shuffling by request
}

// localeTags resolves the locale tag per language code of a pair, failing on
// unknown codes before any tokenization happens.
func localeTags(p lang.Pair) (map[string]string, error) {
	tags := make(map[string]string, 2)
	for _, code := range p.Langs() {
		tag, err := lang.LocaleTag(code)
		if err != nil {
			return nil, err
		}
		tags[code] = tag
	}
	return tags, nil
}

// tokenizedRow is one pre-tokenized example, sequences in pair order.
type tokenizedRow [2][]int32

// tokenizedSource serves a split that was tokenized whole at load time
// (the multi-parallel path).
type tokenizedSource struct {
	pair      lang.Pair
	rows      []tokenizedRow
	batchSize int
	maxLen    int
	shuffle   bool
	rng       *rand.Rand
}

func (s *tokenizedSource) Iter() BatchIterator {
	return &tokenizedIterator{src: s, order: s.order()}
}

func (s *tokenizedSource) order() []int {
	order := make([]int, len(s.rows))
	for i := range order {
		order[i] = i
	}
	if s.shuffle {
		s.rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}
	return order
}

type tokenizedIterator struct {
	src   *tokenizedSource
	order []int
	pos   int
}

func (it *tokenizedIterator) Next() (*Batch, error) {
	s := it.src
	if it.pos >= len(it.order) {
		return nil, ErrExhausted
	}

	end := it.pos + s.batchSize
	if end > len(it.order) {
		end = len(it.order)
	}
	idx := it.order[it.pos:end]
	it.pos = end

	batch, err := newBatch(s.pair, len(idx), s.maxLen)
	if err != nil {
		return nil, err
	}
	langs := s.pair.Langs()
	for li, code := range langs {
		dst := batch.Seqs[code].AsInt32()
		for bi, ri := range idx {
			copy(dst[bi*s.maxLen:(bi+1)*s.maxLen], s.rows[ri][li])
		}
	}
	return batch, nil
}

// lazySource serves raw text rows, tokenizing per mini-batch on demand
// (the bilingual path, cheaper on large corpora).
type lazySource struct {
	pair      lang.Pair
	tags      map[string]string
	enc       *tokenizer.LocaleEncoder
	examples  []Example
	batchSize int
	maxLen    int
	shuffle   bool
	rng       *rand.Rand
}

func (s *lazySource) Iter() BatchIterator {
	order := make([]int, len(s.examples))
	for i := range order {
		order[i] = i
	}
	if s.shuffle {
		s.rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}
	return &lazyIterator{src: s, order: order}
}

type lazyIterator struct {
	src   *lazySource
	order []int
	pos   int
}

func (it *lazyIterator) Next() (*Batch, error) {
	s := it.src
	if it.pos >= len(it.order) {
		return nil, ErrExhausted
	}

	end := it.pos + s.batchSize
	if end > len(it.order) {
		end = len(it.order)
	}
	idx := it.order[it.pos:end]
	it.pos = end

	batch, err := newBatch(s.pair, len(idx), s.maxLen)
	if err != nil {
		return nil, err
	}
	for _, code := range s.pair.Langs() {
		dst := batch.Seqs[code].AsInt32()
		for bi, ri := range idx {
			ids, err := s.enc.EncodeFixed(s.examples[ri][code], s.tags[code], s.maxLen)
			if err != nil {
				return nil, fmt.Errorf("tokenize %s example %d: %w", s.pair.Key(), ri, err)
			}
			copy(dst[bi*s.maxLen:(bi+1)*s.maxLen], ids)
		}
	}
	return batch, nil
}

func newBatch(p lang.Pair, size, maxLen int) (*Batch, error) {
	seqs := make(map[string]*tensor.RawTensor, 2)
	for _, code := range p.Langs() {
		rt, err := tensor.NewRaw(tensor.Shape{size, maxLen}, tensor.Int32)
		if err != nil {
			return nil, err
		}
		seqs[code] = rt
	}
	return &Batch{Pair: p, Seqs: seqs, Size: size}, nil
}
