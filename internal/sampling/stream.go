// Package sampling implements the temperature-sampled batch stream at the
// heart of multilingual NMT training: an unbounded sequence of
// (source, target) token batches drawn across several language pairs.
//
// Each pair contributes a finite batch source. On every step the stream
// picks a pair from a fixed categorical distribution weighted by corpus
// size raised to a temperature, pulls one batch from that pair's live
// iterator, and recycles the iterator transparently when a pass ends. The
// stream never terminates; the training loop decides how many steps make an
// epoch.
package sampling

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/IanYHWu/mnmt/internal/corpus"
	"github.com/IanYHWu/mnmt/internal/lang"
	"github.com/IanYHWu/mnmt/internal/tensor"
)

// ErrNotStarted is returned by Next before Start initializes the pass.
var ErrNotStarted = errors.New("sampling: stream not started")

// Config configures a Stream.
type Config struct {
	// Temperature flattens (T < 1) or sharpens (T = 1) the size-proportional
	// pair distribution: weight_p ∝ count_p^T.
	Temperature float64

	// Bilingual marks the two-language case: a single fixed pair, no
	// sampling and no direction swapping.
	Bilingual bool

	// Seed for pair selection and direction flips. -1 = nondeterministic.
	Seed int64
}

// DefaultConfig returns size-proportional sampling with a random seed.
func DefaultConfig() Config {
	return Config{Temperature: 1.0, Bilingual: false, Seed: -1}
}

// subIterator is the explicit per-pair cursor: the live iterator plus the
// source to recreate it from. Recycling is a visible state transition here,
// not an exception path.
type subIterator struct {
	src corpus.BatchSource
	it  corpus.BatchIterator
}

// next draws one batch, recreating the iterator once if the pass ended.
// A source that is empty even after recycling is a configuration error.
func (s *subIterator) next() (*corpus.Batch, error) {
	batch, err := s.it.Next()
	if errors.Is(err, corpus.ErrExhausted) {
		s.it = s.src.Iter()
		batch, err = s.it.Next()
		if errors.Is(err, corpus.ErrExhausted) {
			return nil, fmt.Errorf("batch source empty after recycling")
		}
	}
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// Stream is the infinite temperature-sampled batch stream.
//
// Not safe for concurrent use: a single consumer calls Start once per
// epoch-session and Next once per step, matching the synchronous pull model
// of the training loop.
type Stream struct {
	pairs   []lang.Pair
	sources map[string]corpus.BatchSource
	weights []float64 // cumulative, aligned with pairs
	cfg     Config
	rng     *rand.Rand
	subs    map[string]*subIterator
}

// New builds a Stream over one batch source and example count per pair.
// The sampling distribution is computed here, once, and never updated even
// as sub-iterators get recycled mid-epoch.
func New(pairs []lang.Pair, sources map[string]corpus.BatchSource, counts map[string]int, cfg Config) (*Stream, error) {
	if len(pairs) == 0 {
		return nil, errors.New("sampling: no language pairs")
	}
	if cfg.Bilingual && len(pairs) != 1 {
		return nil, fmt.Errorf("sampling: bilingual mode requires exactly one pair, got %d", len(pairs))
	}

	var total float64
	raw := make([]float64, len(pairs))
	for i, p := range pairs {
		key := p.Key()
		if _, ok := sources[key]; !ok {
			return nil, fmt.Errorf("sampling: no batch source for pair %s", key)
		}
		n, ok := counts[key]
		if !ok || n <= 0 {
			return nil, fmt.Errorf("sampling: pair %s has no examples", key)
		}
		raw[i] = math.Pow(float64(n), cfg.Temperature)
		total += raw[i]
	}

	cum := make([]float64, len(pairs))
	acc := 0.0
	for i, w := range raw {
		acc += w / total
		cum[i] = acc
	}
	cum[len(cum)-1] = 1.0

	seed := cfg.Seed
	if seed < 0 {
		seed = rand.Int63() //nolint:gosec // nondeterministic seed by request
	}

	return &Stream{
		pairs:   pairs,
		sources: sources,
		weights: cum,
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(seed)), //nolint:gosec // seeded for reproducibility
	}, nil
}

// Weight returns the stationary sampling probability of a pair.
func (s *Stream) Weight(p lang.Pair) float64 {
	for i, q := range s.pairs {
		if q == p {
			if i == 0 {
				return s.weights[0]
			}
			return s.weights[i] - s.weights[i-1]
		}
	}
	return 0
}

// Start begins a fresh pass: every sub-iterator is recreated from its
// source. Call before the first Next and again when restarting the stream
// for a new epoch-session.
func (s *Stream) Start() {
	s.subs = make(map[string]*subIterator, len(s.pairs))
	for _, p := range s.pairs {
		src := s.sources[p.Key()]
		s.subs[p.Key()] = &subIterator{src: src, it: src.Iter()}
	}
}

// Next draws one (source, target) batch pair. The stream is logically
// infinite: per-pair exhaustion is absorbed by recycling and never surfaces
// here.
func (s *Stream) Next() (x, y *tensor.RawTensor, err error) {
	if s.subs == nil {
		return nil, nil, ErrNotStarted
	}

	pair := s.pairs[0]
	if !s.cfg.Bilingual {
		pair = s.pairs[s.draw()]
	}

	batch, err := s.subs[pair.Key()].next()
	if err != nil {
		return nil, nil, fmt.Errorf("pair %s: %w", pair.Key(), err)
	}

	x = batch.Seqs[pair.First]
	y = batch.Seqs[pair.Second]

	// Symmetric direction training: flip source and target half the time.
	// Bilingual mode always keeps the configured order.
	if !s.cfg.Bilingual && s.rng.Float64() > 0.5 {
		x, y = y, x
	}
	return x, y, nil
}

// draw samples a pair index from the fixed categorical distribution.
func (s *Stream) draw() int {
	u := s.rng.Float64()
	for i, c := range s.weights {
		if u < c {
			return i
		}
	}
	return len(s.weights) - 1
}
