// Package corpus loads parallel-text corpora for language pairs and exposes
// them as fixed-size batches of tokenized, fixed-length sequences.
//
// Two adapter variants cover the catalog's corpus shapes: MultiParallel for
// corpora holding many languages per example, and Bilingual for corpora of
// two-language translation records. Both produce the same BatchSource
// contract, which the sampling stream and the evaluation loops consume.
package corpus

import (
	"errors"

	"github.com/IanYHWu/mnmt/internal/lang"
	"github.com/IanYHWu/mnmt/internal/tensor"
)

// ErrExhausted signals the end of a single pass over a batch iterator.
// It is an internal control signal: the sampling stream recycles the
// iterator and never surfaces it to the training loop.
var ErrExhausted = errors.New("corpus: batch iterator exhausted")

// Batch is one mini-batch of tokenized examples for a language pair.
// Seqs maps each language code to an Int32 tensor of shape [Size, maxLen];
// every row starts with that language's locale marker.
type Batch struct {
	Pair lang.Pair
	Seqs map[string]*tensor.RawTensor
	Size int
}

// BatchIterator is a single pass over a split's batches.
type BatchIterator interface {
	// Next returns the next batch, or ErrExhausted when the pass is done.
	Next() (*Batch, error)
}

// BatchSource produces fresh single-pass iterators over one split of one
// language pair. Iter may be called repeatedly; for a shuffled source every
// pass draws a new order.
type BatchSource interface {
	Iter() BatchIterator
}
