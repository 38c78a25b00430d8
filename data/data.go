// Package data provides the public API for building the MNMT training data
// pipeline.
//
// A Module owns one corpus source per language pair and serves either the
// temperature-sampled infinite train stream or fixed per-pair evaluation
// loaders, depending on the configured stage.
//
// Example:
//
//	cfg := data.DefaultConfig()
//	cfg.Langs = []string{"en", "az", "tr"}
//	cfg.Temperature = 0.7
//
//	m, err := data.NewModule(cfg, enc, data.NewDirCatalog("~/.cache/mnmt"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := m.Setup(); err != nil {
//	    log.Fatal(err)
//	}
//
//	stream, err := m.TrainStream()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	stream.Start()
//	x, y, err := stream.Next() // [batch, max_len] token batches
package data

import (
	"github.com/IanYHWu/mnmt/internal/corpus"
	"github.com/IanYHWu/mnmt/internal/data"
	"github.com/IanYHWu/mnmt/internal/tokenizer"
)

// Encoder is the locale-aware fixed-length encoder batches are built with.
type Encoder = tokenizer.LocaleEncoder

// Training stages.
const (
	StageFit      = data.StageFit
	StageEvaluate = data.StageEvaluate
)

// Split names.
const (
	SplitTrain      = corpus.SplitTrain
	SplitValidation = corpus.SplitValidation
	SplitTest       = corpus.SplitTest
)

// Config is the pipeline's configuration surface: language set, batch size,
// max sequence length, sampling temperature, excluded pairs, stage, seed.
type Config = data.Config

// Module owns every corpus source for a training run.
type Module = data.Module

// Catalog is the corpus storage boundary.
type Catalog = corpus.Catalog

// Batch is one mini-batch of tokenized examples for a language pair.
type Batch = corpus.Batch

// BatchSource produces fresh single-pass iterators over one split.
type BatchSource = corpus.BatchSource

// ErrCorpusUnavailable indicates a corpus absent from the catalog under
// every candidate key.
var ErrCorpusUnavailable = corpus.ErrCorpusUnavailable

// DefaultConfig returns the defaults used by the training CLI.
func DefaultConfig() Config {
	return data.DefaultConfig()
}

// NewModule resolves the language set into corpus-backed pairs.
func NewModule(cfg Config, enc *Encoder, catalog Catalog) (*Module, error) {
	return data.NewModule(cfg, enc, catalog)
}

// NewDirCatalog creates a JSONL catalog rooted at dir with no network
// fallback. Set BaseURL on the returned catalog to enable fetching.
func NewDirCatalog(dir string) *corpus.DirCatalog {
	return corpus.NewDirCatalog(dir)
}
