// Command mnmt drives the multilingual NMT data pipeline: it resolves the
// requested language set into corpus-backed pairs, builds the temperature-
// sampled training stream, and either reports stream statistics or runs the
// training loop against a model step.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/IanYHWu/mnmt/internal/corpus"
	"github.com/IanYHWu/mnmt/internal/data"
	"github.com/IanYHWu/mnmt/internal/lang"
	"github.com/IanYHWu/mnmt/internal/tensor"
	"github.com/IanYHWu/mnmt/internal/tokenizer"
	"github.com/IanYHWu/mnmt/internal/train"
)

const version = "v0.1.0"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("mnmt %s\n", version)
		return
	}

	var (
		langsFlag   = flag.String("langs", "en,az,tr", "comma-separated language codes")
		exclude     = flag.String("exclude", "", "comma-separated pair keys to skip (e.g. az-tr)")
		batchSize   = flag.Int("batch-size", 32, "examples per batch")
		maxLen      = flag.Int("max-len", 40, "token sequence length")
		temperature = flag.Float64("temperature", 1.0, "pair sampling temperature")
		cacheDir    = flag.String("cache", "data", "local corpus cache directory")
		baseURL     = flag.String("base-url", "", "corpus fetch base URL (optional)")
		stage       = flag.String("stage", data.StageFit, "fit or evaluate")
		encoding    = flag.String("encoding", "cl100k_base", "tiktoken encoding name")
		spModel     = flag.String("sp-model", "", "SentencePiece model path (overrides -encoding)")
		epochs      = flag.Int("epochs", 1, "training epochs")
		steps       = flag.Int("steps", 100, "stream draws per epoch")
		logEvery    = flag.Int("log-every", 50, "progress line interval in steps")
		seed        = flag.Int64("seed", -1, "RNG seed, -1 for nondeterministic")
		prepare     = flag.Bool("prepare", false, "only download corpora, then exit")
	)
	flag.Parse()

	if err := run(runConfig{
		langs:       strings.Split(*langsFlag, ","),
		exclude:     splitNonEmpty(*exclude),
		batchSize:   *batchSize,
		maxLen:      *maxLen,
		temperature: *temperature,
		cacheDir:    *cacheDir,
		baseURL:     *baseURL,
		stage:       *stage,
		encoding:    *encoding,
		spModel:     *spModel,
		epochs:      *epochs,
		steps:       *steps,
		logEvery:    *logEvery,
		seed:        *seed,
		prepare:     *prepare,
	}); err != nil {
		log.Fatal(err)
	}
}

type runConfig struct {
	langs       []string
	exclude     []string
	batchSize   int
	maxLen      int
	temperature float64
	cacheDir    string
	baseURL     string
	stage       string
	encoding    string
	spModel     string
	epochs      int
	steps       int
	logEvery    int
	seed        int64
	prepare     bool
}

func run(cfg runConfig) error {
	var tok tokenizer.Tokenizer
	var err error
	if cfg.spModel != "" {
		tok, err = tokenizer.NewSentencePiece(cfg.spModel)
	} else {
		tok, err = tokenizer.NewTikToken(cfg.encoding)
	}
	if err != nil {
		return err
	}
	enc := tokenizer.NewLocaleEncoder(tok, lang.LocaleTagList())

	catalog := &corpus.DirCatalog{Root: cfg.cacheDir, BaseURL: cfg.baseURL}

	module, err := data.NewModule(data.Config{
		Langs:        cfg.langs,
		ExcludePairs: cfg.exclude,
		BatchSize:    cfg.batchSize,
		MaxLen:       cfg.maxLen,
		Temperature:  cfg.temperature,
		Stage:        cfg.stage,
		Seed:         cfg.seed,
	}, enc, catalog)
	if err != nil {
		return err
	}

	if cfg.prepare {
		if err := module.Prepare(); err != nil {
			return err
		}
		log.Printf("prepared %d language pairs under %s", len(module.Pairs()), cfg.cacheDir)
		return nil
	}

	if err := module.Setup(); err != nil {
		return err
	}

	if cfg.stage == data.StageEvaluate {
		return reportEvalSplits(module)
	}
	return streamStats(module, enc, cfg)
}

// streamStats drains the training stream for the configured number of draws
// per epoch and reports the empirical pair histogram against the stationary
// weights. Swap the no-op step for one built with train.EvalStepFor to run a
// real model against the stream.
func streamStats(module *data.Module, enc *tokenizer.LocaleEncoder, cfg runConfig) error {
	for key, n := range module.TrainCounts() {
		log.Printf("%s: %d examples", key, n)
	}

	stream, err := module.TrainStream()
	if err != nil {
		return err
	}

	codeOf, err := markerIndex(enc, cfg.langs)
	if err != nil {
		return err
	}

	histogram := make(map[string]int)
	trainer := &train.Trainer{
		Step: func(x, y *tensor.RawTensor) (float32, float32, error) {
			p := lang.NewPair(codeOf[x.AsInt32()[0]], codeOf[y.AsInt32()[0]])
			histogram[p.Key()]++
			return 0, 0, nil
		},
		Epochs:        cfg.epochs,
		StepsPerEpoch: cfg.steps,
		LogEvery:      cfg.logEvery,
	}
	if _, err := trainer.Run(stream, nil); err != nil {
		return err
	}

	total := cfg.epochs * cfg.steps
	for _, p := range module.Pairs() {
		log.Printf("pair %s weight %.3f drawn %.3f", p.Key(), stream.Weight(p),
			float64(histogram[p.Key()])/float64(total))
	}
	return nil
}

// markerIndex maps each language's marker token id back to its code.
func markerIndex(enc *tokenizer.LocaleEncoder, langs []string) (map[int32]string, error) {
	index := make(map[int32]string, len(langs))
	for _, code := range langs {
		tag, err := lang.LocaleTag(code)
		if err != nil {
			return nil, err
		}
		id, err := enc.MarkerID(tag)
		if err != nil {
			return nil, err
		}
		index[id] = code
	}
	return index, nil
}

func reportEvalSplits(module *data.Module) error {
	for _, split := range []string{corpus.SplitValidation, corpus.SplitTest} {
		for key, src := range module.Batches(split) {
			it := src.Iter()
			batches := 0
			for {
				_, err := it.Next()
				if errors.Is(err, corpus.ErrExhausted) {
					break
				}
				if err != nil {
					return err
				}
				batches++
			}
			log.Printf("%s %s: %d batches", split, key, batches)
		}
	}
	return nil
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
