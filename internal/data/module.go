// Package data wires the full training data pipeline together: it expands a
// language set into corpus-backed pairs, builds one adapter per pair, loads
// the splits the current stage needs, and hands the training loop either the
// temperature-sampled train stream or fixed per-pair evaluation sources.
package data

import (
	"errors"
	"fmt"

	"github.com/IanYHWu/mnmt/internal/corpus"
	"github.com/IanYHWu/mnmt/internal/lang"
	"github.com/IanYHWu/mnmt/internal/sampling"
	"github.com/IanYHWu/mnmt/internal/tokenizer"
)

// Training stages. Fit loads only the train split so evaluation corpora are
// never downloaded needlessly; Evaluate loads validation and test instead.
const (
	StageFit      = "fit"
	StageEvaluate = "evaluate"
)

// Config is the pipeline's configuration surface.
type Config struct {
	Langs        []string
	ExcludePairs []string // canonical pair keys to skip
	BatchSize    int
	MaxLen       int
	Temperature  float64
	Stage        string
	Seed         int64 // -1 = nondeterministic
}

// DefaultConfig returns the defaults used by the training CLI.
func DefaultConfig() Config {
	return Config{
		BatchSize:   32,
		MaxLen:      40,
		Temperature: 1.0,
		Stage:       StageFit,
		Seed:        -1,
	}
}

func (c Config) validate() error {
	if len(c.Langs) < 2 {
		return fmt.Errorf("need at least two languages, got %d", len(c.Langs))
	}
	if c.Stage != StageFit && c.Stage != StageEvaluate {
		return fmt.Errorf("unknown stage %q", c.Stage)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be >= 1, got %d", c.BatchSize)
	}
	if c.MaxLen < 1 {
		return fmt.Errorf("max length must be >= 1, got %d", c.MaxLen)
	}
	return nil
}

// adapter is the capability both corpus variants share.
type adapter interface {
	LoadSplit(split string, shuffle bool) (corpus.BatchSource, int, error)
}

// Module owns every corpus source for a training run. It is the exclusive
// owner of the per-split pair-to-source mapping; the sampling stream only
// borrows the train sources.
type Module struct {
	cfg     Config
	enc     *tokenizer.LocaleEncoder
	catalog corpus.Catalog

	pairs       []lang.Pair
	splits      map[string]map[string]corpus.BatchSource
	trainCounts map[string]int
}

// NewModule resolves the language set into pairs against the registry.
// Registry failures (unknown language, unsupported pair) surface here,
// before any corpus is touched.
func NewModule(cfg Config, enc *tokenizer.LocaleEncoder, catalog corpus.Catalog) (*Module, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, errors.New("encoder is required")
	}
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}

	pairs, err := lang.Pairs(cfg.Langs, cfg.ExcludePairs)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, errors.New("no language pairs left after exclusions")
	}

	return &Module{
		cfg:     cfg,
		enc:     enc,
		catalog: catalog,
		pairs:   pairs,
	}, nil
}

// Pairs returns the resolved language pairs in canonical order.
func (m *Module) Pairs() []lang.Pair {
	return m.pairs
}

// Prepare touches every corpus in the catalog so a later Setup can run
// offline. Pair-keyed corpora are tried in both key orders, matching the
// bilingual adapter's resolution.
func (m *Module) Prepare() error {
	for _, p := range m.pairs {
		name, err := lang.CorpusFor(p)
		if err != nil {
			return err
		}
		switch name {
		case "ted_multi":
			if _, err := m.catalog.Load(name, ""); err != nil {
				return err
			}
		default:
			_, err := m.catalog.Load(name, p.Key())
			if errors.Is(err, corpus.ErrCorpusUnavailable) {
				_, err = m.catalog.Load(name, p.Reversed())
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Setup builds one adapter per pair and loads the splits the configured
// stage needs: train (shuffled) for fit, validation and test (ordered)
// otherwise. Train example counts are recorded to seed the stream weights.
func (m *Module) Setup() error {
	m.splits = map[string]map[string]corpus.BatchSource{}
	m.trainCounts = map[string]int{}

	for _, p := range m.pairs {
		name, err := lang.CorpusFor(p)
		if err != nil {
			return err
		}

		ad, err := m.newAdapter(name, p)
		if err != nil {
			return err
		}

		if m.cfg.Stage == StageFit {
			src, n, err := ad.LoadSplit(corpus.SplitTrain, true)
			if err != nil {
				return err
			}
			m.addSource(corpus.SplitTrain, p, src)
			m.trainCounts[p.Key()] = n
			continue
		}

		for _, split := range []string{corpus.SplitValidation, corpus.SplitTest} {
			src, _, err := ad.LoadSplit(split, false)
			if err != nil {
				return err
			}
			m.addSource(split, p, src)
		}
	}
	return nil
}

func (m *Module) newAdapter(name string, p lang.Pair) (adapter, error) {
	params := corpus.Params{
		Enc:       m.enc,
		BatchSize: m.cfg.BatchSize,
		MaxLen:    m.cfg.MaxLen,
		Seed:      m.cfg.Seed,
	}

	switch name {
	case "ted_multi":
		return corpus.NewMultiParallel(m.catalog, name, p, params)
	case "wmt14":
		return corpus.NewBilingual(m.catalog, name, p, params)
	default:
		return nil, fmt.Errorf("no adapter for corpus %q (pair %s)", name, p.Key())
	}
}

func (m *Module) addSource(split string, p lang.Pair, src corpus.BatchSource) {
	if m.splits[split] == nil {
		m.splits[split] = map[string]corpus.BatchSource{}
	}
	m.splits[split][p.Key()] = src
}

// Batches returns the pair-to-source mapping for a loaded split, or nil if
// the split was not loaded for this stage.
func (m *Module) Batches(split string) map[string]corpus.BatchSource {
	return m.splits[split]
}

// TrainCounts returns the train split example count per pair key.
func (m *Module) TrainCounts() map[string]int {
	return m.trainCounts
}

// TrainStream builds the temperature-sampled stream over the train sources.
// Bilingual mode engages exactly when the configured language set has two
// languages.
func (m *Module) TrainStream() (*sampling.Stream, error) {
	sources := m.splits[corpus.SplitTrain]
	if len(sources) == 0 {
		return nil, errors.New("train split not loaded; run Setup with the fit stage first")
	}

	return sampling.New(m.pairs, sources, m.trainCounts, sampling.Config{
		Temperature: m.cfg.Temperature,
		Bilingual:   len(m.cfg.Langs) == 2,
		Seed:        m.cfg.Seed,
	})
}
