package corpus

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// ErrCorpusUnavailable indicates a corpus (or requested pair subset) absent
// from the catalog under every candidate key.
var ErrCorpusUnavailable = errors.New("corpus unavailable")

// Split names recognized by the catalog.
const (
	SplitTrain      = "train"
	SplitValidation = "validation"
	SplitTest       = "test"
)

var splitNames = []string{SplitTrain, SplitValidation, SplitTest}

// Example is one raw corpus record: language code to sentence text.
// Multi-parallel corpora may carry many languages per example (some empty);
// bilingual corpora carry exactly two.
type Example map[string]string

// Splits holds a corpus subset keyed by split name.
type Splits map[string][]Example

// Catalog is the corpus storage boundary: a named lookup returning the raw
// examples per split. pairKey selects a pair-specific subset for corpora
// organized that way (e.g. wmt14 "cs-en"); multi-parallel corpora pass "".
type Catalog interface {
	Load(corpusName, pairKey string) (Splits, error)
}

// DirCatalog reads corpora from JSONL files under a local root directory,
// optionally fetching missing files from a base URL and caching them.
//
// Layout: <root>/<corpus>/<split>.jsonl for multi-parallel corpora and
// <root>/<corpus>/<pairKey>/<split>.jsonl for pair-keyed ones. Each line is
// either a flat per-language object {"en": "...", "tr": "..."} or a
// translation record {"translation": {"cs": "...", "en": "..."}}.
type DirCatalog struct {
	Root    string
	BaseURL string       // optional; "" disables network fallback
	Client  *http.Client // nil means http.DefaultClient
}

// NewDirCatalog creates a catalog rooted at dir with no network fallback.
func NewDirCatalog(dir string) *DirCatalog {
	return &DirCatalog{Root: dir}
}

// Load reads every available split for the corpus. A corpus with no splits
// at all resolves to ErrCorpusUnavailable.
func (c *DirCatalog) Load(corpusName, pairKey string) (Splits, error) {
	dir := filepath.Join(c.Root, corpusName)
	if pairKey != "" {
		dir = filepath.Join(dir, pairKey)
	}

	splits := make(Splits)
	for _, split := range splitNames {
		path := filepath.Join(dir, split+".jsonl")
		if _, err := os.Stat(path); err != nil {
			if c.BaseURL == "" {
				continue
			}
			if err := c.fetch(corpusName, pairKey, split, path); err != nil {
				continue
			}
		}

		examples, err := readJSONL(path)
		if err != nil {
			return nil, fmt.Errorf("corpus %q split %q: %w", corpusName, split, err)
		}
		splits[split] = examples
	}

	if len(splits) == 0 {
		key := corpusName
		if pairKey != "" {
			key += "/" + pairKey
		}
		return nil, fmt.Errorf("%w: %s", ErrCorpusUnavailable, key)
	}
	return splits, nil
}

// fetch downloads one split file into the cache path.
func (c *DirCatalog) fetch(corpusName, pairKey, split, path string) error {
	url := c.BaseURL + "/" + corpusName
	if pairKey != "" {
		url += "/" + pairKey
	}
	url += "/" + split + ".jsonl"

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// readJSONL parses one example per line, unwrapping "translation" records.
func readJSONL(path string) ([]Example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var examples []Example
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var record struct {
			Translation map[string]string `json:"translation"`
		}
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if record.Translation != nil {
			examples = append(examples, Example(record.Translation))
			continue
		}

		var flat map[string]string
		if err := json.Unmarshal(raw, &flat); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		delete(flat, "translation")
		examples = append(examples, Example(flat))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return examples, nil
}
