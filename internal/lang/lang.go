// Package lang holds the static language registry for multilingual NMT
// training: the mapping from ISO language codes to tokenizer locale tags and
// the mapping from unordered language pairs to the corpus that supplies them.
//
// Both tables are fixed, process-wide configuration. Lookups against a code
// or pair outside the tables are setup errors, surfaced fail-fast before any
// corpus is touched.
package lang

import (
	"errors"
	"fmt"
	"sort"
)

// Setup-time registry errors.
var (
	// ErrUnknownLanguage indicates a language code absent from the locale table.
	ErrUnknownLanguage = errors.New("unknown language code")

	// ErrUnsupportedLanguagePair indicates a pair with no corpus mapping.
	ErrUnsupportedLanguagePair = errors.New("unsupported language pair")
)

// localeTags maps ISO language codes to tokenizer locale tags.
var localeTags = map[string]string{
	"ar": "ar_AR", // Arabic
	"az": "az_AZ", // Azerbaijani
	"bn": "bn_IN", // Bengali
	"cs": "cs_CZ", // Czech
	"de": "de_DE", // German
	"en": "en_XX", // English
	"es": "es_XX", // Spanish
	"et": "et_EE", // Estonian
	"fi": "fi_FI", // Finnish
	"fr": "fr_XX", // French
	"gl": "gl_ES", // Galician
	"he": "he_IL", // Hebrew
	"hi": "hi_IN", // Hindi
	"hr": "hr_HR", // Croatian
	"id": "id_ID", // Indonesian
	"it": "it_IT", // Italian
	"ja": "ja_XX", // Japanese
	"ka": "ka_GE", // Georgian
	"kk": "kk_KZ", // Kazakh
	"ko": "ko_KR", // Korean
	"lt": "lt_LT", // Lithuanian
	"mk": "mk_MK", // Macedonian
	"mn": "mn_MN", // Mongolian
	"mr": "mr_IN", // Marathi
	"my": "my_MM", // Burmese
	"nl": "nl_XX", // Dutch
	"pl": "pl_PL", // Polish
	"pt": "pt_XX", // Portuguese
	"ro": "ro_RO", // Romanian
	"ru": "ru_RU", // Russian
	"sl": "sl_SI", // Slovene
	"sv": "sv_SE", // Swedish
	"ta": "ta_IN", // Tamil
	"th": "th_TH", // Thai
	"tr": "tr_TR", // Turkish
	"uk": "uk_UA", // Ukrainian
	"ur": "ur_PK", // Urdu
	"vi": "vi_VN", // Vietnamese
	"zh": "zh_CN", // Chinese
}

// bitextCorpora maps canonical pair keys to the corpus backing each pair.
var bitextCorpora = map[string]string{
	"en-tr": "ted_multi",
	"az-en": "ted_multi",
	"az-tr": "ted_multi",
	"cs-en": "wmt14",
}

// LocaleTag returns the tokenizer locale tag for a language code.
func LocaleTag(code string) (string, error) {
	tag, ok := localeTags[code]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, code)
	}
	return tag, nil
}

// LocaleTagList returns all locale tags in a stable (sorted) order.
// The order is what assigns each language its marker token id, so it must
// not depend on map iteration.
func LocaleTagList() []string {
	tags := make([]string, 0, len(localeTags))
	for _, tag := range localeTags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Pair is an unordered pair of language codes, canonicalized so that
// First < Second. Use NewPair to construct one.
type Pair struct {
	First  string
	Second string
}

// NewPair canonicalizes two language codes into a Pair by sorting them.
func NewPair(a, b string) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{First: a, Second: b}
}

// Key returns the canonical "l1-l2" key for the pair.
func (p Pair) Key() string {
	return p.First + "-" + p.Second
}

// Reversed returns the "l2-l1" key, used when a bilingual corpus catalogs
// the pair in the opposite order.
func (p Pair) Reversed() string {
	return p.Second + "-" + p.First
}

// Langs returns the pair's codes in canonical order.
func (p Pair) Langs() []string {
	return []string{p.First, p.Second}
}

// CorpusFor resolves the corpus name backing a language pair.
func CorpusFor(p Pair) (string, error) {
	name, ok := bitextCorpora[p.Key()]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLanguagePair, p.Key())
	}
	return name, nil
}

// Pairs expands a language set into every unordered pair, minus the excluded
// pair keys. Every code must be in the locale table and every remaining pair
// must have a corpus mapping; either failure aborts the whole expansion.
func Pairs(langs []string, exclude []string) ([]Pair, error) {
	for _, code := range langs {
		if _, err := LocaleTag(code); err != nil {
			return nil, err
		}
	}

	excluded := make(map[string]bool, len(exclude))
	for _, key := range exclude {
		excluded[key] = true
	}

	sorted := make([]string, len(langs))
	copy(sorted, langs)
	sort.Strings(sorted)

	var pairs []Pair
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			p := NewPair(sorted[i], sorted[j])
			if excluded[p.Key()] {
				continue
			}
			if _, err := CorpusFor(p); err != nil {
				return nil, err
			}
			pairs = append(pairs, p)
		}
	}
	return pairs, nil
}
