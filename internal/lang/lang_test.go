package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocaleTag(t *testing.T) {
	tag, err := LocaleTag("en")
	require.NoError(t, err)
	assert.Equal(t, "en_XX", tag)

	tag, err = LocaleTag("az")
	require.NoError(t, err)
	assert.Equal(t, "az_AZ", tag)
}

func TestLocaleTagUnknown(t *testing.T) {
	_, err := LocaleTag("xx")
	assert.ErrorIs(t, err, ErrUnknownLanguage)
}

func TestLocaleTagListStable(t *testing.T) {
	a := LocaleTagList()
	b := LocaleTagList()
	require.Equal(t, a, b, "tag list order must be stable across calls")
	assert.Len(t, a, 38)
}

func TestNewPairCanonical(t *testing.T) {
	assert.Equal(t, NewPair("en", "az"), NewPair("az", "en"))
	assert.Equal(t, "az-en", NewPair("en", "az").Key())
	assert.Equal(t, "en-az", NewPair("en", "az").Reversed())
}

func TestCorpusFor(t *testing.T) {
	name, err := CorpusFor(NewPair("en", "tr"))
	require.NoError(t, err)
	assert.Equal(t, "ted_multi", name)

	name, err = CorpusFor(NewPair("en", "cs"))
	require.NoError(t, err)
	assert.Equal(t, "wmt14", name)
}

func TestCorpusForUnsupported(t *testing.T) {
	_, err := CorpusFor(NewPair("de", "fr"))
	assert.ErrorIs(t, err, ErrUnsupportedLanguagePair)
}

func TestPairs(t *testing.T) {
	pairs, err := Pairs([]string{"en", "az", "tr"}, nil)
	require.NoError(t, err)
	require.Len(t, pairs, 3)
	assert.Equal(t, "az-en", pairs[0].Key())
	assert.Equal(t, "az-tr", pairs[1].Key())
	assert.Equal(t, "en-tr", pairs[2].Key())
}

func TestPairsExclude(t *testing.T) {
	pairs, err := Pairs([]string{"en", "az", "tr"}, []string{"az-tr"})
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "az-en", pairs[0].Key())
	assert.Equal(t, "en-tr", pairs[1].Key())
}

func TestPairsUnknownLanguage(t *testing.T) {
	_, err := Pairs([]string{"en", "xx"}, nil)
	assert.ErrorIs(t, err, ErrUnknownLanguage)
}

func TestPairsUnsupportedPair(t *testing.T) {
	// de and fr are both known languages, but no corpus backs de-fr.
	_, err := Pairs([]string{"de", "fr"}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedLanguagePair)
}
