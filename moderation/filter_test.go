package moderation

import (
	"os"
	"path/filepath"
	"testing"

	"chat-relay/errors"

	"github.com/stretchr/testify/require"
)

func TestFilter_Mask(t *testing.T) {
	filter, err := NewFilter([]string{"badword", "slur"}, '*')
	require.NoError(t, err)

	testCases := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "single word",
			content:  "that is a badword right there",
			expected: "that is a ******* right there",
		},
		{
			name:     "multiple occurrences",
			content:  "badword and another badword",
			expected: "******* and another *******",
		},
		{
			name:     "case insensitive",
			content:  "BadWord and SLUR",
			expected: "******* and ****",
		},
		{
			name:     "no match",
			content:  "perfectly fine sentence",
			expected: "perfectly fine sentence",
		},
		{
			name:     "empty content",
			content:  "",
			expected: "",
		},
		{
			name:     "word inside another",
			content:  "xbadwordx",
			expected: "x*******x",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, filter.Mask(tc.content))
		})
	}
}

func TestFilter_Mask_Preserves_Length_With_Accents(t *testing.T) {
	req := require.New(t)
	filter, err := NewFilter([]string{"idiot"}, '*')
	req.NoError(err)

	// Runes before the match must not shift the masked span
	masked := filter.Mask("héhé idiot héhé")
	req.Equal("héhé ***** héhé", masked)
}

func TestFilter_Custom_Mask_Character(t *testing.T) {
	req := require.New(t)
	filter, err := NewFilter([]string{"nope"}, '#')
	req.NoError(err)

	req.Equal("#### indeed", filter.Mask("nope indeed"))
}

func TestNewFilter_Empty_Word_List(t *testing.T) {
	req := require.New(t)

	_, err := NewFilter(nil, '*')

	req.ErrorIs(err, errors.ErrEmptyWordList)
}

func TestLoadWordList(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "censored.txt")
	content := "badword\n\n# a comment\nslur\nbadword\n  spaced  \n"
	req.NoError(os.WriteFile(path, []byte(content), 0o600))

	words, err := LoadWordList(path)

	req.NoError(err)
	req.Equal([]string{"badword", "slur", "spaced"}, words)
}

func TestLoadWordList_Missing_File(t *testing.T) {
	req := require.New(t)

	_, err := LoadWordList(filepath.Join(t.TempDir(), "absent.txt"))

	req.Error(err)
}
