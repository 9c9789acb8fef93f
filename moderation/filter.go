// Package moderation masks censored words in message content before it
// reaches the store, so persisted history and live broadcasts agree.
package moderation

import (
	"bufio"
	"chat-relay/errors"
	"os"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Filter performs case-insensitive multi-pattern matching over message
// content and replaces every matched span with the mask character.
type Filter struct {
	machine *goahocorasick.Machine
	mask    rune
}

// NewFilter builds the Aho-Corasick automaton from a word list.
func NewFilter(words []string, mask rune) (*Filter, error) {
	if len(words) == 0 {
		return nil, errors.ErrEmptyWordList
	}

	patterns := make([][]rune, len(words))
	for i, word := range words {
		patterns[i] = lowerRunes(word)
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	return &Filter{machine: machine, mask: mask}, nil
}

// Mask replaces each censored span with mask characters, preserving the
// length and everything around the match.
func (f *Filter) Mask(content string) string {
	if content == "" {
		return content
	}

	lowered := lowerRunes(content)
	terms := f.machine.MultiPatternSearch(lowered, false)
	if len(terms) == 0 {
		return content
	}

	masked := []rune(content)
	for _, term := range terms {
		for i := term.Pos; i < term.Pos+len(term.Word) && i < len(masked); i++ {
			masked[i] = f.mask
		}
	}
	return string(masked)
}

// lowerRunes lowercases rune by rune so positions in the lowered text line
// up with positions in the original.
func lowerRunes(s string) []rune {
	runes := []rune(s)
	lowered := make([]rune, len(runes))
	for i, r := range runes {
		lowered[i] = unicode.ToLower(r)
	}
	return lowered
}

// LoadWordList reads one censored word per line, skipping blanks and
// '#' comments. Duplicates are collapsed.
func LoadWordList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	unique := make(map[string]struct{})
	var words []string

	// Scanner handles both \n and \r\n line endings.
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, seen := unique[line]; seen {
			continue
		}
		unique[line] = struct{}{}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}
