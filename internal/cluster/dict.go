package cluster

import (
	"regexp"

	"golang.org/x/text/cases"
)

var (
	nonWordPattern    = regexp.MustCompile(`[^\p{L}\p{N}_]`)
	whitespacePattern = regexp.MustCompile(`\s`)
	fold              = cases.Fold()
)

// Dict assigns a stable integer id to every distinct raw string it sees,
// tracking a per-string occurrence count and a normalized token used for
// similarity comparison.
type Dict struct {
	indexes map[string]int
	counts  map[string]int
	words   []string
	tokens  []string
}

// NewDict returns an empty dictionary.
func NewDict() *Dict {
	return &Dict{
		indexes: make(map[string]int),
		counts:  make(map[string]int),
	}
}

func tokenize(word string) string {
	folded := fold.String(word)
	token := nonWordPattern.ReplaceAllString(folded, "")
	if token != "" {
		return token
	}
	return whitespacePattern.ReplaceAllString(folded, "")
}

// Add registers a raw string and returns its id, incrementing the
// occurrence count when it was seen before. Empty or untokenizable
// strings return -1 and are never clustered.
func (d *Dict) Add(word string) int {
	if word == "" {
		return -1
	}
	if index, ok := d.indexes[word]; ok {
		d.counts[word]++
		return index
	}
	token := tokenize(word)
	if token == "" {
		return -1
	}
	index := len(d.words)
	d.indexes[word] = index
	d.counts[word] = 1
	d.words = append(d.words, word)
	d.tokens = append(d.tokens, token)
	return index
}

// Size returns the number of distinct registered strings.
func (d *Dict) Size() int { return len(d.words) }

// Word returns the raw string for an id.
func (d *Dict) Word(index int) string { return d.words[index] }

// Token returns the normalized token for an id.
func (d *Dict) Token(index int) string { return d.tokens[index] }

// WordAndCount returns the raw string and its occurrence count.
func (d *Dict) WordAndCount(index int) (string, int) {
	word := d.words[index]
	return word, d.counts[word]
}
