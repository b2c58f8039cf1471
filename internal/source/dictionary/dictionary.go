// Package dictionary serves prefix completions from a frequency-ranked word
// list held in a patricia trie.
package dictionary

import (
	"bufio"
	"context"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/robottwo/suggester/pkg/suggester"
)

// Word is a dictionary entry.
type Word struct {
	Text      string
	Frequency int
}

// Dictionary is read-only once loaded and safe for concurrent fetches.
type Dictionary struct {
	// keyed by the lower-cased word; each item is a []Word sharing that key
	trie  *patricia.Trie
	words int
	limit int
}

func New(limit int) *Dictionary {
	if limit <= 0 {
		limit = suggester.DefaultMaxSuggestions
	}
	return &Dictionary{
		trie:  patricia.NewTrie(),
		limit: limit,
	}
}

// Load reads a word list from path. See Read for the format.
func Load(path string, limit int) (*Dictionary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open dictionary %s", path)
	}
	defer func() {
		_ = file.Close()
	}()

	d := New(limit)
	if err := d.Read(file); err != nil {
		return nil, errors.Wrapf(err, "failed to load dictionary %s", path)
	}
	return d, nil
}

// Read adds one word per line. A line is "word" or "word<TAB>frequency";
// blank lines and lines starting with '#' are skipped.
func (d *Dictionary) Read(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		word, freqField, hasFreq := strings.Cut(line, "\t")
		frequency := 1
		if hasFreq {
			n, err := strconv.Atoi(strings.TrimSpace(freqField))
			if err != nil {
				return errors.Wrapf(err, "line %d: invalid frequency", lineNumber)
			}
			frequency = n
		}
		d.Add(strings.TrimSpace(word), frequency)
	}
	return scanner.Err()
}

// Add inserts a word. Adding the same word again keeps the higher frequency.
func (d *Dictionary) Add(text string, frequency int) {
	if text == "" {
		return
	}
	key := patricia.Prefix(strings.ToLower(text))

	var words []Word
	if item := d.trie.Get(key); item != nil {
		words = item.([]Word)
	}
	for i, w := range words {
		if w.Text == text {
			if frequency > w.Frequency {
				words[i].Frequency = frequency
			}
			return
		}
	}

	d.trie.Set(key, append(words, Word{Text: text, Frequency: frequency}))
	d.words++
}

// Len reports the number of distinct words.
func (d *Dictionary) Len() int {
	return d.words
}

// Lookup returns up to limit words starting with prefix, ignoring case,
// highest frequency first.
func (d *Dictionary) Lookup(prefix string, limit int) []Word {
	if prefix == "" {
		return nil
	}

	var found []Word
	_ = d.trie.VisitSubtree(patricia.Prefix(strings.ToLower(prefix)), func(_ patricia.Prefix, item patricia.Item) error {
		found = append(found, item.([]Word)...)
		return nil
	})

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Frequency != found[j].Frequency {
			return found[i].Frequency > found[j].Frequency
		}
		return found[i].Text < found[j].Text
	})

	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	return found
}

func (d *Dictionary) Fetch(_ context.Context, text string) ([]suggester.Suggestion, error) {
	words := d.Lookup(text, d.limit)
	suggestions := make([]suggester.Suggestion, 0, len(words))
	for _, w := range words {
		suggestions = append(suggestions, suggester.Suggestion{Label: w.Text})
	}
	return suggestions, nil
}
