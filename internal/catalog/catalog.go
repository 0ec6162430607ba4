// Package catalog holds the read-only vocabulary reference data. A Catalog
// is built once from seed data at startup and only read afterwards, so it is
// safe for concurrent use without locking.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lexiloop/lexiloop-api/internal/domain"
)

var (
	// ErrWordNotFound is returned by Lookup for words outside the catalog.
	ErrWordNotFound = fmt.Errorf("%w: vocabulary word", domain.ErrNotFound)

	// ErrDuplicateWord is returned when seed data lists a word twice.
	ErrDuplicateWord = errors.New("duplicate vocabulary word")
)

// Catalog is an immutable, ordered set of vocabulary entries.
type Catalog struct {
	entries      []domain.Vocabulary
	index        map[string]int
	byDifficulty []int
}

// New builds a catalog from entries in insertion order. Entries are
// validated and stored unchanged; words must be unique ignoring case.
func New(entries []domain.Vocabulary) (*Catalog, error) {
	c := &Catalog{
		entries: make([]domain.Vocabulary, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}

	for i, entry := range entries {
		if err := entry.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}

		key := normalize(entry.Word)
		if _, exists := c.index[key]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateWord, entry.Word)
		}

		c.index[key] = len(c.entries)
		c.entries = append(c.entries, entry.Clone())
	}

	c.byDifficulty = make([]int, len(c.entries))
	for i := range c.byDifficulty {
		c.byDifficulty[i] = i
	}
	sort.SliceStable(c.byDifficulty, func(i, j int) bool {
		return c.entries[c.byDifficulty[i]].Difficulty < c.entries[c.byDifficulty[j]].Difficulty
	})

	return c, nil
}

// Lookup returns the entry for word. Matching ignores case and surrounding
// whitespace; the returned entry carries the canonical seeded spelling.
func (c *Catalog) Lookup(word string) (domain.Vocabulary, error) {
	i, ok := c.index[normalize(word)]
	if !ok {
		return domain.Vocabulary{}, fmt.Errorf("%w: %q", ErrWordNotFound, word)
	}
	return c.entries[i].Clone(), nil
}

// Contains reports whether word is in the catalog.
func (c *Catalog) Contains(word string) bool {
	_, ok := c.index[normalize(word)]
	return ok
}

// Filter returns entries up to maxDifficulty whose word or definition
// contains searchTerm, ignoring case. Results are ordered by ascending
// difficulty, then insertion order. A maxDifficulty of zero or less disables
// the difficulty bound and an empty searchTerm matches everything.
func (c *Catalog) Filter(maxDifficulty int, searchTerm string) []domain.Vocabulary {
	term := strings.ToLower(strings.TrimSpace(searchTerm))
	result := make([]domain.Vocabulary, 0)

	for _, i := range c.byDifficulty {
		entry := c.entries[i]
		if maxDifficulty > 0 && entry.Difficulty > maxDifficulty {
			// byDifficulty is sorted, nothing after this can match
			break
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(entry.Word), term) &&
			!strings.Contains(strings.ToLower(entry.Definition), term) {
			continue
		}
		result = append(result, entry.Clone())
	}

	return result
}

// All returns every entry in insertion order.
func (c *Catalog) All() []domain.Vocabulary {
	result := make([]domain.Vocabulary, len(c.entries))
	for i, entry := range c.entries {
		result[i] = entry.Clone()
	}
	return result
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

func normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}
