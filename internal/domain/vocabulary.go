package domain

import "strings"

// Difficulty bounds for catalog entries.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// Vocabulary is an immutable catalog entry. Entries are created by catalog
// seeding and never mutated by user activity.
type Vocabulary struct {
	Word          string   `json:"word"`
	Definition    string   `json:"definition"`
	Pronunciation string   `json:"pronunciation,omitempty"`
	PartOfSpeech  string   `json:"part_of_speech,omitempty"`
	Difficulty    int      `json:"difficulty"`
	Examples      []string `json:"examples,omitempty"`
	Synonyms      []string `json:"synonyms,omitempty"`
}

// Validate checks that the entry can be added to a catalog.
func (v Vocabulary) Validate() error {
	if strings.TrimSpace(v.Word) == "" {
		return NewValidationError("word", "cannot be empty", nil)
	}
	if strings.TrimSpace(v.Word) != v.Word {
		return NewValidationError("word", "cannot have surrounding whitespace", nil)
	}
	if strings.TrimSpace(v.Definition) == "" {
		return NewValidationError("definition", "cannot be empty", nil)
	}
	if v.Difficulty < MinDifficulty || v.Difficulty > MaxDifficulty {
		return NewValidationError("difficulty", "must be between 1 and 5", nil)
	}
	return nil
}

// Clone returns a copy that shares no slices with v.
func (v Vocabulary) Clone() Vocabulary {
	c := v
	if v.Examples != nil {
		c.Examples = append([]string(nil), v.Examples...)
	}
	if v.Synonyms != nil {
		c.Synonyms = append([]string(nil), v.Synonyms...)
	}
	return c
}
