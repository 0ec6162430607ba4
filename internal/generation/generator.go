package generation

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// StoryType selects the theme of a story.
type StoryType string

// Supported story types.
const (
	StoryTypeGeneral   StoryType = "general"
	StoryTypeAdventure StoryType = "adventure"
	StoryTypeDailyLife StoryType = "daily_life"
	StoryTypeScience   StoryType = "science"
	StoryTypeHistory   StoryType = "history"
)

// Valid reports whether t is a known story type.
func (t StoryType) Valid() bool {
	switch t {
	case StoryTypeGeneral, StoryTypeAdventure, StoryTypeDailyLife, StoryTypeScience, StoryTypeHistory:
		return true
	default:
		return false
	}
}

// Request bounds.
const (
	MaxWords          = 20
	MinStoryLength    = 100
	MaxStoryLength    = 1500
	DefaultDifficulty = 1
	DefaultMaxLength  = 800
)

// Sources reported on generated stories.
const (
	SourceGemini   = "gemini"
	SourceTemplate = "template"
)

// Request describes the story to generate. MaxLength is in words.
type Request struct {
	Words      []string
	Difficulty int
	StoryType  StoryType
	MaxLength  int
}

// WithDefaults returns a copy of r with unset fields defaulted and words
// trimmed and de-duplicated ignoring case.
func (r Request) WithDefaults() Request {
	if r.Difficulty == 0 {
		r.Difficulty = DefaultDifficulty
	}
	if r.StoryType == "" {
		r.StoryType = StoryTypeGeneral
	}
	if r.MaxLength == 0 {
		r.MaxLength = DefaultMaxLength
	}

	seen := make(map[string]struct{}, len(r.Words))
	words := make([]string, 0, len(r.Words))
	for _, w := range r.Words {
		w = strings.TrimSpace(w)
		key := strings.ToLower(w)
		if w == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		words = append(words, w)
	}
	r.Words = words
	return r
}

// Validate checks the request bounds.
func (r Request) Validate() error {
	switch {
	case len(r.Words) == 0:
		return fmt.Errorf("%w: vocabulary list cannot be empty", ErrInvalidRequest)
	case len(r.Words) > MaxWords:
		return fmt.Errorf("%w: too many vocabulary words (max %d)", ErrInvalidRequest, MaxWords)
	case r.Difficulty < 1 || r.Difficulty > 5:
		return fmt.Errorf("%w: difficulty must be between 1 and 5", ErrInvalidRequest)
	case !r.StoryType.Valid():
		return fmt.Errorf("%w: unknown story type %q", ErrInvalidRequest, r.StoryType)
	case r.MaxLength < MinStoryLength || r.MaxLength > MaxStoryLength:
		return fmt.Errorf("%w: max length must be between %d and %d words",
			ErrInvalidRequest, MinStoryLength, MaxStoryLength)
	}
	return nil
}

// Story is a generated text together with what it covers.
type Story struct {
	Content        string    `json:"content"`
	VocabularyUsed []string  `json:"vocabulary_used"`
	WordCount      int       `json:"word_count"`
	Difficulty     int       `json:"difficulty"`
	StoryType      StoryType `json:"story_type"`
	QualityScore   float64   `json:"quality_score"`
	Source         string    `json:"source"`
	CacheKey       string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// Generator defines the interface for generating stories.
// This interface serves as a boundary between the application core and
// external AI/LLM services.
type Generator interface {
	// GenerateStory writes a story for req. req has already been defaulted
	// and validated.
	//
	// Returns:
	//   - The story, with Source set to the generator's name
	//   - An error if the generation fails for any reason (see errors.go for specific types)
	GenerateStory(ctx context.Context, req Request) (*Story, error)

	// Name identifies the generator in logs and on stories.
	Name() string
}

// NewStory builds a Story from generated content.
func NewStory(content string, req Request, source string, now time.Time) *Story {
	content = strings.TrimSpace(content)
	return &Story{
		Content:        content,
		VocabularyUsed: WordsUsed(content, req.Words),
		WordCount:      len(strings.Fields(content)),
		Difficulty:     req.Difficulty,
		StoryType:      req.StoryType,
		Source:         source,
		CreatedAt:      now.UTC(),
	}
}

// WordsUsed returns the words that appear in content as whole words,
// ignoring case, in the order given.
func WordsUsed(content string, words []string) []string {
	used := make([]string, 0, len(words))
	for _, w := range words {
		if containsWord(content, w) {
			used = append(used, w)
		}
	}
	return used
}

func containsWord(content, word string) bool {
	pattern := `(?i)\b` + regexp.QuoteMeta(word) + `\b`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(content)
}
