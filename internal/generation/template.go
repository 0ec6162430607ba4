package generation

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TemplateGenerator writes stories from fixed sentence patterns. It never
// fails and needs no network, which makes it the last link of a Chain.
type TemplateGenerator struct {
	now func() time.Time
}

// NewTemplateGenerator creates a TemplateGenerator. A nil clock means time.Now.
func NewTemplateGenerator(clock func() time.Time) *TemplateGenerator {
	if clock == nil {
		clock = time.Now
	}
	return &TemplateGenerator{now: clock}
}

var _ Generator = (*TemplateGenerator)(nil)

var templateOpenings = map[StoryType]string{
	StoryTypeGeneral:   "Maya woke up early on a quiet morning and looked out of the window.",
	StoryTypeAdventure: "Maya packed her bag and set off along the old forest path before sunrise.",
	StoryTypeDailyLife: "Maya made coffee, fed the cat and sat down at the kitchen table.",
	StoryTypeScience:   "Maya arrived at the school laboratory where her class was testing a new idea.",
	StoryTypeHistory:   "Maya opened a dusty book about a small town that was founded long ago.",
}

var templateSentences = []string{
	"First, she thought about the word %s and smiled.",
	"Then she wrote %s in her notebook because it felt important.",
	"Later, her friend used %s in a story, and they both laughed.",
	"After lunch, she read a page where %s appeared twice.",
	"Meanwhile, her brother asked what %s meant, so she explained it to him.",
	"Next, she said %s out loud while she walked home.",
	"Before dinner, she made a new sentence with %s and shared it.",
}

const templateClosing = "Finally, at the end of the day, she felt proud of everything that she had learned."

// Name implements Generator.Name
func (g *TemplateGenerator) Name() string {
	return SourceTemplate
}

// GenerateStory implements Generator.GenerateStory
func (g *TemplateGenerator) GenerateStory(ctx context.Context, req Request) (*Story, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opening, ok := templateOpenings[req.StoryType]
	if !ok {
		opening = templateOpenings[StoryTypeGeneral]
	}

	parts := make([]string, 0, len(req.Words)+2)
	parts = append(parts, opening)
	for i, word := range req.Words {
		parts = append(parts, fmt.Sprintf(templateSentences[i%len(templateSentences)], word))
	}
	parts = append(parts, templateClosing)

	return NewStory(strings.Join(parts, " "), req, g.Name(), g.now()), nil
}
