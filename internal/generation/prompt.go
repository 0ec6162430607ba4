package generation

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed prompts/story.tmpl
var promptFS embed.FS

// SystemInstruction frames every story request sent to a language model.
const SystemInstruction = "You are a creative writing assistant specializing in educational content " +
	"for English language learners. Write engaging, coherent stories that naturally incorporate " +
	"vocabulary words."

var storyPrompt = template.Must(template.ParseFS(promptFS, "prompts/story.tmpl"))

var openings = map[StoryType]string{
	StoryTypeGeneral:   "Create an engaging short story that naturally incorporates these vocabulary words: %s. The story should be appropriate for %s level learners.",
	StoryTypeAdventure: "Write an exciting adventure story using these vocabulary words: %s. Make it engaging for %s level English learners.",
	StoryTypeDailyLife: "Create a realistic story about daily life that includes these vocabulary words: %s. Keep it suitable for %s level students.",
	StoryTypeScience:   "Write an educational science-themed story incorporating these vocabulary words: %s. Make it accessible for %s level learners.",
	StoryTypeHistory:   "Create an interesting historical story that uses these vocabulary words: %s. Ensure it's appropriate for %s level students.",
}

var levelNames = map[int]string{
	1: "beginner",
	2: "elementary",
	3: "intermediate",
	4: "upper-intermediate",
	5: "advanced",
}

// LevelName returns the reader level for a difficulty, defaulting to
// intermediate.
func LevelName(difficulty int) string {
	if name, ok := levelNames[difficulty]; ok {
		return name
	}
	return "intermediate"
}

type promptData struct {
	Opening   string
	Level     string
	MaxLength int
	WordList  string
}

// BuildPrompt renders the user prompt for req.
func BuildPrompt(req Request) (string, error) {
	opening, ok := openings[req.StoryType]
	if !ok {
		opening = openings[StoryTypeGeneral]
	}

	wordList := strings.Join(req.Words, ", ")
	level := LevelName(req.Difficulty)
	data := promptData{
		Opening:   fmt.Sprintf(opening, wordList, level),
		Level:     level,
		MaxLength: req.MaxLength,
		WordList:  wordList,
	}

	var buf bytes.Buffer
	if err := storyPrompt.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}
