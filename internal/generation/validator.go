package generation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Quality thresholds.
const (
	MinQualityScore     = 0.7
	MaxIssues           = 2
	MinVocabCoverage    = 0.8
	minReadabilityScore = 0.5
	minCoherenceScore   = 0.6
	minGrammarScore     = 0.7
)

// ValidationResult reports how generated content scored.
type ValidationResult struct {
	Valid              bool     `json:"valid"`
	QualityScore       float64  `json:"quality_score"`
	Issues             []string `json:"issues,omitempty"`
	VocabularyCoverage float64  `json:"vocabulary_coverage"`
	ReadabilityScore   float64  `json:"readability_score"`
	CoherenceScore     float64  `json:"coherence_score"`
	GrammarScore       float64  `json:"grammar_score"`
}

var (
	sentenceSplit  = regexp.MustCompile(`[.!?]+`)
	missingSpace   = regexp.MustCompile(`[.!?][a-zA-Z]`)
	silentSuffixes = regexp.MustCompile(`(ed|es|s)$`)
)

var commonWords = toSet(
	"the", "be", "to", "of", "and", "a", "in", "that", "have",
	"i", "it", "for", "not", "on", "with", "he", "as", "you",
	"do", "at", "this", "but", "his", "by", "from", "they",
	"she", "her", "or", "an", "will", "my", "one", "all",
	"would", "there", "their", "what", "so", "up", "out",
	"if", "about", "who", "get", "which", "go", "me", "when",
	"make", "can", "like", "time", "no", "just", "him", "know",
	"take", "people", "into", "year", "your", "good", "some",
	"could", "them", "see", "other", "than", "then", "now",
	"look", "only", "come", "its", "over", "think", "also",
	"back", "after", "use", "two", "how", "our", "work",
	"first", "well", "way", "even", "new", "want", "because",
	"any", "these", "give", "day", "most", "us",
)

var (
	transitions = []string{"however", "therefore", "meanwhile", "then", "next", "finally",
		"first", "second", "later", "after", "before"}
	pronouns   = []string{"he", "she", "it", "they", "this", "that", "these", "those"}
	connectors = []string{"and", "but", "or", "so", "because", "since", "although", "while"}
)

// Validate scores content against the vocabulary it should cover.
// maxWords bounds the story length in words; zero disables the bound.
func Validate(content string, vocabulary []string, maxWords int) ValidationResult {
	var issues []string
	trimmed := strings.TrimSpace(content)

	if len(trimmed) < MinStoryLength {
		issues = append(issues, "content too short")
	}
	if maxWords > 0 && len(strings.Fields(trimmed)) > maxWords {
		issues = append(issues, "content too long")
	}

	coverage := vocabularyCoverage(trimmed, vocabulary)
	if coverage < MinVocabCoverage {
		issues = append(issues, fmt.Sprintf("low vocabulary coverage: %.2f", coverage))
	}

	readability := readabilityScore(trimmed)
	if readability < minReadabilityScore {
		issues = append(issues, "poor readability")
	}

	coherence := coherenceScore(trimmed)
	if coherence < minCoherenceScore {
		issues = append(issues, "poor coherence")
	}

	grammar := grammarScore(trimmed)
	if grammar < minGrammarScore {
		issues = append(issues, "grammar issues detected")
	}

	quality := coverage*0.3 + readability*0.25 + coherence*0.25 + grammar*0.2

	return ValidationResult{
		Valid:              quality >= MinQualityScore && len(issues) <= MaxIssues,
		QualityScore:       quality,
		Issues:             issues,
		VocabularyCoverage: coverage,
		ReadabilityScore:   readability,
		CoherenceScore:     coherence,
		GrammarScore:       grammar,
	}
}

func vocabularyCoverage(content string, vocabulary []string) float64 {
	if len(vocabulary) == 0 {
		return 1
	}
	return float64(len(WordsUsed(content, vocabulary))) / float64(len(vocabulary))
}

func sentences(content string) []string {
	var result []string
	for _, s := range sentenceSplit.Split(content, -1) {
		if s = strings.TrimSpace(s); s != "" {
			result = append(result, s)
		}
	}
	return result
}

// readabilityScore favours sentences of about 15 words, about two
// syllables per word and few complex words.
func readabilityScore(content string) float64 {
	sents := sentences(content)
	if len(sents) == 0 {
		return 0
	}

	var totalWords, totalSyllables, complexWords int
	for _, s := range sents {
		for _, word := range strings.Fields(s) {
			totalWords++
			n := countSyllables(word)
			totalSyllables += n
			if n > 2 {
				if _, common := commonWords[strings.ToLower(word)]; !common {
					complexWords++
				}
			}
		}
	}
	if totalWords == 0 {
		return 0
	}

	avgSentence := float64(totalWords) / float64(len(sents))
	avgSyllables := float64(totalSyllables) / float64(totalWords)
	complexity := float64(complexWords) / float64(totalWords)

	sentenceScore := max(0, 1-abs(avgSentence-15)/15)
	syllableScore := max(0, 1-abs(avgSyllables-2)/2)
	complexityScore := max(0, 1-complexity)

	return min(1, (sentenceScore+syllableScore+complexityScore)/3)
}

func countSyllables(word string) int {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return 0
	}
	word = silentSuffixes.ReplaceAllString(word, "")

	count := 0
	prevVowel := false
	for _, r := range word {
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !prevVowel {
			count++
		}
		prevVowel = vowel
	}
	if strings.HasSuffix(word, "e") && count > 1 {
		count--
	}
	return max(1, count)
}

// coherenceScore rewards transitions, pronouns and connectors on top of a
// base score. Fewer than three sentences scores 0.3.
func coherenceScore(content string) float64 {
	if len(sentences(content)) < 3 {
		return 0.3
	}

	lower := strings.ToLower(content)
	score := 0.5
	score += min(0.2, float64(countPresent(lower, transitions))*0.05)
	score += min(0.15, float64(countPresent(lower, pronouns))*0.02)
	score += min(0.15, float64(countPresent(lower, connectors))*0.03)
	return min(1, score)
}

func countPresent(content string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(content, w) {
			n++
		}
	}
	return n
}

// grammarScore penalises uncapitalised sentences, missing periods, missing
// spaces after punctuation and run-on sentences.
func grammarScore(content string) float64 {
	sents := sentences(content)
	if len(sents) == 0 {
		return 0
	}

	score := 1.0
	capitalized := 0
	for _, s := range sents {
		if r := []rune(s)[0]; unicode.IsUpper(r) {
			capitalized++
		}
	}
	score *= float64(capitalized) / float64(len(sents))

	if !strings.Contains(content, ".") {
		score *= 0.8
	}
	if missingSpace.MatchString(content) {
		score *= 0.9
	}
	if float64(len(strings.Fields(content)))/float64(len(sents)) > 30 {
		score *= 0.8
	}
	return max(0, score)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
