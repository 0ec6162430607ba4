package catalog

import (
	"bytes"
	"embed"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/xuri/excelize/v2"
)

//go:embed seed/vocabulary.json
var seedFS embed.FS

// ErrUnsupportedFormat is returned for seed files that are not JSON, CSV or XLSX.
var ErrUnsupportedFormat = errors.New("unsupported seed file format")

// ImportConfig maps spreadsheet columns to vocabulary fields for CSV and
// XLSX seed files. Columns are spreadsheet letters ("A", "B", ...); an empty
// column leaves the field unset.
type ImportConfig struct {
	SheetName           string
	SkipHeader          bool
	WordColumn          string
	DefinitionColumn    string
	PronunciationColumn string
	PartOfSpeechColumn  string
	DifficultyColumn    string
	ExamplesColumn      string
	SynonymsColumn      string
	ListSeparator       string
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		SheetName:           "Sheet1",
		SkipHeader:          true,
		WordColumn:          "A",
		DefinitionColumn:    "B",
		PronunciationColumn: "C",
		PartOfSpeechColumn:  "D",
		DifficultyColumn:    "E",
		ExamplesColumn:      "F",
		SynonymsColumn:      "G",
		ListSeparator:       "|",
	}
}

// LoadDefault returns the vocabulary seed bundled with the binary.
func LoadDefault() ([]domain.Vocabulary, error) {
	data, err := seedFS.ReadFile("seed/vocabulary.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read bundled seed: %w", err)
	}
	return ReadJSON(bytes.NewReader(data))
}

// LoadFile reads a seed file, picking the format from its extension.
func LoadFile(path string, cfg ImportConfig) ([]domain.Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return ReadJSON(f)
	case ".csv":
		return ReadCSV(f, cfg)
	case ".xlsx", ".xlsm":
		return ReadXLSX(f, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// ReadJSON decodes a JSON array of vocabulary entries.
func ReadJSON(r io.Reader) ([]domain.Vocabulary, error) {
	var entries []domain.Vocabulary
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode vocabulary JSON: %w", err)
	}
	return entries, nil
}

// ReadCSV reads vocabulary rows from CSV using the column mapping in cfg.
func ReadCSV(r io.Reader, cfg ImportConfig) ([]domain.Vocabulary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	return parseRows(records, cfg)
}

// ReadXLSX reads vocabulary rows from an Excel workbook using the column
// mapping in cfg. When the configured sheet is empty the first sheet is used.
func ReadXLSX(r io.Reader, cfg ImportConfig) ([]domain.Vocabulary, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheet := cfg.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return parseRows(rows, cfg)
}

type columnIndexes struct {
	word, definition, pronunciation, partOfSpeech, difficulty, examples, synonyms int
}

func parseRows(rows [][]string, cfg ImportConfig) ([]domain.Vocabulary, error) {
	cols, err := resolveColumns(cfg)
	if err != nil {
		return nil, err
	}

	separator := cfg.ListSeparator
	if separator == "" {
		separator = "|"
	}

	start := 0
	if cfg.SkipHeader {
		start = 1
	}

	entries := make([]domain.Vocabulary, 0, len(rows))
	for i := start; i < len(rows); i++ {
		row := rows[i]
		word := cell(row, cols.word)
		if word == "" {
			continue
		}

		difficulty := 1
		if raw := cell(row, cols.difficulty); raw != "" {
			difficulty, err = strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid difficulty %q: %w", i+1, raw, err)
			}
		}

		entries = append(entries, domain.Vocabulary{
			Word:          word,
			Definition:    cell(row, cols.definition),
			Pronunciation: cell(row, cols.pronunciation),
			PartOfSpeech:  cell(row, cols.partOfSpeech),
			Difficulty:    difficulty,
			Examples:      splitList(cell(row, cols.examples), separator),
			Synonyms:      splitList(cell(row, cols.synonyms), separator),
		})
	}

	return entries, nil
}

func resolveColumns(cfg ImportConfig) (columnIndexes, error) {
	var cols columnIndexes
	targets := []struct {
		name string
		dst  *int
	}{
		{cfg.WordColumn, &cols.word},
		{cfg.DefinitionColumn, &cols.definition},
		{cfg.PronunciationColumn, &cols.pronunciation},
		{cfg.PartOfSpeechColumn, &cols.partOfSpeech},
		{cfg.DifficultyColumn, &cols.difficulty},
		{cfg.ExamplesColumn, &cols.examples},
		{cfg.SynonymsColumn, &cols.synonyms},
	}

	for _, target := range targets {
		if target.name == "" {
			*target.dst = -1
			continue
		}
		n, err := excelize.ColumnNameToNumber(target.name)
		if err != nil {
			return cols, fmt.Errorf("invalid column %q: %w", target.name, err)
		}
		*target.dst = n - 1
	}

	if cols.word < 0 {
		return cols, errors.New("word column is required")
	}
	return cols, nil
}

func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

func splitList(value, separator string) []string {
	if value == "" {
		return nil
	}
	var items []string
	for _, part := range strings.Split(value, separator) {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
