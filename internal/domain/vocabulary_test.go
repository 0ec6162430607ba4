package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVocabularyValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entry   Vocabulary
		wantErr bool
	}{
		{"valid", Vocabulary{Word: "lucid", Definition: "expressed clearly", Difficulty: 2}, false},
		{"multi-word phrase", Vocabulary{Word: "carpe diem", Definition: "seize the day", Difficulty: 3}, false},
		{"empty word", Vocabulary{Word: "  ", Definition: "blank", Difficulty: 1}, true},
		{"leading space", Vocabulary{Word: " lucid", Definition: "expressed clearly", Difficulty: 2}, true},
		{"trailing newline", Vocabulary{Word: "lucid\n", Definition: "expressed clearly", Difficulty: 2}, true},
		{"empty definition", Vocabulary{Word: "lucid", Difficulty: 2}, true},
		{"difficulty too high", Vocabulary{Word: "lucid", Definition: "clear", Difficulty: 6}, true},
		{"difficulty too low", Vocabulary{Word: "lucid", Definition: "clear", Difficulty: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.entry.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}
