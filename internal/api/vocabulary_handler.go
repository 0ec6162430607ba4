package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lexiloop/lexiloop-api/internal/api/shared"
	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/lexiloop/lexiloop-api/internal/platform/logger"
	"github.com/lexiloop/lexiloop-api/internal/service/mastery"
)

const maxSearchLength = 100

// Catalog is the read side of the vocabulary catalog used by the API.
type Catalog interface {
	Lookup(word string) (domain.Vocabulary, error)
	Filter(maxDifficulty int, searchTerm string) []domain.Vocabulary
}

// VocabularyHandler exposes the vocabulary catalog.
type VocabularyHandler struct {
	catalog Catalog
	mastery mastery.Service
	logger  *slog.Logger
}

// NewVocabularyHandler creates a new VocabularyHandler
func NewVocabularyHandler(catalog Catalog, masteryService mastery.Service, logger *slog.Logger) *VocabularyHandler {
	if catalog == nil || masteryService == nil {
		panic("dependencies cannot be nil for VocabularyHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for VocabularyHandler")
	}
	return &VocabularyHandler{
		catalog: catalog,
		mastery: masteryService,
		logger:  logger.With(slog.String("component", "vocabulary_handler")),
	}
}

// ListVocabulary handles GET /vocabulary?max_difficulty=&search= requests.
func (h *VocabularyHandler) ListVocabulary(w http.ResponseWriter, r *http.Request) {
	maxDifficulty, err := queryInt(r, "max_difficulty", 0)
	if err == nil && (maxDifficulty < 0 || maxDifficulty > domain.MaxDifficulty) {
		err = domain.NewValidationError("max_difficulty", "must be between 0 and 5", domain.ErrValidation)
	}
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	if err == nil && len(search) > maxSearchLength {
		err = domain.NewValidationError("search", "is too long", domain.ErrValidation)
	}
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	words := h.catalog.Filter(maxDifficulty, search)
	shared.RespondWithJSON(w, r, http.StatusOK, VocabularyListResponse{Words: words, Count: len(words)})
}

// GetVocabulary handles GET /vocabulary/{word} requests. The user's mastery
// record is included when one exists.
func (h *VocabularyHandler) GetVocabulary(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	entry, err := h.catalog.Lookup(chi.URLParam(r, "word"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp := VocabularyDetailResponse{Vocabulary: entry}
	record, err := h.mastery.Get(r.Context(), userID, entry.Word)
	switch {
	case err == nil:
		resp.Mastery = record
	case errors.Is(err, domain.ErrNotFound):
		// not studied yet
	default:
		HandleAPIError(w, r, err, "Failed to load mastery")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
