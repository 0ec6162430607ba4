package mastery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/lexiloop/lexiloop-api/internal/store"
)

// ErrNilMutation is returned when a Mutator returns neither a record nor an error.
var ErrNilMutation = errors.New("mutator returned no record")

// Apply performs one read-modify-write attempt on the record for
// (userID, word) through ms. word must already be the canonical catalog
// spelling. A missing record starts from a fresh level-0 record created at
// now. It is meant to run inside an enclosing transaction; a lost race is
// returned as store.ErrConcurrencyConflict and is not retried here.
func Apply(
	ctx context.Context,
	ms store.MasteryStore,
	userID uuid.UUID,
	word string,
	now time.Time,
	fn Mutator,
) (*domain.MasteryRecord, error) {
	current, err := ms.Get(ctx, userID, word)
	switch {
	case errors.Is(err, store.ErrMasteryRecordNotFound):
		current, err = domain.NewMasteryRecord(userID, word, now)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read mastery record: %w", err)
	}

	expected := current.Version
	next, err := fn(current.Clone())
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, ErrNilMutation
	}

	// the key is not the mutator's to change
	next.UserID = userID
	next.Word = word
	if next.CreatedAt.IsZero() {
		next.CreatedAt = current.CreatedAt
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}

	version, err := ms.WriteIfUnchanged(ctx, next, expected)
	if err != nil {
		return nil, err
	}
	next.Version = version

	return next, nil
}
