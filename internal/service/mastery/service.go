// Package mastery implements the read-modify-write cycle of a single
// per-user, per-word mastery record.
package mastery

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lexiloop/lexiloop-api/internal/domain"
)

// Mutator computes the next state of a mastery record. It receives a copy of
// the current record, or a fresh level-0 record on first exposure, and must
// not keep a reference to it.
type Mutator func(record *domain.MasteryRecord) (*domain.MasteryRecord, error)

// OutcomePolicy applies one review outcome to a record. srs.Service
// satisfies it.
type OutcomePolicy interface {
	ApplyOutcome(record *domain.MasteryRecord, correct bool, reviewedAt time.Time) (*domain.MasteryRecord, error)
}

// Catalog resolves words to their canonical catalog entry.
type Catalog interface {
	Lookup(word string) (domain.Vocabulary, error)
}

// Service provides access to a user's mastery records.
type Service interface {
	// Get retrieves the user's record for word.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - userID: UUID of the user
	//   - word: The vocabulary word, matched against the catalog ignoring case
	//
	// Returns:
	//   - (*domain.MasteryRecord, nil): The stored record
	//   - (nil, catalog.ErrWordNotFound): If the word is not in the catalog
	//   - (nil, store.ErrMasteryRecordNotFound): If the user never studied the word
	Get(ctx context.Context, userID uuid.UUID, word string) (*domain.MasteryRecord, error)

	// Upsert applies fn to the user's record for word and stores the result.
	//
	// The read, mutation and write run in their own transaction. If another
	// writer changes the record in between, the whole cycle is repeated with
	// a fresh read, up to the configured number of attempts.
	//
	// Returns:
	//   - (*domain.MasteryRecord, nil): The stored record with its new version
	//   - (nil, domain.ErrInvalidReference): If the word is not in the catalog
	//   - (nil, store.ErrPersistenceFailure): If every attempt lost a race or
	//     the store is unavailable
	Upsert(ctx context.Context, userID uuid.UUID, word string, fn Mutator) (*domain.MasteryRecord, error)

	// RecordOutcome is Upsert with the review policy as mutator.
	RecordOutcome(ctx context.Context, userID uuid.UUID, word string, correct bool) (*domain.MasteryRecord, error)
}

// OutcomeMutator returns a Mutator that applies one review outcome at
// reviewedAt using policy.
func OutcomeMutator(policy OutcomePolicy, correct bool, reviewedAt time.Time) Mutator {
	return func(record *domain.MasteryRecord) (*domain.MasteryRecord, error) {
		return policy.ApplyOutcome(record, correct, reviewedAt)
	}
}
