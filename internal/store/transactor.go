package store

import "context"

// Stores groups the stores that take part in one unit of work. Inside
// Transactor.WithinTransaction every store shares the same transaction.
type Stores struct {
	Mastery  MasteryStore
	Streaks  StreakStore
	Sessions SessionStore
	Goals    GoalStore
}

// Transactor runs a unit of work atomically. If fn returns an error, none of
// its writes are visible to other callers.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}
