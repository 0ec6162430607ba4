// Package store defines the persistence contracts of LexiLoop: versioned
// reads and optimistic writes for mastery records and streaks, the
// append-only study session log, weekly goals and catalog seeding. It also
// holds the transaction and conflict-retry helpers shared by every backend.
package store
