package review_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lexiloop/lexiloop-api/internal/catalog"
	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/lexiloop/lexiloop-api/internal/platform/memory"
	"github.com/lexiloop/lexiloop-api/internal/service"
	"github.com/lexiloop/lexiloop-api/internal/service/review"
	"github.com/lexiloop/lexiloop-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

var testEntries = []domain.Vocabulary{
	{Word: "ubiquitous", Definition: "found everywhere", Difficulty: 3},
	{Word: "apple", Definition: "a fruit", Difficulty: 1},
	{Word: "lucid", Definition: "clear", Difficulty: 2},
	{Word: "brisk", Definition: "quick and energetic", Difficulty: 1},
	{Word: "ephemeral", Definition: "lasting a short time", Difficulty: 4},
	{Word: "candid", Definition: "truthful and straightforward", Difficulty: 2},
}

// MockMasteryStore is a mock implementation of the store.MasteryStore interface
type MockMasteryStore struct {
	mock.Mock
}

func (m *MockMasteryStore) Get(ctx context.Context, userID uuid.UUID, word string) (*domain.MasteryRecord, error) {
	args := m.Called(ctx, userID, word)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MasteryRecord), args.Error(1)
}

func (m *MockMasteryStore) WriteIfUnchanged(
	ctx context.Context,
	record *domain.MasteryRecord,
	expectedVersion int64,
) (int64, error) {
	args := m.Called(ctx, record, expectedVersion)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMasteryStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.MasteryRecord, error) {
	args := m.Called(ctx, userID, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MasteryRecord), args.Error(1)
}

func (m *MockMasteryStore) ListWords(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockMasteryStore) Summarize(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (*domain.MasterySummary, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MasterySummary), args.Error(1)
}

func newFixture(t *testing.T) (*memory.Backend, *catalog.Catalog) {
	t.Helper()

	cat, err := catalog.New(testEntries)
	require.NoError(t, err)

	backend := memory.New(nil)
	_, err = backend.Seed(context.Background(), testEntries)
	require.NoError(t, err)
	return backend, cat
}

func putRecord(t *testing.T, ms store.MasteryStore, userID uuid.UUID, word string, due time.Time, confidence float64) {
	t.Helper()

	reviewed := due.AddDate(0, 0, -1)
	record := &domain.MasteryRecord{
		UserID:          userID,
		Word:            word,
		MasteryLevel:    1,
		CorrectCount:    1,
		TotalAttempts:   1,
		ConfidenceScore: confidence,
		FirstLearnedAt:  reviewed,
		LastReviewedAt:  reviewed,
		NextDueAt:       due,
		CreatedAt:       reviewed,
		UpdatedAt:       reviewed,
	}
	_, err := ms.WriteIfUnchanged(context.Background(), record, 0)
	require.NoError(t, err)
}

func words(items []domain.DueItem) []string {
	result := make([]string, len(items))
	for i, item := range items {
		result[i] = item.Vocabulary.Word
	}
	return result
}

func TestGetDueQueue(t *testing.T) {
	t.Parallel()

	backend, cat := newFixture(t)
	ms := backend.Stores().Mastery
	userID := uuid.New()

	putRecord(t, ms, userID, "lucid", testNow.Add(-time.Hour), 0.6)
	putRecord(t, ms, userID, "ephemeral", testNow.Add(-time.Hour), 0.2)
	putRecord(t, ms, userID, "candid", testNow.Add(-48*time.Hour), 0.9)
	putRecord(t, ms, userID, "ubiquitous", testNow.Add(time.Hour), 0.1)
	putRecord(t, ms, uuid.New(), "apple", testNow.Add(-time.Hour), 0.1)

	scheduler := review.NewScheduler(ms, cat, review.Config{}, func() time.Time { return testNow }, nil)

	tests := []struct {
		name  string
		limit int
		want  []string
		isNew []bool
	}{
		{
			name:  "due records only",
			limit: 2,
			want:  []string{"candid", "ephemeral"},
			isNew: []bool{false, false},
		},
		{
			name:  "overdue first then weakest then backfill by difficulty",
			limit: 5,
			want:  []string{"candid", "ephemeral", "lucid", "apple", "brisk"},
			isNew: []bool{false, false, false, true, true},
		},
		{
			name:  "future records are never backfilled",
			limit: 10,
			want:  []string{"candid", "ephemeral", "lucid", "apple", "brisk"},
			isNew: []bool{false, false, false, true, true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			queue, err := scheduler.GetDueQueue(context.Background(), userID, tc.limit)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(queue), tc.limit)
			assert.Equal(t, tc.want, words(queue))

			for i, item := range queue {
				assert.Equal(t, tc.isNew[i], item.IsNew, item.Vocabulary.Word)
				if item.IsNew {
					assert.Nil(t, item.Record)
				} else {
					require.NotNil(t, item.Record)
					assert.True(t, item.Record.IsDue(testNow))
				}
			}
		})
	}
}

func TestGetDueQueue_NewUser(t *testing.T) {
	t.Parallel()

	backend, cat := newFixture(t)
	scheduler := review.NewScheduler(backend.Stores().Mastery, cat, review.Config{}, nil, nil)

	queue, err := scheduler.GetDueQueue(context.Background(), uuid.New(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "brisk", "lucid"}, words(queue))
}

func TestGetDueQueue_Limits(t *testing.T) {
	t.Parallel()

	backend, cat := newFixture(t)
	ms := backend.Stores().Mastery

	scheduler := review.NewScheduler(ms, cat, review.Config{DefaultLimit: 2, MaxLimit: 4}, nil, nil)
	assert.Equal(t, 2, scheduler.DefaultLimit())

	for _, limit := range []int{0, -1} {
		_, err := scheduler.GetDueQueue(context.Background(), uuid.New(), limit)
		assert.ErrorIs(t, err, service.ErrInvalidLimit)
	}

	queue, err := scheduler.GetDueQueue(context.Background(), uuid.New(), 50)
	require.NoError(t, err)
	assert.Len(t, queue, 4, "limit is clamped to the maximum")

	defaults := review.NewScheduler(ms, cat, review.Config{DefaultLimit: 500, MaxLimit: 100}, nil, nil)
	assert.Equal(t, review.DefaultLimit, defaults.DefaultLimit())
}

func TestGetDueQueue_StoreErrors(t *testing.T) {
	t.Parallel()

	_, cat := newFixture(t)
	userID := uuid.New()
	dbErr := errors.New("connection reset")

	t.Run("list due fails", func(t *testing.T) {
		t.Parallel()

		ms := new(MockMasteryStore)
		ms.On("ListDue", mock.Anything, userID, testNow, 5).Return(nil, dbErr)

		scheduler := review.NewScheduler(ms, cat, review.Config{}, func() time.Time { return testNow }, nil)
		_, err := scheduler.GetDueQueue(context.Background(), userID, 5)

		assert.ErrorIs(t, err, dbErr)
		var serviceErr *service.ServiceError
		require.ErrorAs(t, err, &serviceErr)
		assert.Equal(t, "get_due_queue", serviceErr.Operation)
		ms.AssertExpectations(t)
	})

	t.Run("list words fails", func(t *testing.T) {
		t.Parallel()

		ms := new(MockMasteryStore)
		ms.On("ListDue", mock.Anything, userID, testNow, 5).Return([]*domain.MasteryRecord{}, nil)
		ms.On("ListWords", mock.Anything, userID).Return(nil, dbErr)

		scheduler := review.NewScheduler(ms, cat, review.Config{}, func() time.Time { return testNow }, nil)
		_, err := scheduler.GetDueQueue(context.Background(), userID, 5)

		assert.ErrorIs(t, err, dbErr)
		ms.AssertExpectations(t)
	})

	t.Run("records for removed words are skipped", func(t *testing.T) {
		t.Parallel()

		ms := new(MockMasteryStore)
		ms.On("ListDue", mock.Anything, userID, testNow, 1).Return([]*domain.MasteryRecord{
			{UserID: userID, Word: "obsolete", NextDueAt: testNow},
		}, nil)
		ms.On("ListWords", mock.Anything, userID).Return([]string{"obsolete"}, nil)

		scheduler := review.NewScheduler(ms, cat, review.Config{}, func() time.Time { return testNow }, nil)
		queue, err := scheduler.GetDueQueue(context.Background(), userID, 1)

		require.NoError(t, err)
		assert.Equal(t, []string{"apple"}, words(queue))
		assert.True(t, queue[0].IsNew)
	})
}
