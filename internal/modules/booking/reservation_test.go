package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"inkbook/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

type openAvailability struct{}

func (openAvailability) CheckWindow(ctx context.Context, artistID int64, start, end time.Time) error {
	return nil
}

// confirmedStore is an in-memory stand-in for the blocking-overlap
// query and the transactional confirm, shared across goroutines.
type confirmedStore struct {
	mu      sync.Mutex
	windows [][2]time.Time
}

func (s *confirmedStore) HasBlockingOverlap(ctx context.Context, artistID int64, start, end time.Time, excludeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlapsLocked(start, end), nil
}

func (s *confirmedStore) ConfirmIfFree(start, end time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overlapsLocked(start, end) {
		return repository.ErrSlotTaken
	}
	s.windows = append(s.windows, [2]time.Time{start, end})
	return nil
}

func (s *confirmedStore) overlapsLocked(start, end time.Time) bool {
	for _, w := range s.windows {
		if start.Before(w[1]) && w[0].Before(end) {
			return true
		}
	}
	return false
}

func TestResolver_ConcurrentConfirmsAdmitExactlyOne(t *testing.T) {
	store := &confirmedStore{}
	resolver := NewResolver(openAvailability{}, store)

	start := time.Now().Add(72 * time.Hour).Truncate(time.Hour)
	end := start.Add(2 * time.Hour)

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := resolver.WithArtistLock(7, func() error {
				if rerr := resolver.Reserve(context.Background(), 7, start, end, 0); rerr != nil {
					return rerr
				}
				return store.ConfirmIfFree(start, end)
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	won, lost := 0, 0
	for err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrAlreadyBooked) || errors.Is(err, repository.ErrSlotTaken):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, workers-1, lost)
}

func TestResolver_ReserveBlocksOverlapAllowsAdjacent(t *testing.T) {
	store := &confirmedStore{}
	resolver := NewResolver(openAvailability{}, store)

	start := time.Now().Add(72 * time.Hour).Truncate(time.Hour)
	end := start.Add(2 * time.Hour)
	assert.NoError(t, store.ConfirmIfFree(start, end))

	err := resolver.Reserve(context.Background(), 7, start.Add(time.Hour), end.Add(time.Hour), 0)
	assert.ErrorIs(t, err, ErrAlreadyBooked)

	err = resolver.Reserve(context.Background(), 7, end, end.Add(time.Hour), 0)
	assert.NoError(t, err, "windows are half-open, back to back is fine")
}

func TestIsSlotTaken(t *testing.T) {
	assert.True(t, isSlotTaken(repository.ErrSlotTaken))
	assert.True(t, isSlotTaken(&pgconn.PgError{Code: "23P01", ConstraintName: "idx_no_double_booking"}))
	assert.True(t, isSlotTaken(&pgconn.PgError{Code: "23505", ConstraintName: "idx_no_double_booking"}))
	assert.False(t, isSlotTaken(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}))
	assert.False(t, isSlotTaken(errors.New("boom")))
}
