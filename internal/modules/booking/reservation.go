package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"inkbook/internal/modules/availability"
	"inkbook/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
)

// OverlapChecker is the slice of the booking repository the resolver
// needs.
type OverlapChecker interface {
	HasBlockingOverlap(ctx context.Context, artistID int64, start, end time.Time, excludeID int64) (bool, error)
}

// Resolver serializes reservation checks per artist. The in-process
// mutex closes the local check-then-write race; the transactional
// ConfirmIfFree plus the Postgres exclusion constraint close it across
// processes.
type Resolver struct {
	avail    AvailabilityChecker
	bookings OverlapChecker

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewResolver(avail AvailabilityChecker, bookings OverlapChecker) *Resolver {
	return &Resolver{
		avail:    avail,
		bookings: bookings,
		locks:    make(map[int64]*sync.Mutex),
	}
}

// WithArtistLock runs fn while holding the artist's reservation lock.
func (r *Resolver) WithArtistLock(artistID int64, fn func() error) error {
	l := r.artistLock(artistID)
	l.Lock()
	defer l.Unlock()
	return fn()
}

func (r *Resolver) artistLock(artistID int64) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[artistID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[artistID] = l
	}
	return l
}

// Reserve validates a requested window: inside working hours, clear of
// time off, and not overlapping a CONFIRMED/COMPLETED booking.
// excludeID ignores the booking's own row on reschedule and confirm.
// PENDING holds never block; callers must hold the artist lock when
// the result gates a write.
func (r *Resolver) Reserve(ctx context.Context, artistID int64, start, end time.Time, excludeID int64) error {
	if err := r.avail.CheckWindow(ctx, artistID, start, end); err != nil {
		switch {
		case errors.Is(err, availability.ErrOutsideHours):
			return ErrOutsideHours
		case errors.Is(err, availability.ErrTimeOff):
			return ErrTimeOff
		case errors.Is(err, availability.ErrValidation):
			return ErrValidation
		default:
			return err
		}
	}

	taken, err := r.bookings.HasBlockingOverlap(ctx, artistID, start, end, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrAlreadyBooked
	}
	return nil
}

// isExclusionViolation recognizes the Postgres constraint that rejects
// overlapping confirmed windows when a competing transaction slipped
// past the count check.
func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != "23P01" && pgErr.Code != "23505" {
		return false
	}
	return pgErr.ConstraintName == "idx_no_double_booking"
}

// isSlotTaken folds the repository sentinel and the constraint
// violation into one answer for the confirm path.
func isSlotTaken(err error) bool {
	return errors.Is(err, repository.ErrSlotTaken) || isExclusionViolation(err)
}
