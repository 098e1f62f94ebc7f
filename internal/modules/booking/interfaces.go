package booking

import (
	"context"
	"time"

	"inkbook/internal/domain"
)

// BookingRepository is the storage surface the lifecycle needs. The
// confirm path relies on ConfirmIfFree being a single transactional
// check-and-write.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	HasBlockingOverlap(ctx context.Context, artistID int64, start, end time.Time, excludeID int64) (bool, error)
	ConfirmIfFree(ctx context.Context, bookingID int64, paymentRef string) error
	UpdateStatus(ctx context.Context, bookingID int64, status domain.BookingStatus) error
	UpdateWindow(ctx context.Context, bookingID int64, start, end time.Time) error
	CancelWithReason(ctx context.Context, bookingID int64, reason string, at time.Time) error
	SetRefund(ctx context.Context, bookingID, cents int64, ref, reason string, at time.Time, by int64) error
	MarkNoShow(ctx context.Context, bookingID int64, at time.Time) error
	SetCommissionID(ctx context.Context, bookingID, commissionID int64) error
	ListByClient(ctx context.Context, clientID int64, limit, offset int) ([]domain.Booking, error)
	ListByStudio(ctx context.Context, studioID int64, limit, offset int) ([]domain.Booking, error)
	CountNoShows(ctx context.Context, clientID int64) (int64, error)
	NoShowDates(ctx context.Context, clientID int64) ([]time.Time, error)
	DueReminders(ctx context.Context, from, to time.Time) ([]domain.Booking, error)
}

// AvailabilityChecker validates a window against working hours and
// time off.
type AvailabilityChecker interface {
	CheckWindow(ctx context.Context, artistID int64, start, end time.Time) error
}

// StudioReader resolves the studio owning a booking, for refund
// policy lookup and owner permission checks.
type StudioReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Studio, error)
}

// PaymentGateway is the external payment collaborator. Both calls must
// respect the context deadline; a deadline hit is a failure and the
// booking state is left untouched by the caller.
type PaymentGateway interface {
	ChargeDeposit(ctx context.Context, amountCents int64, reference string) (paymentRef string, err error)
	Refund(ctx context.Context, paymentRef string, amountCents int64) (refundRef string, err error)
}

// CommissionCalculator produces the studio's earned commission for a
// completed booking, idempotently.
type CommissionCalculator interface {
	Calculate(ctx context.Context, b *domain.Booking) (*domain.EarnedCommission, error)
}

// NotificationSender describes lifecycle notifications; delivery is
// external and failures never fail the transition.
type NotificationSender interface {
	NotifyBookingCreated(ctx context.Context, b *domain.Booking) error
	NotifyBookingConfirmed(ctx context.Context, b *domain.Booking) error
	NotifyBookingCancelled(ctx context.Context, b *domain.Booking, refundCents int64) error
	NotifyNoShow(ctx context.Context, b *domain.Booking) error
	NotifyCommissionEarned(ctx context.Context, b *domain.Booking, amountCents int64) error
	NotifyReminder(ctx context.Context, b *domain.Booking) error
}
