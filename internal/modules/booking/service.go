package booking

import (
	"context"
	"time"

	"inkbook/internal/domain"

	"github.com/google/uuid"
)

type Service struct {
	bookings    BookingRepository
	studios     StudioReader
	resolver    *Resolver
	gateway     PaymentGateway
	commissions CommissionCalculator
	notifs      NotificationSender

	defaults       domain.RefundPolicy
	reminderLead   time.Duration
	paymentTimeout time.Duration
	loggerf        func(format string, args ...interface{})
}

func NewService(
	bookings BookingRepository,
	studios StudioReader,
	resolver *Resolver,
	gateway PaymentGateway,
	commissions CommissionCalculator,
	notifs NotificationSender,
	defaults domain.RefundPolicy,
	reminderLead time.Duration,
	paymentTimeout time.Duration,
	loggerf func(format string, args ...interface{}),
) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		bookings:       bookings,
		studios:        studios,
		resolver:       resolver,
		gateway:        gateway,
		commissions:    commissions,
		notifs:         notifs,
		defaults:       defaults,
		reminderLead:   reminderLead,
		paymentTimeout: paymentTimeout,
		loggerf:        loggerf,
	}
}

// Create validates a client's requested window and records a PENDING
// hold. PENDING holds do not block each other; the confirm transition
// owns the authoritative check.
func (s *Service) Create(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrValidation
	}
	if req.StartTime.Before(time.Now()) {
		return nil, ErrValidation
	}
	if req.PriceCents < 0 || req.DepositCents < 0 || req.DepositCents > req.PriceCents {
		return nil, ErrValidation
	}

	if err := s.resolver.Reserve(ctx, req.ArtistID, req.StartTime, req.EndTime, 0); err != nil {
		return nil, err
	}

	b := &domain.Booking{
		StudioID:        req.StudioID,
		ArtistID:        req.ArtistID,
		ClientID:        req.ClientID,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		ServiceCategory: req.ServiceCategory,
		PriceCents:      req.PriceCents,
		DepositCents:    req.DepositCents,
		Status:          domain.BookingPending,
		Notes:           req.Notes,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.NotifyBookingCreated(ctx, b)
	}
	return b, nil
}

// Confirm charges the deposit and flips PENDING to CONFIRMED. The slot
// is re-checked authoritatively under the artist lock; losing the race
// returns ErrSlotNoLongerAvailable and the booking stays PENDING so
// the client can reschedule. A gateway failure or timeout likewise
// leaves the booking PENDING.
func (s *Service) Confirm(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, ErrNotFound
	}
	if b.Status != domain.BookingPending {
		return nil, ErrInvalidTransition
	}

	err = s.resolver.WithArtistLock(b.ArtistID, func() error {
		if rerr := s.resolver.Reserve(ctx, b.ArtistID, b.StartTime, b.EndTime, b.ID); rerr != nil {
			if rerr == ErrAlreadyBooked {
				return ErrSlotNoLongerAvailable
			}
			return rerr
		}

		payCtx, cancel := context.WithTimeout(ctx, s.paymentTimeout)
		defer cancel()

		reference := uuid.New().String()
		paymentRef, perr := s.gateway.ChargeDeposit(payCtx, b.DepositCents, reference)
		if perr != nil {
			s.loggerf("level=error msg=deposit charge failed booking_id=%d err=%v", b.ID, perr)
			return ErrPaymentFailed
		}

		if cerr := s.bookings.ConfirmIfFree(ctx, b.ID, paymentRef); cerr != nil {
			// The charge succeeded but CONFIRMED did not commit; the
			// booking never left PENDING, so the money goes back on
			// every failure, not only a lost race. The refund runs on
			// a detached context because the caller may already be
			// gone.
			refundCtx, rcancel := context.WithTimeout(context.Background(), s.paymentTimeout)
			if _, rerr := s.gateway.Refund(refundCtx, paymentRef, b.DepositCents); rerr != nil {
				s.loggerf("level=error msg=compensating refund failed booking_id=%d payment_ref=%s err=%v", b.ID, paymentRef, rerr)
			}
			rcancel()
			if isSlotTaken(cerr) {
				return ErrSlotNoLongerAvailable
			}
			return cerr
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	confirmed, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if s.notifs != nil {
		_ = s.notifs.NotifyBookingConfirmed(ctx, confirmed)
	}
	return confirmed, nil
}

// Cancel moves a PENDING or CONFIRMED booking to CANCELLED. A PENDING
// cancel takes no money path. A CONFIRMED cancel computes the refund
// from the studio's policy, or from a staff override bounded by the
// deposit. The status change commits first; a refund the gateway could
// not settle is recorded as owed and retried through SettleRefund.
func (s *Service) Cancel(ctx context.Context, bookingID, actorID int64, actorRole domain.Role, req CancelBookingRequest) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, ErrNotFound
	}
	if err := s.checkCancelPermission(b, actorID, actorRole); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	switch b.Status {
	case domain.BookingPending:
		if err := s.bookings.CancelWithReason(ctx, b.ID, req.Reason, now); err != nil {
			return nil, err
		}
		cancelled, err := s.bookings.GetByID(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		if s.notifs != nil {
			_ = s.notifs.NotifyBookingCancelled(ctx, cancelled, 0)
		}
		return cancelled, nil

	case domain.BookingConfirmed:
		refund, err := s.refundAmount(ctx, b, actorRole, req.OverrideRefundCents, now)
		if err != nil {
			return nil, err
		}

		if err := s.bookings.CancelWithReason(ctx, b.ID, req.Reason, now); err != nil {
			return nil, err
		}

		settled := int64(0)
		if refund > 0 && b.PaymentRef != "" {
			payCtx, cancel := context.WithTimeout(ctx, s.paymentTimeout)
			refundRef, rerr := s.gateway.Refund(payCtx, b.PaymentRef, refund)
			cancel()
			if rerr != nil {
				// The owed amount is recorded with an empty refund ref;
				// SettleRefund retries the gateway call later.
				s.loggerf("level=error msg=refund failed, recorded for settlement booking_id=%d amount_cents=%d err=%v", b.ID, refund, rerr)
				if serr := s.bookings.SetRefund(ctx, b.ID, refund, "", req.Reason, now, actorID); serr != nil {
					return nil, serr
				}
			} else {
				if err := s.bookings.SetRefund(ctx, b.ID, refund, refundRef, req.Reason, time.Now().UTC(), actorID); err != nil {
					return nil, err
				}
				settled = refund
			}
		}

		cancelled, err := s.bookings.GetByID(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		if s.notifs != nil {
			// The payload only claims a refund that actually settled.
			_ = s.notifs.NotifyBookingCancelled(ctx, cancelled, settled)
		}
		return cancelled, nil

	default:
		return nil, ErrInvalidTransition
	}
}

func (s *Service) refundAmount(ctx context.Context, b *domain.Booking, actorRole domain.Role, override *int64, now time.Time) (int64, error) {
	if override != nil {
		if actorRole != domain.RoleStudioOwner {
			return 0, ErrForbidden
		}
		if *override < 0 || *override > b.DepositCents {
			return 0, ErrInvalidRefundAmount
		}
		return *override, nil
	}

	policy := s.defaults
	if studio, err := s.studios.GetByID(ctx, b.StudioID); err == nil {
		policy = s.policyFor(studio)
	}
	return policy.RefundFor(now, b.StartTime, b.DepositCents), nil
}

func (s *Service) policyFor(studio *domain.Studio) domain.RefundPolicy {
	p := s.defaults
	if studio == nil {
		return p
	}
	if studio.FullRefundLeadHours > 0 {
		p.FullRefundLead = time.Duration(studio.FullRefundLeadHours) * time.Hour
	}
	if studio.PartialRefundLeadHours > 0 {
		p.PartialRefundLead = time.Duration(studio.PartialRefundLeadHours) * time.Hour
	}
	if studio.PartialRefundBP > 0 {
		p.PartialBP = studio.PartialRefundBP
	}
	return p
}

// Complete finishes a CONFIRMED appointment and computes the studio's
// commission exactly once. Staff may complete early; otherwise the
// appointment end must have passed. The commission is computed before
// the status flips: a calculator failure leaves the booking CONFIRMED
// and the call retryable, and Calculate itself is idempotent.
func (s *Service) Complete(ctx context.Context, bookingID int64, actorRole domain.Role) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, ErrNotFound
	}
	if b.Status != domain.BookingConfirmed {
		return nil, ErrInvalidTransition
	}
	staff := actorRole == domain.RoleStudioOwner || actorRole == domain.RoleArtist
	if !staff && time.Now().Before(b.EndTime) {
		return nil, ErrNotElapsed
	}

	earned, err := s.commissions.Calculate(ctx, b)
	if err != nil {
		return nil, err
	}
	if err := s.bookings.UpdateStatus(ctx, b.ID, domain.BookingCompleted); err != nil {
		return nil, err
	}
	if err := s.bookings.SetCommissionID(ctx, b.ID, earned.ID); err != nil {
		return nil, err
	}

	completed, err := s.bookings.GetByID(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if s.notifs != nil {
		_ = s.notifs.NotifyCommissionEarned(ctx, completed, earned.AmountCents)
	}
	return completed, nil
}

// SettleRefund retries a refund the gateway failed at cancellation
// time. A cancelled booking owes its client money while refund_cents
// is recorded without a refund reference; success appends the
// reference and notifies the client.
func (s *Service) SettleRefund(ctx context.Context, bookingID, actorID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, ErrNotFound
	}
	if b.Status != domain.BookingCancelled {
		return nil, ErrInvalidTransition
	}
	if b.RefundCents == nil || *b.RefundCents <= 0 || b.RefundRef != "" || b.PaymentRef == "" {
		return nil, ErrNoRefundDue
	}

	payCtx, cancel := context.WithTimeout(ctx, s.paymentTimeout)
	refundRef, rerr := s.gateway.Refund(payCtx, b.PaymentRef, *b.RefundCents)
	cancel()
	if rerr != nil {
		s.loggerf("level=error msg=refund settlement failed booking_id=%d amount_cents=%d err=%v", b.ID, *b.RefundCents, rerr)
		return nil, ErrPaymentFailed
	}
	if err := s.bookings.SetRefund(ctx, b.ID, *b.RefundCents, refundRef, b.RefundReason, time.Now().UTC(), actorID); err != nil {
		return nil, err
	}

	settled, err := s.bookings.GetByID(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if s.notifs != nil {
		_ = s.notifs.NotifyBookingCancelled(ctx, settled, *b.RefundCents)
	}
	return settled, nil
}

// MarkNoShow records that the client did not appear. The deposit is
// kept; the client's no-show count is derived from the records.
func (s *Service) MarkNoShow(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, ErrNotFound
	}
	if b.Status != domain.BookingConfirmed {
		return nil, ErrInvalidTransition
	}
	if time.Now().Before(b.StartTime) {
		return nil, ErrNotElapsed
	}

	if err := s.bookings.MarkNoShow(ctx, b.ID, time.Now().UTC()); err != nil {
		return nil, err
	}
	marked, err := s.bookings.GetByID(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if s.notifs != nil {
		_ = s.notifs.NotifyNoShow(ctx, marked)
	}
	return marked, nil
}

// Reschedule mutates the window in place, keeping status and deposit.
// Terminal bookings cannot move.
func (s *Service) Reschedule(ctx context.Context, bookingID int64, req RescheduleRequest) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, ErrNotFound
	}
	if b.Status != domain.BookingPending && b.Status != domain.BookingConfirmed {
		return nil, ErrInvalidTransition
	}
	if !req.EndTime.After(req.StartTime) || req.StartTime.Before(time.Now()) {
		return nil, ErrValidation
	}

	err = s.resolver.WithArtistLock(b.ArtistID, func() error {
		if rerr := s.resolver.Reserve(ctx, b.ArtistID, req.StartTime, req.EndTime, b.ID); rerr != nil {
			return rerr
		}
		return s.bookings.UpdateWindow(ctx, b.ID, req.StartTime, req.EndTime)
	})
	if err != nil {
		return nil, err
	}
	return s.bookings.GetByID(ctx, b.ID)
}

func (s *Service) GetByID(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, bookingID)
}

func (s *Service) ListMyBookings(ctx context.Context, clientID int64, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.ListByClient(ctx, clientID, limit, offset)
}

func (s *Service) ListStudioBookings(ctx context.Context, studioID int64, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.ListByStudio(ctx, studioID, limit, offset)
}

// NoShowHistory is an advisory signal only; blocking thresholds are
// the caller's policy, never this engine's.
func (s *Service) NoShowHistory(ctx context.Context, clientID int64) (*NoShowHistoryResponse, error) {
	count, err := s.bookings.CountNoShows(ctx, clientID)
	if err != nil {
		return nil, err
	}
	dates, err := s.bookings.NoShowDates(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return &NoShowHistoryResponse{ClientID: clientID, Count: count, Dates: dates}, nil
}

// DispatchReminders builds reminder payloads for CONFIRMED bookings
// starting within the reminder lead. An external scheduler calls this;
// delivery stays outside.
func (s *Service) DispatchReminders(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	due, err := s.bookings.DueReminders(ctx, now, now.Add(s.reminderLead))
	if err != nil {
		return 0, err
	}
	sent := 0
	for i := range due {
		if s.notifs != nil {
			if err := s.notifs.NotifyReminder(ctx, &due[i]); err != nil {
				s.loggerf("level=error msg=reminder payload failed booking_id=%d err=%v", due[i].ID, err)
				continue
			}
		}
		sent++
	}
	return sent, nil
}

func (s *Service) checkCancelPermission(b *domain.Booking, actorID int64, actorRole domain.Role) error {
	switch actorRole {
	case domain.RoleClient:
		if b.ClientID != actorID {
			return ErrForbidden
		}
	case domain.RoleArtist, domain.RoleStudioOwner:
		// Studio staff may cancel any booking of their studio; the
		// handler scopes the lookup, ownership was checked upstream.
	default:
		return ErrForbidden
	}
	return nil
}
