package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"inkbook/internal/domain"
	"inkbook/internal/modules/availability"
	"inkbook/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	if b != nil {
		b.ID = 501
	}
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) HasBlockingOverlap(ctx context.Context, artistID int64, start, end time.Time, excludeID int64) (bool, error) {
	args := m.Called(ctx, artistID, start, end, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) ConfirmIfFree(ctx context.Context, bookingID int64, paymentRef string) error {
	args := m.Called(ctx, bookingID, paymentRef)
	return args.Error(0)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, bookingID int64, status domain.BookingStatus) error {
	args := m.Called(ctx, bookingID, status)
	return args.Error(0)
}

func (m *MockBookingRepository) UpdateWindow(ctx context.Context, bookingID int64, start, end time.Time) error {
	args := m.Called(ctx, bookingID, start, end)
	return args.Error(0)
}

func (m *MockBookingRepository) CancelWithReason(ctx context.Context, bookingID int64, reason string, at time.Time) error {
	args := m.Called(ctx, bookingID, reason, at)
	return args.Error(0)
}

func (m *MockBookingRepository) SetRefund(ctx context.Context, bookingID, cents int64, ref, reason string, at time.Time, by int64) error {
	args := m.Called(ctx, bookingID, cents, ref, reason, at, by)
	return args.Error(0)
}

func (m *MockBookingRepository) MarkNoShow(ctx context.Context, bookingID int64, at time.Time) error {
	args := m.Called(ctx, bookingID, at)
	return args.Error(0)
}

func (m *MockBookingRepository) SetCommissionID(ctx context.Context, bookingID, commissionID int64) error {
	args := m.Called(ctx, bookingID, commissionID)
	return args.Error(0)
}

func (m *MockBookingRepository) ListByClient(ctx context.Context, clientID int64, limit, offset int) ([]domain.Booking, error) {
	args := m.Called(ctx, clientID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByStudio(ctx context.Context, studioID int64, limit, offset int) ([]domain.Booking, error) {
	args := m.Called(ctx, studioID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) CountNoShows(ctx context.Context, clientID int64) (int64, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) NoShowDates(ctx context.Context, clientID int64) ([]time.Time, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *MockBookingRepository) DueReminders(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockAvailabilityChecker struct {
	mock.Mock
}

func (m *MockAvailabilityChecker) CheckWindow(ctx context.Context, artistID int64, start, end time.Time) error {
	args := m.Called(ctx, artistID, start, end)
	return args.Error(0)
}

type MockStudioReader struct {
	mock.Mock
}

func (m *MockStudioReader) GetByID(ctx context.Context, id int64) (*domain.Studio, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Studio), args.Error(1)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) ChargeDeposit(ctx context.Context, amountCents int64, reference string) (string, error) {
	args := m.Called(ctx, amountCents, reference)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentGateway) Refund(ctx context.Context, paymentRef string, amountCents int64) (string, error) {
	args := m.Called(ctx, paymentRef, amountCents)
	return args.String(0), args.Error(1)
}

type MockCommissionCalculator struct {
	mock.Mock
}

func (m *MockCommissionCalculator) Calculate(ctx context.Context, b *domain.Booking) (*domain.EarnedCommission, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EarnedCommission), args.Error(1)
}

type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) NotifyBookingCreated(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockNotificationSender) NotifyBookingConfirmed(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockNotificationSender) NotifyBookingCancelled(ctx context.Context, b *domain.Booking, refundCents int64) error {
	return m.Called(ctx, b, refundCents).Error(0)
}

func (m *MockNotificationSender) NotifyNoShow(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockNotificationSender) NotifyCommissionEarned(ctx context.Context, b *domain.Booking, amountCents int64) error {
	return m.Called(ctx, b, amountCents).Error(0)
}

func (m *MockNotificationSender) NotifyReminder(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}

type fixture struct {
	repo    *MockBookingRepository
	avail   *MockAvailabilityChecker
	studios *MockStudioReader
	gateway *MockPaymentGateway
	comms   *MockCommissionCalculator
	notifs  *MockNotificationSender
	service *Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:    new(MockBookingRepository),
		avail:   new(MockAvailabilityChecker),
		studios: new(MockStudioReader),
		gateway: new(MockPaymentGateway),
		comms:   new(MockCommissionCalculator),
		notifs:  new(MockNotificationSender),
	}
	defaults := domain.RefundPolicy{
		FullRefundLead:    168 * time.Hour,
		PartialRefundLead: 48 * time.Hour,
		PartialBP:         5000,
	}
	resolver := NewResolver(f.avail, f.repo)
	f.service = NewService(f.repo, f.studios, resolver, f.gateway, f.comms, f.notifs, defaults, 24*time.Hour, 5*time.Second, nil)
	return f
}

func futureWindow(offset time.Duration) (time.Time, time.Time) {
	start := time.Now().Add(offset).Truncate(time.Minute)
	return start, start.Add(2 * time.Hour)
}

func pendingBooking(offset time.Duration) *domain.Booking {
	start, end := futureWindow(offset)
	return &domain.Booking{
		ID: 501, StudioID: 10, ArtistID: 7, ClientID: 3,
		StartTime: start, EndTime: end,
		PriceCents: 20000, DepositCents: 5000,
		Status: domain.BookingPending,
	}
}

func confirmedBooking(offset time.Duration) *domain.Booking {
	b := pendingBooking(offset)
	b.Status = domain.BookingConfirmed
	b.PaymentRef = "pay_abc"
	return b
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture()
	start, end := futureWindow(72 * time.Hour)

	_, err := f.service.Create(context.Background(), CreateBookingRequest{
		StudioID: 10, ArtistID: 7, ClientID: 3, StartTime: end, EndTime: start, PriceCents: 100,
	})
	assert.ErrorIs(t, err, ErrValidation, "end before start")

	_, err = f.service.Create(context.Background(), CreateBookingRequest{
		StudioID: 10, ArtistID: 7, ClientID: 3,
		StartTime: time.Now().Add(-time.Hour), EndTime: time.Now().Add(time.Hour), PriceCents: 100,
	})
	assert.ErrorIs(t, err, ErrValidation, "start in the past")

	_, err = f.service.Create(context.Background(), CreateBookingRequest{
		StudioID: 10, ArtistID: 7, ClientID: 3, StartTime: start, EndTime: end,
		PriceCents: 100, DepositCents: 200,
	})
	assert.ErrorIs(t, err, ErrValidation, "deposit above price")
}

func TestCreate_PendingHoldsDoNotBlockEachOther(t *testing.T) {
	f := newFixture()
	start, end := futureWindow(72 * time.Hour)

	f.avail.On("CheckWindow", mock.Anything, int64(7), start, end).Return(nil)
	// Only CONFIRMED/COMPLETED rows block; an existing PENDING hold does not.
	f.repo.On("HasBlockingOverlap", mock.Anything, int64(7), start, end, int64(0)).Return(false, nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.notifs.On("NotifyBookingCreated", mock.Anything, mock.Anything).Return(nil)

	req := CreateBookingRequest{
		StudioID: 10, ArtistID: 7, ClientID: 3,
		StartTime: start, EndTime: end, PriceCents: 20000, DepositCents: 5000,
	}
	first, err := f.service.Create(context.Background(), req)
	assert.NoError(t, err)
	assert.Equal(t, domain.BookingPending, first.Status)

	req.ClientID = 4
	second, err := f.service.Create(context.Background(), req)
	assert.NoError(t, err)
	assert.Equal(t, domain.BookingPending, second.Status)
}

func TestCreate_OutsideHours(t *testing.T) {
	f := newFixture()
	start, end := futureWindow(72 * time.Hour)

	f.avail.On("CheckWindow", mock.Anything, int64(7), start, end).Return(availability.ErrOutsideHours)

	_, err := f.service.Create(context.Background(), CreateBookingRequest{
		StudioID: 10, ArtistID: 7, ClientID: 3,
		StartTime: start, EndTime: end, PriceCents: 20000,
	})
	assert.ErrorIs(t, err, ErrOutsideHours)
	f.repo.AssertNotCalled(t, "Create")
}

func TestConfirm_Success(t *testing.T) {
	f := newFixture()
	b := pendingBooking(72 * time.Hour)

	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)
	f.avail.On("CheckWindow", mock.Anything, int64(7), b.StartTime, b.EndTime).Return(nil)
	f.repo.On("HasBlockingOverlap", mock.Anything, int64(7), b.StartTime, b.EndTime, int64(501)).Return(false, nil)
	f.gateway.On("ChargeDeposit", mock.Anything, int64(5000), mock.Anything).Return("pay_abc", nil)
	f.repo.On("ConfirmIfFree", mock.Anything, int64(501), "pay_abc").Return(nil)
	f.notifs.On("NotifyBookingConfirmed", mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.Confirm(context.Background(), 501)

	assert.NoError(t, err)
	f.repo.AssertCalled(t, "ConfirmIfFree", mock.Anything, int64(501), "pay_abc")
	f.gateway.AssertNotCalled(t, "Refund")
}

func TestConfirm_PaymentFailureStaysPending(t *testing.T) {
	f := newFixture()
	b := pendingBooking(72 * time.Hour)

	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)
	f.avail.On("CheckWindow", mock.Anything, int64(7), b.StartTime, b.EndTime).Return(nil)
	f.repo.On("HasBlockingOverlap", mock.Anything, int64(7), b.StartTime, b.EndTime, int64(501)).Return(false, nil)
	f.gateway.On("ChargeDeposit", mock.Anything, int64(5000), mock.Anything).Return("", errors.New("card declined"))

	_, err := f.service.Confirm(context.Background(), 501)

	assert.ErrorIs(t, err, ErrPaymentFailed)
	f.repo.AssertNotCalled(t, "ConfirmIfFree")
	f.notifs.AssertNotCalled(t, "NotifyBookingConfirmed")
}

func TestConfirm_RaceLostRefundsCharge(t *testing.T) {
	f := newFixture()
	b := pendingBooking(72 * time.Hour)

	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)
	f.avail.On("CheckWindow", mock.Anything, int64(7), b.StartTime, b.EndTime).Return(nil)
	f.repo.On("HasBlockingOverlap", mock.Anything, int64(7), b.StartTime, b.EndTime, int64(501)).Return(false, nil)
	f.gateway.On("ChargeDeposit", mock.Anything, int64(5000), mock.Anything).Return("pay_abc", nil)
	f.repo.On("ConfirmIfFree", mock.Anything, int64(501), "pay_abc").Return(repository.ErrSlotTaken)
	f.gateway.On("Refund", mock.Anything, "pay_abc", int64(5000)).Return("ref_xyz", nil)

	_, err := f.service.Confirm(context.Background(), 501)

	assert.ErrorIs(t, err, ErrSlotNoLongerAvailable)
	f.gateway.AssertCalled(t, "Refund", mock.Anything, "pay_abc", int64(5000))
}

func TestConfirm_StorageFailureRefundsCharge(t *testing.T) {
	f := newFixture()
	b := pendingBooking(72 * time.Hour)
	dbErr := errors.New("driver: bad connection")

	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)
	f.avail.On("CheckWindow", mock.Anything, int64(7), b.StartTime, b.EndTime).Return(nil)
	f.repo.On("HasBlockingOverlap", mock.Anything, int64(7), b.StartTime, b.EndTime, int64(501)).Return(false, nil)
	f.gateway.On("ChargeDeposit", mock.Anything, int64(5000), mock.Anything).Return("pay_orphan", nil)
	f.repo.On("ConfirmIfFree", mock.Anything, int64(501), "pay_orphan").Return(dbErr)
	f.gateway.On("Refund", mock.Anything, "pay_orphan", int64(5000)).Return("ref_comp", nil)

	_, err := f.service.Confirm(context.Background(), 501)

	// Any failure of the status flip compensates the charge, not only
	// a lost slot race.
	assert.ErrorIs(t, err, dbErr)
	f.gateway.AssertCalled(t, "Refund", mock.Anything, "pay_orphan", int64(5000))
	f.notifs.AssertNotCalled(t, "NotifyBookingConfirmed")
}

func TestConfirm_RejectsNonPending(t *testing.T) {
	f := newFixture()
	for _, status := range []domain.BookingStatus{
		domain.BookingConfirmed, domain.BookingCompleted, domain.BookingCancelled, domain.BookingNoShow,
	} {
		b := pendingBooking(72 * time.Hour)
		b.Status = status
		f.repo.ExpectedCalls = nil
		f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)

		_, err := f.service.Confirm(context.Background(), 501)
		assert.ErrorIs(t, err, ErrInvalidTransition, string(status))
	}
}

func TestCancel_ConfirmedFullRefund(t *testing.T) {
	f := newFixture()
	b := confirmedBooking(200 * time.Hour) // well past the 168h full-refund lead

	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)
	f.studios.On("GetByID", mock.Anything, int64(10)).Return(&domain.Studio{ID: 10, OwnerID: 9}, nil)
	f.repo.On("CancelWithReason", mock.Anything, int64(501), "changed plans", mock.Anything).Return(nil)
	f.gateway.On("Refund", mock.Anything, "pay_abc", int64(5000)).Return("ref_xyz", nil)
	f.repo.On("SetRefund", mock.Anything, int64(501), int64(5000), "ref_xyz", "changed plans", mock.Anything, int64(3)).Return(nil)
	f.notifs.On("NotifyBookingCancelled", mock.Anything, mock.Anything, int64(5000)).Return(nil)

	_, err := f.service.Cancel(context.Background(), 501, 3, domain.RoleClient, CancelBookingRequest{Reason: "changed plans"})

	assert.NoError(t, err)
	f.gateway.AssertCalled(t, "Refund", mock.Anything, "pay_abc", int64(5000))
}

func TestCancel_ConfirmedPartialRefund(t *testing.T) {
	f := newFixture()
	b := confirmedBooking(72 * time.Hour) // inside 168h, past 48h: 50% of the deposit

	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)
	f.studios.On("GetByID", mock.Anything, int64(10)).Return(&domain.Studio{ID: 10, OwnerID: 9}, nil)
	f.repo.On("CancelWithReason", mock.Anything, int64(501), "reschedule later", mock.Anything).Return(nil)
	f.gateway.On("Refund", mock.Anything, "pay_abc", int64(2500)).Return("ref_xyz", nil)
	f.repo.On("SetRefund", mock.Anything, int64(501), int64(2500), "ref_xyz", "reschedule later", mock.Anything, int64(3)).Return(nil)
	f.notifs.On("NotifyBookingCancelled", mock.Anything, mock.Anything, int64(2500)).Return(nil)

	_, err := f.service.Cancel(context.Background(), 501, 3, domain.RoleClient, CancelBookingRequest{Reason: "reschedule later"})

	assert.NoError(t, err)
	f.gateway.AssertCalled(t, "Refund", mock.Anything, "pay_abc", int64(2500))
}

func TestCancel_ConfirmedLateNoRefund(t *testing.T) {
	f := newFixture()
	b := confirmedBooking(12 * time.Hour) // inside the 48h partial lead

	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)
	f.studios.On("GetByID", mock.Anything, int64(10)).Return(&domain.Studio{ID: 10, OwnerID: 9}, nil)
	f.repo.On("CancelWithReason", mock.Anything, int64(501), "sick", mock.Anything).Return(nil)
	f.notifs.On("NotifyBookingCancelled", mock.Anything, mock.Anything, int64(0)).Return(nil)

	_, err := f.service.Cancel(context.Background(), 501, 3, domain.RoleClient, CancelBookingRequest{Reason: "sick"})

	assert.NoError(t, err)
	f.gateway.AssertNotCalled(t, "Refund")
	f.repo.AssertNotCalled(t, "SetRefund")
}

func TestCancel_RefundFailureRecordsOwedAmount(t *testing.T) {
	f := newFixture()
	b := confirmedBooking(200 * time.Hour)

	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)
	f.studios.On("GetByID", mock.Anything, int64(10)).Return(&domain.Studio{ID: 10, OwnerID: 9}, nil)
	f.repo.On("CancelWithReason", mock.Anything, int64(501), "changed plans", mock.Anything).Return(nil)
	f.gateway.On("Refund", mock.Anything, "pay_abc", int64(5000)).Return("", errors.New("gateway 503"))
	f.repo.On("SetRefund", mock.Anything, int64(501), int64(5000), "", "changed plans", mock.Anything, int64(3)).Return(nil)
	f.notifs.On("NotifyBookingCancelled", mock.Anything, mock.Anything, int64(0)).Return(nil)

	_, err := f.service.Cancel(context.Background(), 501, 3, domain.RoleClient, CancelBookingRequest{Reason: "changed plans"})

	assert.NoError(t, err)
	// The owed amount lands on the row with an empty refund ref, and
	// the client is not told a refund settled.
	f.repo.AssertCalled(t, "SetRefund", mock.Anything, int64(501), int64(5000), "", "changed plans", mock.Anything, int64(3))
	f.notifs.AssertCalled(t, "NotifyBookingCancelled", mock.Anything, mock.Anything, int64(0))
}

func TestCancel_NotificationCarriesCancelledState(t *testing.T) {
	f := newFixture()
	b := pendingBooking(72 * time.Hour)
	cancelled := *b
	cancelled.Status = domain.BookingCancelled

	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil).Once()
	f.repo.On("GetByID", mock.Anything, int64(501)).Return(&cancelled, nil)
	f.repo.On("CancelWithReason", mock.Anything, int64(501), "never mind", mock.Anything).Return(nil)
	f.notifs.On("NotifyBookingCancelled", mock.Anything, mock.Anything, int64(0)).Return(nil)

	_, err := f.service.Cancel(context.Background(), 501, 3, domain.RoleClient, CancelBookingRequest{Reason: "never mind"})

	assert.NoError(t, err)
	f.notifs.AssertCalled(t, "NotifyBookingCancelled", mock.Anything, mock.MatchedBy(func(x *domain.Booking) bool {
		return x.Status == domain.BookingCancelled
	}), int64(0))
}

func TestSettleRefund_RetriesFailedRefund(t *testing.T) {
	f := newFixture()
	owed := int64(5000)
	b := confirmedBooking(200 * time.Hour)
	b.Status = domain.BookingCancelled
	b.RefundCents = &owed
	b.RefundReason = "changed plans"

	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)
	f.gateway.On("Refund", mock.Anything, "pay_abc", int64(5000)).Return("ref_late", nil)
	f.repo.On("SetRefund", mock.Anything, int64(501), int64(5000), "ref_late", "changed plans", mock.Anything, int64(9)).Return(nil)
	f.notifs.On("NotifyBookingCancelled", mock.Anything, mock.Anything, int64(5000)).Return(nil)

	_, err := f.service.SettleRefund(context.Background(), 501, 9)

	assert.NoError(t, err)
	f.repo.AssertCalled(t, "SetRefund", mock.Anything, int64(501), int64(5000), "ref_late", "changed plans", mock.Anything, int64(9))
}

func TestSettleRefund_NothingOwed(t *testing.T) {
	f := newFixture()
	owed := int64(5000)

	settled := confirmedBooking(200 * time.Hour)
	settled.Status = domain.BookingCancelled
	settled.RefundCents = &owed
	settled.RefundRef = "ref_xyz"
	f.repo.On("GetByID", mock.Anything, int64(501)).Return(settled, nil)

	_, err := f.service.SettleRefund(context.Background(), 501, 9)
	assert.ErrorIs(t, err, ErrNoRefundDue)

	noRecord := confirmedBooking(200 * time.Hour)
	noRecord.Status = domain.BookingCancelled
	f.repo.ExpectedCalls = nil
	f.repo.On("GetByID", mock.Anything, int64(501)).Return(noRecord, nil)

	_, err = f.service.SettleRefund(context.Background(), 501, 9)
	assert.ErrorIs(t, err, ErrNoRefundDue)

	stillConfirmed := confirmedBooking(200 * time.Hour)
	f.repo.ExpectedCalls = nil
	f.repo.On("GetByID", mock.Anything, int64(501)).Return(stillConfirmed, nil)

	_, err = f.service.SettleRefund(context.Background(), 501, 9)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	f.gateway.AssertNotCalled(t, "Refund")
}

func TestCancel_StaffOverride(t *testing.T) {
	f := newFixture()
	b := confirmedBooking(12 * time.Hour)
	override := int64(4000)

	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)
	f.repo.On("CancelWithReason", mock.Anything, int64(501), "goodwill", mock.Anything).Return(nil)
	f.gateway.On("Refund", mock.Anything, "pay_abc", int64(4000)).Return("ref_xyz", nil)
	f.repo.On("SetRefund", mock.Anything, int64(501), int64(4000), "ref_xyz", "goodwill", mock.Anything, int64(9)).Return(nil)
	f.notifs.On("NotifyBookingCancelled", mock.Anything, mock.Anything, int64(4000)).Return(nil)

	_, err := f.service.Cancel(context.Background(), 501, 9, domain.RoleStudioOwner, CancelBookingRequest{Reason: "goodwill", OverrideRefundCents: &override})

	assert.NoError(t, err)
	f.studios.AssertNotCalled(t, "GetByID")
}

func TestCancel_OverrideBounds(t *testing.T) {
	f := newFixture()
	b := confirmedBooking(12 * time.Hour)
	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)

	tooMuch := int64(6000)
	_, err := f.service.Cancel(context.Background(), 501, 9, domain.RoleStudioOwner, CancelBookingRequest{Reason: "x", OverrideRefundCents: &tooMuch})
	assert.ErrorIs(t, err, ErrInvalidRefundAmount)

	negative := int64(-1)
	_, err = f.service.Cancel(context.Background(), 501, 9, domain.RoleStudioOwner, CancelBookingRequest{Reason: "x", OverrideRefundCents: &negative})
	assert.ErrorIs(t, err, ErrInvalidRefundAmount)

	some := int64(1000)
	_, err = f.service.Cancel(context.Background(), 501, 3, domain.RoleClient, CancelBookingRequest{Reason: "x", OverrideRefundCents: &some})
	assert.ErrorIs(t, err, ErrForbidden, "override is staff only")
}

func TestCancel_PendingTakesNoMoneyPath(t *testing.T) {
	f := newFixture()
	b := pendingBooking(72 * time.Hour)

	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)
	f.repo.On("CancelWithReason", mock.Anything, int64(501), "never mind", mock.Anything).Return(nil)
	f.notifs.On("NotifyBookingCancelled", mock.Anything, mock.Anything, int64(0)).Return(nil)

	_, err := f.service.Cancel(context.Background(), 501, 3, domain.RoleClient, CancelBookingRequest{Reason: "never mind"})

	assert.NoError(t, err)
	f.gateway.AssertNotCalled(t, "Refund")
	f.studios.AssertNotCalled(t, "GetByID")
}

func TestCancel_ClientCannotCancelOthers(t *testing.T) {
	f := newFixture()
	b := pendingBooking(72 * time.Hour)
	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)

	_, err := f.service.Cancel(context.Background(), 501, 99, domain.RoleClient, CancelBookingRequest{Reason: "x"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCancel_TerminalRejected(t *testing.T) {
	f := newFixture()
	for _, status := range []domain.BookingStatus{
		domain.BookingCompleted, domain.BookingCancelled, domain.BookingNoShow,
	} {
		b := pendingBooking(72 * time.Hour)
		b.Status = status
		f.repo.ExpectedCalls = nil
		f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)

		_, err := f.service.Cancel(context.Background(), 501, 3, domain.RoleClient, CancelBookingRequest{Reason: "x"})
		assert.ErrorIs(t, err, ErrInvalidTransition, string(status))
	}
}

func TestComplete_CalculatesCommissionOnce(t *testing.T) {
	f := newFixture()
	b := confirmedBooking(72 * time.Hour)
	b.StartTime = time.Now().Add(-3 * time.Hour)
	b.EndTime = time.Now().Add(-time.Hour)

	earned := &domain.EarnedCommission{ID: 88, BookingID: 501, StudioID: 10, AmountCents: 3000}
	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)
	f.repo.On("UpdateStatus", mock.Anything, int64(501), domain.BookingCompleted).Return(nil)
	f.comms.On("Calculate", mock.Anything, mock.Anything).Return(earned, nil)
	f.repo.On("SetCommissionID", mock.Anything, int64(501), int64(88)).Return(nil)
	f.notifs.On("NotifyCommissionEarned", mock.Anything, mock.Anything, int64(3000)).Return(nil)

	_, err := f.service.Complete(context.Background(), 501, domain.RoleClient)

	assert.NoError(t, err)
	f.repo.AssertCalled(t, "SetCommissionID", mock.Anything, int64(501), int64(88))
}

func TestComplete_CalculatorFailureKeepsConfirmedAndRetries(t *testing.T) {
	f := newFixture()
	b := confirmedBooking(72 * time.Hour)
	b.StartTime = time.Now().Add(-3 * time.Hour)
	b.EndTime = time.Now().Add(-time.Hour)

	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)
	f.comms.On("Calculate", mock.Anything, mock.Anything).Return(nil, errors.New("commission store down"))

	_, err := f.service.Complete(context.Background(), 501, domain.RoleClient)

	// The status never flips, so the commission stays computable.
	assert.Error(t, err)
	f.repo.AssertNotCalled(t, "UpdateStatus")
	f.repo.AssertNotCalled(t, "SetCommissionID")

	earned := &domain.EarnedCommission{ID: 88, BookingID: 501, StudioID: 10, AmountCents: 3000}
	f.comms.ExpectedCalls = nil
	f.comms.On("Calculate", mock.Anything, mock.Anything).Return(earned, nil)
	f.repo.On("UpdateStatus", mock.Anything, int64(501), domain.BookingCompleted).Return(nil)
	f.repo.On("SetCommissionID", mock.Anything, int64(501), int64(88)).Return(nil)
	f.notifs.On("NotifyCommissionEarned", mock.Anything, mock.Anything, int64(3000)).Return(nil)

	_, err = f.service.Complete(context.Background(), 501, domain.RoleClient)
	assert.NoError(t, err)
	f.repo.AssertCalled(t, "SetCommissionID", mock.Anything, int64(501), int64(88))
}

func TestComplete_NotElapsedForNonStaff(t *testing.T) {
	f := newFixture()
	b := confirmedBooking(72 * time.Hour)
	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)

	_, err := f.service.Complete(context.Background(), 501, domain.RoleClient)
	assert.ErrorIs(t, err, ErrNotElapsed)
	f.repo.AssertNotCalled(t, "UpdateStatus")
}

func TestComplete_StaffMayCompleteEarly(t *testing.T) {
	f := newFixture()
	b := confirmedBooking(72 * time.Hour)
	earned := &domain.EarnedCommission{ID: 88, BookingID: 501, StudioID: 10, AmountCents: 3000}

	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)
	f.repo.On("UpdateStatus", mock.Anything, int64(501), domain.BookingCompleted).Return(nil)
	f.comms.On("Calculate", mock.Anything, mock.Anything).Return(earned, nil)
	f.repo.On("SetCommissionID", mock.Anything, int64(501), int64(88)).Return(nil)
	f.notifs.On("NotifyCommissionEarned", mock.Anything, mock.Anything, int64(3000)).Return(nil)

	_, err := f.service.Complete(context.Background(), 501, domain.RoleArtist)
	assert.NoError(t, err)
}

func TestComplete_RejectsNonConfirmed(t *testing.T) {
	f := newFixture()
	b := pendingBooking(72 * time.Hour)
	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)

	_, err := f.service.Complete(context.Background(), 501, domain.RoleStudioOwner)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMarkNoShow(t *testing.T) {
	f := newFixture()
	b := confirmedBooking(72 * time.Hour)
	b.StartTime = time.Now().Add(-2 * time.Hour)
	b.EndTime = time.Now().Add(-time.Hour)

	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)
	f.repo.On("MarkNoShow", mock.Anything, int64(501), mock.Anything).Return(nil)
	f.notifs.On("NotifyNoShow", mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.MarkNoShow(context.Background(), 501)
	assert.NoError(t, err)
}

func TestMarkNoShow_BeforeStartRejected(t *testing.T) {
	f := newFixture()
	b := confirmedBooking(72 * time.Hour)
	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)

	_, err := f.service.MarkNoShow(context.Background(), 501)
	assert.ErrorIs(t, err, ErrNotElapsed)
	f.repo.AssertNotCalled(t, "MarkNoShow")
}

func TestReschedule_MovesWindow(t *testing.T) {
	f := newFixture()
	b := confirmedBooking(72 * time.Hour)
	newStart, newEnd := futureWindow(96 * time.Hour)

	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)
	f.avail.On("CheckWindow", mock.Anything, int64(7), newStart, newEnd).Return(nil)
	f.repo.On("HasBlockingOverlap", mock.Anything, int64(7), newStart, newEnd, int64(501)).Return(false, nil)
	f.repo.On("UpdateWindow", mock.Anything, int64(501), newStart, newEnd).Return(nil)

	_, err := f.service.Reschedule(context.Background(), 501, RescheduleRequest{StartTime: newStart, EndTime: newEnd})
	assert.NoError(t, err)
	f.repo.AssertCalled(t, "UpdateWindow", mock.Anything, int64(501), newStart, newEnd)
}

func TestReschedule_TerminalRejected(t *testing.T) {
	f := newFixture()
	b := pendingBooking(72 * time.Hour)
	b.Status = domain.BookingCancelled
	f.repo.On("GetByID", mock.Anything, int64(501)).Return(b, nil)

	newStart, newEnd := futureWindow(96 * time.Hour)
	_, err := f.service.Reschedule(context.Background(), 501, RescheduleRequest{StartTime: newStart, EndTime: newEnd})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestNoShowHistory(t *testing.T) {
	f := newFixture()
	dates := []time.Time{time.Now().Add(-40 * 24 * time.Hour), time.Now().Add(-10 * 24 * time.Hour)}
	f.repo.On("CountNoShows", mock.Anything, int64(3)).Return(int64(2), nil)
	f.repo.On("NoShowDates", mock.Anything, int64(3)).Return(dates, nil)

	hist, err := f.service.NoShowHistory(context.Background(), 3)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), hist.Count)
	assert.Len(t, hist.Dates, 2)
}

func TestDispatchReminders(t *testing.T) {
	f := newFixture()
	due := []domain.Booking{*confirmedBooking(12 * time.Hour), *confirmedBooking(20 * time.Hour)}
	f.repo.On("DueReminders", mock.Anything, mock.Anything, mock.Anything).Return(due, nil)
	f.notifs.On("NotifyReminder", mock.Anything, mock.Anything).Return(nil)

	sent, err := f.service.DispatchReminders(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, sent)
	f.notifs.AssertNumberOfCalls(t, "NotifyReminder", 2)
}
