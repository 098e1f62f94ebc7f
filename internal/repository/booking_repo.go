package repository

import (
	"context"
	"errors"
	"time"

	"inkbook/internal/domain"

	"gorm.io/gorm"
)

// ErrSlotTaken is returned by the transactional confirm check when a
// competing confirmation won the window in the interim.
var ErrSlotTaken = errors.New("slot taken by a competing booking")

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// BusyWindow is an occupied interval returned by the overlap queries.
type BusyWindow struct {
	Start time.Time
	End   time.Time
}

type bookingModel struct {
	ID                 int64      `gorm:"column:id;primaryKey"`
	StudioID           int64      `gorm:"column:studio_id;index"`
	ArtistID           int64      `gorm:"column:artist_id;index"`
	ClientID           int64      `gorm:"column:client_id;index"`
	StartTime          time.Time  `gorm:"column:start_time"`
	EndTime            time.Time  `gorm:"column:end_time"`
	ServiceCategory    *string    `gorm:"column:service_category"`
	PriceCents         int64      `gorm:"column:price_cents"`
	DepositCents       int64      `gorm:"column:deposit_cents"`
	Status             string     `gorm:"column:status;index"`
	PaymentRef         *string    `gorm:"column:payment_ref"`
	Notes              *string    `gorm:"column:notes"`
	RefundCents        *int64     `gorm:"column:refund_cents"`
	RefundRef          *string    `gorm:"column:refund_ref"`
	RefundReason       *string    `gorm:"column:refund_reason"`
	RefundedAt         *time.Time `gorm:"column:refunded_at"`
	RefundedBy         *int64     `gorm:"column:refunded_by"`
	NoShow             bool       `gorm:"column:no_show"`
	NoShowAt           *time.Time `gorm:"column:no_show_at"`
	CommissionID       *int64     `gorm:"column:commission_id"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
	CancellationReason *string    `gorm:"column:cancellation_reason"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func strOrEmpty(s *string) string {
	if s != nil {
		return *s
	}
	return ""
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	v := s
	return &v
}

func toDomainBooking(m bookingModel) *domain.Booking {
	b := &domain.Booking{
		ID:                 m.ID,
		StudioID:           m.StudioID,
		ArtistID:           m.ArtistID,
		ClientID:           m.ClientID,
		StartTime:          m.StartTime,
		EndTime:            m.EndTime,
		ServiceCategory:    strOrEmpty(m.ServiceCategory),
		PriceCents:         m.PriceCents,
		DepositCents:       m.DepositCents,
		Status:             domain.BookingStatus(m.Status),
		PaymentRef:         strOrEmpty(m.PaymentRef),
		Notes:              strOrEmpty(m.Notes),
		RefundCents:        m.RefundCents,
		RefundRef:          strOrEmpty(m.RefundRef),
		RefundReason:       strOrEmpty(m.RefundReason),
		RefundedAt:         m.RefundedAt,
		NoShow:             m.NoShow,
		NoShowAt:           m.NoShowAt,
		CommissionID:       m.CommissionID,
		CancelledAt:        m.CancelledAt,
		CancellationReason: strOrEmpty(m.CancellationReason),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if m.RefundedBy != nil {
		b.RefundedBy = *m.RefundedBy
	}
	return b
}

func toBookingModel(b *domain.Booking) bookingModel {
	m := bookingModel{
		ID:                 b.ID,
		StudioID:           b.StudioID,
		ArtistID:           b.ArtistID,
		ClientID:           b.ClientID,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		ServiceCategory:    strPtr(b.ServiceCategory),
		PriceCents:         b.PriceCents,
		DepositCents:       b.DepositCents,
		Status:             string(b.Status),
		PaymentRef:         strPtr(b.PaymentRef),
		Notes:              strPtr(b.Notes),
		RefundCents:        b.RefundCents,
		RefundRef:          strPtr(b.RefundRef),
		RefundReason:       strPtr(b.RefundReason),
		RefundedAt:         b.RefundedAt,
		NoShow:             b.NoShow,
		NoShowAt:           b.NoShowAt,
		CommissionID:       b.CommissionID,
		CancelledAt:        b.CancelledAt,
		CancellationReason: strPtr(b.CancellationReason),
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
	if b.RefundedBy != 0 {
		v := b.RefundedBy
		m.RefundedBy = &v
	}
	return m
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

// HasBlockingOverlap reports whether a CONFIRMED or COMPLETED booking
// of the artist intersects the [start, end) window. PENDING holds are
// deliberately not counted.
func (r *BookingRepository) HasBlockingOverlap(ctx context.Context, artistID int64, start, end time.Time, excludeID int64) (bool, error) {
	var cnt int64
	var tx *gorm.DB
	if r.db.Dialector.Name() == "postgres" {
		q := `
SELECT COUNT(1)
FROM bookings
WHERE artist_id = ?
  AND id <> ?
  AND status IN ('confirmed', 'completed')
  AND tstzrange(start_time, end_time, '[)') && tstzrange(?, ?, '[)')
`
		tx = r.db.WithContext(ctx).Raw(q, artistID, excludeID, start, end).Scan(&cnt)
	} else {
		q := `
SELECT COUNT(1)
FROM bookings
WHERE artist_id = ?
  AND id <> ?
  AND status IN ('confirmed', 'completed')
  AND start_time < ? AND end_time > ?
`
		tx = r.db.WithContext(ctx).Raw(q, artistID, excludeID, end, start).Scan(&cnt)
	}
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

// BusyWindows returns the CONFIRMED/COMPLETED windows of an artist
// intersecting [from, to), ordered by start.
func (r *BookingRepository) BusyWindows(ctx context.Context, artistID int64, from, to time.Time) ([]BusyWindow, error) {
	var rows []BusyWindow
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Select(`start_time AS "start", end_time AS "end"`).
		Where("artist_id = ?", artistID).
		Where("status IN ('confirmed', 'completed')").
		Where("start_time < ? AND end_time > ?", to, from).
		Order("start_time").
		Scan(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return rows, nil
}

// ConfirmIfFree performs the authoritative check-and-write for the
// confirm transition: inside one transaction it re-checks that no
// CONFIRMED/COMPLETED booking overlaps the window, then flips the
// status and stores the payment reference. Returns ErrSlotTaken when
// the window was claimed by a competing confirmation.
func (r *BookingRepository) ConfirmIfFree(ctx context.Context, bookingID int64, paymentRef string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m bookingModel
		if err := tx.First(&m, bookingID).Error; err != nil {
			return err
		}

		var cnt int64
		if err := tx.Model(&bookingModel{}).
			Where("artist_id = ?", m.ArtistID).
			Where("id <> ?", m.ID).
			Where("status IN ('confirmed', 'completed')").
			Where("start_time < ? AND end_time > ?", m.EndTime, m.StartTime).
			Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return ErrSlotTaken
		}

		return tx.Model(&bookingModel{}).
			Where("id = ?", bookingID).
			Updates(map[string]any{
				"status":      string(domain.BookingConfirmed),
				"payment_ref": paymentRef,
				"updated_at":  time.Now().UTC(),
			}).Error
	})
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, bookingID int64, status domain.BookingStatus) error {
	return r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ?", bookingID).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now().UTC()}).Error
}

func (r *BookingRepository) UpdateWindow(ctx context.Context, bookingID int64, start, end time.Time) error {
	return r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ?", bookingID).
		Updates(map[string]any{"start_time": start, "end_time": end, "updated_at": time.Now().UTC()}).Error
}

func (r *BookingRepository) CancelWithReason(ctx context.Context, bookingID int64, reason string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ?", bookingID).
		Updates(map[string]any{
			"status":              string(domain.BookingCancelled),
			"cancellation_reason": reason,
			"cancelled_at":        at,
			"updated_at":          at,
		}).Error
}

// SetRefund appends refund settlement fields. Allowed after
// cancellation too, for late-settled refunds.
func (r *BookingRepository) SetRefund(ctx context.Context, bookingID, cents int64, ref, reason string, at time.Time, by int64) error {
	return r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ?", bookingID).
		Updates(map[string]any{
			"refund_cents":  cents,
			"refund_ref":    ref,
			"refund_reason": reason,
			"refunded_at":   at,
			"refunded_by":   by,
			"updated_at":    at,
		}).Error
}

func (r *BookingRepository) MarkNoShow(ctx context.Context, bookingID int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ?", bookingID).
		Updates(map[string]any{
			"status":     string(domain.BookingNoShow),
			"no_show":    true,
			"no_show_at": at,
			"updated_at": at,
		}).Error
}

func (r *BookingRepository) SetCommissionID(ctx context.Context, bookingID, commissionID int64) error {
	return r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ?", bookingID).
		Updates(map[string]any{"commission_id": commissionID, "updated_at": time.Now().UTC()}).Error
}

func (r *BookingRepository) ListByClient(ctx context.Context, clientID int64, limit, offset int) ([]domain.Booking, error) {
	var ms []bookingModel
	tx := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("start_time DESC").
		Limit(limit).Offset(offset).
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Booking, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

func (r *BookingRepository) ListByStudio(ctx context.Context, studioID int64, limit, offset int) ([]domain.Booking, error) {
	var ms []bookingModel
	tx := r.db.WithContext(ctx).
		Where("studio_id = ?", studioID).
		Order("start_time DESC").
		Limit(limit).Offset(offset).
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Booking, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// CountNoShows returns the number of NO_SHOW bookings of a client.
func (r *BookingRepository) CountNoShows(ctx context.Context, clientID int64) (int64, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("client_id = ? AND status = ?", clientID, string(domain.BookingNoShow)).
		Count(&cnt)
	return cnt, tx.Error
}

// NoShowDates returns the appointment start dates of a client's
// NO_SHOW bookings, oldest first.
func (r *BookingRepository) NoShowDates(ctx context.Context, clientID int64) ([]time.Time, error) {
	var dates []time.Time
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("client_id = ? AND status = ?", clientID, string(domain.BookingNoShow)).
		Order("start_time").
		Pluck("start_time", &dates)
	return dates, tx.Error
}

// DueReminders lists CONFIRMED bookings starting inside [from, to).
// An external scheduler calls this and hands the payloads to delivery.
func (r *BookingRepository) DueReminders(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	var ms []bookingModel
	tx := r.db.WithContext(ctx).
		Where("status = ?", string(domain.BookingConfirmed)).
		Where("start_time >= ? AND start_time < ?", from, to).
		Order("start_time").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Booking, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}
