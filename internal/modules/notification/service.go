package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"inkbook/internal/domain"
	"inkbook/internal/repository"
)

// Template keys are the contract with the delivery layer; email and
// SMS rendering happens outside this service.
const (
	TemplateBookingCreated   = "booking.created"
	TemplateBookingConfirmed = "booking.confirmed"
	TemplateBookingCancelled = "booking.cancelled"
	TemplateBookingNoShow    = "booking.no_show"
	TemplateCommissionEarned = "commission.earned"
	TemplateBookingReminder  = "booking.reminder"
)

// Store is the persistence surface for inbox records.
type Store interface {
	Create(ctx context.Context, n *repository.NotificationRecord) error
	ListByRecipient(ctx context.Context, recipientID int64, limit int) ([]repository.NotificationRecord, error)
	CountUnread(ctx context.Context, recipientID int64) (int64, error)
	MarkAsRead(ctx context.Context, notificationID, recipientID int64) error
	MarkAllAsRead(ctx context.Context, recipientID int64) error
}

// ArtistReader resolves the user behind an artist so staff copies land
// in the right inbox.
type ArtistReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Artist, error)
}

// StudioReader resolves the studio owner for commission notices.
type StudioReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Studio, error)
}

// Publisher pushes an event to a connected user; offline users read
// their stored inbox instead.
type Publisher interface {
	Publish(userID int64, eventType string, payload interface{}) bool
}

type Service struct {
	store   Store
	artists ArtistReader
	studios StudioReader
	hub     Publisher
	loggerf func(format string, args ...interface{})
}

func NewService(store Store, artists ArtistReader, studios StudioReader, hub Publisher, loggerf func(string, ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{store: store, artists: artists, studios: studios, hub: hub, loggerf: loggerf}
}

type bookingPayload struct {
	BookingID   int64     `json:"booking_id"`
	StudioID    int64     `json:"studio_id"`
	ArtistID    int64     `json:"artist_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Status      string    `json:"status"`
	RefundCents int64     `json:"refund_cents,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
}

func payloadFor(b *domain.Booking) bookingPayload {
	return bookingPayload{
		BookingID: b.ID,
		StudioID:  b.StudioID,
		ArtistID:  b.ArtistID,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		Status:    string(b.Status),
	}
}

func (s *Service) NotifyBookingCreated(ctx context.Context, b *domain.Booking) error {
	p := payloadFor(b)
	title := "Booking request received"
	body := fmt.Sprintf("Your booking request for %s is awaiting confirmation.", b.StartTime.Format("Jan 2 15:04"))
	s.deliver(ctx, b.ClientID, string(domain.RoleClient), TemplateBookingCreated, title, body, p)

	s.notifyArtist(ctx, b, TemplateBookingCreated, "New booking request",
		fmt.Sprintf("A client requested %s to %s.", b.StartTime.Format("Jan 2 15:04"), b.EndTime.Format("15:04")), p)
	return nil
}

func (s *Service) NotifyBookingConfirmed(ctx context.Context, b *domain.Booking) error {
	p := payloadFor(b)
	title := "Booking confirmed"
	body := fmt.Sprintf("Your appointment on %s is confirmed. Deposit received.", b.StartTime.Format("Jan 2 15:04"))
	s.deliver(ctx, b.ClientID, string(domain.RoleClient), TemplateBookingConfirmed, title, body, p)

	s.notifyArtist(ctx, b, TemplateBookingConfirmed, "Booking confirmed",
		fmt.Sprintf("The %s appointment is confirmed.", b.StartTime.Format("Jan 2 15:04")), p)
	return nil
}

func (s *Service) NotifyBookingCancelled(ctx context.Context, b *domain.Booking, refundCents int64) error {
	p := payloadFor(b)
	p.RefundCents = refundCents
	title := "Booking cancelled"
	body := fmt.Sprintf("Your appointment on %s was cancelled.", b.StartTime.Format("Jan 2 15:04"))
	if refundCents > 0 {
		body = fmt.Sprintf("%s A refund of $%.2f is on its way.", body, float64(refundCents)/100)
	}
	s.deliver(ctx, b.ClientID, string(domain.RoleClient), TemplateBookingCancelled, title, body, p)

	s.notifyArtist(ctx, b, TemplateBookingCancelled, "Booking cancelled",
		fmt.Sprintf("The %s appointment was cancelled.", b.StartTime.Format("Jan 2 15:04")), p)
	return nil
}

func (s *Service) NotifyNoShow(ctx context.Context, b *domain.Booking) error {
	p := payloadFor(b)
	s.deliver(ctx, b.ClientID, string(domain.RoleClient), TemplateBookingNoShow,
		"Missed appointment",
		fmt.Sprintf("You were marked as a no-show for %s. The deposit was kept.", b.StartTime.Format("Jan 2 15:04")), p)
	return nil
}

func (s *Service) NotifyCommissionEarned(ctx context.Context, b *domain.Booking, amountCents int64) error {
	studio, err := s.studios.GetByID(ctx, b.StudioID)
	if err != nil {
		s.loggerf("level=warn msg=commission notice skipped, studio lookup failed studio_id=%d err=%v", b.StudioID, err)
		return nil
	}
	p := payloadFor(b)
	p.AmountCents = amountCents
	s.deliver(ctx, studio.OwnerID, string(domain.RoleStudioOwner), TemplateCommissionEarned,
		"Commission earned",
		fmt.Sprintf("Booking #%d completed. Studio commission: $%.2f.", b.ID, float64(amountCents)/100), p)
	return nil
}

func (s *Service) NotifyReminder(ctx context.Context, b *domain.Booking) error {
	p := payloadFor(b)
	s.deliver(ctx, b.ClientID, string(domain.RoleClient), TemplateBookingReminder,
		"Upcoming appointment",
		fmt.Sprintf("Reminder: your appointment starts %s.", b.StartTime.Format("Jan 2 at 15:04")), p)
	return nil
}

func (s *Service) notifyArtist(ctx context.Context, b *domain.Booking, templateKey, title, body string, p bookingPayload) {
	artist, err := s.artists.GetByID(ctx, b.ArtistID)
	if err != nil {
		s.loggerf("level=warn msg=artist notice skipped, lookup failed artist_id=%d err=%v", b.ArtistID, err)
		return
	}
	s.deliver(ctx, artist.UserID, string(domain.RoleArtist), templateKey, title, body, p)
}

// deliver stores the inbox record and pushes it to a live connection.
// Failures are logged, never propagated; notifications must not fail a
// booking transition.
func (s *Service) deliver(ctx context.Context, recipientID int64, role, templateKey, title, body string, payload bookingPayload) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.loggerf("level=error msg=notification payload marshal failed template=%s err=%v", templateKey, err)
		return
	}
	rec := &repository.NotificationRecord{
		RecipientID:   recipientID,
		RecipientRole: role,
		TemplateKey:   templateKey,
		Title:         title,
		Body:          body,
		Data:          data,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		s.loggerf("level=error msg=notification store failed template=%s recipient_id=%d err=%v", templateKey, recipientID, err)
		return
	}
	if s.hub != nil {
		s.hub.Publish(recipientID, templateKey, rec)
	}
}

func (s *Service) Inbox(ctx context.Context, recipientID int64, limit int) ([]repository.NotificationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListByRecipient(ctx, recipientID, limit)
}

func (s *Service) UnreadCount(ctx context.Context, recipientID int64) (int64, error) {
	return s.store.CountUnread(ctx, recipientID)
}

func (s *Service) MarkRead(ctx context.Context, notificationID, recipientID int64) error {
	return s.store.MarkAsRead(ctx, notificationID, recipientID)
}

func (s *Service) MarkAllRead(ctx context.Context, recipientID int64) error {
	return s.store.MarkAllAsRead(ctx, recipientID)
}
