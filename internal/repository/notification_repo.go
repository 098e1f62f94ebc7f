package repository

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// NotificationRecord is a stored outbound notification payload.
// Delivery (email/SMS) happens outside this service; the record is the
// contract handed to the delivery layer and the user's inbox entry.
type NotificationRecord struct {
	ID            int64           `gorm:"column:id;primaryKey" json:"id"`
	RecipientID   int64           `gorm:"column:recipient_id;index:idx_notifications_recipient_unread" json:"recipient_id"`
	RecipientRole string          `gorm:"column:recipient_role" json:"recipient_role"`
	TemplateKey   string          `gorm:"column:template_key" json:"template_key"`
	Title         string          `gorm:"column:title" json:"title"`
	Body          string          `gorm:"column:body;type:text" json:"body"`
	Data          json.RawMessage `gorm:"column:data;type:jsonb" json:"data,omitempty"`
	IsRead        bool            `gorm:"column:is_read;index:idx_notifications_recipient_unread" json:"is_read"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (NotificationRecord) TableName() string { return "notifications" }

func (r *NotificationRepository) Create(ctx context.Context, n *NotificationRecord) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID int64, limit int) ([]NotificationRecord, error) {
	var out []NotificationRecord
	tx := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out)
	return out, tx.Error
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID int64) (int64, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).
		Model(&NotificationRecord{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&cnt)
	return cnt, tx.Error
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, notificationID, recipientID int64) error {
	return r.db.WithContext(ctx).
		Model(&NotificationRecord{}).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Update("is_read", true).Error
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, recipientID int64) error {
	return r.db.WithContext(ctx).
		Model(&NotificationRecord{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true).Error
}
