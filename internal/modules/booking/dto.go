package booking

import "time"

type CreateBookingRequest struct {
	StudioID        int64     `json:"studio_id" binding:"required"`
	ArtistID        int64     `json:"artist_id" binding:"required"`
	ClientID        int64     `json:"client_id"`
	StartTime       time.Time `json:"start_time" binding:"required"`
	EndTime         time.Time `json:"end_time" binding:"required"`
	ServiceCategory string    `json:"service_category"`
	PriceCents      int64     `json:"price_cents" binding:"required"`
	DepositCents    int64     `json:"deposit_cents"`
	Notes           string    `json:"notes"`
}

type CancelBookingRequest struct {
	Reason              string `json:"reason" binding:"required"`
	OverrideRefundCents *int64 `json:"override_refund_cents"`
}

type RescheduleRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

type NoShowHistoryResponse struct {
	ClientID int64       `json:"client_id"`
	Count    int64       `json:"count"`
	Dates    []time.Time `json:"dates"`
}
