package commission

import (
	"encoding/json"
	"time"
)

type CreateRuleRequest struct {
	Kind            string          `json:"kind" binding:"required"`
	RateBP          int64           `json:"rate_bp"`
	FlatCents       int64           `json:"flat_cents"`
	Tiers           json.RawMessage `json:"tiers"`
	ServiceCategory string          `json:"service_category"`
	ValidFrom       *time.Time      `json:"valid_from"`
	ValidUntil      *time.Time      `json:"valid_until"`
	Priority        int             `json:"priority"`
}
