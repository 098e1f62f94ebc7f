package catalog

type CreateStudioRequest struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Description string `json:"description"`
	Timezone    string `json:"timezone"`

	FullRefundLeadHours    int   `json:"full_refund_lead_hours"`
	PartialRefundLeadHours int   `json:"partial_refund_lead_hours"`
	PartialRefundBP        int64 `json:"partial_refund_bp"`
}

type CreateArtistRequest struct {
	UserID    int64  `json:"user_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Specialty string `json:"specialty"`
	Bio       string `json:"bio"`
}
