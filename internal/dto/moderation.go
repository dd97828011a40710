package dto

import (
	"time"

	"github.com/amar-rokto/api/internal/models"
)

// PendingSnapshot is the result of listing a bank's unresolved records.
type PendingSnapshot struct {
	Donations []models.DonationRecord `json:"donations"`
	Requests  []models.RequestRecord  `json:"requests"`
}

// ModerateRequest resolves one pending record.
type ModerateRequest struct {
	Kind models.RecordKind `json:"kind" validate:"required,oneof=donation blood_request"`
}

// ModerationResult reports the applied transition.
type ModerationResult struct {
	RecordID   string              `json:"record_id"`
	Kind       models.RecordKind   `json:"kind"`
	Status     models.RecordStatus `json:"status"`
	BloodGroup *models.BloodGroup  `json:"blood_group,omitempty"`
	Units      int                 `json:"units"`
	Stock      models.StockMap     `json:"stock"`
	ResolvedAt time.Time           `json:"resolved_at"`
}

// AdjustStockRequest is the manual operator +/- control.
type AdjustStockRequest struct {
	Group models.BloodGroup `json:"group" validate:"required"`
	Delta int               `json:"delta" validate:"required"`
}
