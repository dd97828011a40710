package dto

import (
	"time"

	"github.com/amar-rokto/api/internal/models"
)

// ScheduleDonationRequest submits a donation appointment. Group and units
// are optional; a bank may record them at the counter instead.
type ScheduleDonationRequest struct {
	BankID        string `json:"blood_bank_id" validate:"required"`
	DonorName     string `json:"donor_name" validate:"required"`
	ContactNumber string `json:"contact_number" validate:"required"`
	Date          string `json:"date" validate:"required"` // yyyy-mm-dd
	Time          string `json:"time" validate:"required"` // HH:MM
	BloodGroup    string `json:"blood_group" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Units         int    `json:"units" validate:"omitempty,min=1"`
}

// DonorStats powers the donor dashboard metrics.
type DonorStats struct {
	TotalScheduled int                    `json:"total_scheduled"`
	ApprovedCount  int                    `json:"approved_count"`
	PendingCount   int                    `json:"pending_count"`
	LastApprovedAt *time.Time             `json:"last_approved_at,omitempty"`
	NextUpcoming   *models.DonationRecord `json:"next_upcoming,omitempty"`
}
