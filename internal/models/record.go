package models

import "time"

// RecordStatus is the three-state lifecycle of a donation or request record.
// Legacy rows may carry a NULL or empty status; the repositories normalize
// those to StatusPending so the workflow never sees an implicit state.
type RecordStatus string

const (
	StatusPending  RecordStatus = "pending"
	StatusApproved RecordStatus = "approved"
	StatusRejected RecordStatus = "rejected"
)

// Terminal reports whether the status admits no further transitions.
func (s RecordStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// RecordKind distinguishes the two moderated record types.
type RecordKind string

const (
	KindDonation RecordKind = "donation"
	KindRequest  RecordKind = "blood_request"
)

// DonationRecord is a donor's scheduled donation appointment with a bank.
type DonationRecord struct {
	ID            string       `db:"id" json:"id"`
	BankID        string       `db:"blood_bank_id" json:"blood_bank_id"`
	UserID        *string      `db:"user_id" json:"user_id,omitempty"`
	DonorName     string       `db:"donor_name" json:"donor_name"`
	ContactNumber string       `db:"contact_number" json:"contact_number"`
	BloodGroup    *BloodGroup  `db:"blood_group" json:"blood_group,omitempty"`
	Units         *int         `db:"units" json:"units,omitempty"`
	Status        RecordStatus `db:"status" json:"status"`
	ScheduledAt   time.Time    `db:"scheduled_at" json:"scheduled_at"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
}

// DonatedUnits returns the unit count an approval credits to stock,
// defaulting to a single unit when unspecified.
func (d *DonationRecord) DonatedUnits() int {
	if d.Units == nil || *d.Units <= 0 {
		return 1
	}
	return *d.Units
}

// RequestRecord is a recipient's request for units of a blood group.
type RequestRecord struct {
	ID            string       `db:"id" json:"id"`
	BankID        string       `db:"blood_bank_id" json:"blood_bank_id"`
	UserID        string       `db:"user_id" json:"user_id"`
	RequesterName string       `db:"requester_name" json:"requester_name"`
	ContactNumber string       `db:"contact_number" json:"contact_number"`
	BloodGroup    BloodGroup   `db:"blood_group" json:"blood_group"`
	Units         int          `db:"units" json:"units"`
	Status        RecordStatus `db:"status" json:"status"`
	RequiredBy    time.Time    `db:"required_by" json:"required_by"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
}

// StockShortage describes a refused request approval.
type StockShortage struct {
	Group     BloodGroup `json:"group"`
	Needed    int        `json:"needed"`
	Available int        `json:"available"`
}
