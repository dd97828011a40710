package models

import "time"

// AlertSeverity grades how urgent a bank's need is.
type AlertSeverity string

const (
	SeverityLow       AlertSeverity = "low"
	SeverityMedium    AlertSeverity = "medium"
	SeverityHigh      AlertSeverity = "high"
	SeverityEmergency AlertSeverity = "emergency"
)

// Valid reports whether the severity is a known grade.
func (s AlertSeverity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityEmergency:
		return true
	}
	return false
}

// Alert is a bank-published urgent-need notice shown on the public board.
type Alert struct {
	ID         string        `db:"id" json:"id"`
	BankID     string        `db:"bank_id" json:"bank_id"`
	BankName   string        `db:"bank_name" json:"bank_name"`
	BloodGroup BloodGroup    `db:"blood_group" json:"blood_group"`
	City       string        `db:"city" json:"city"`
	Severity   AlertSeverity `db:"severity" json:"severity"`
	Message    string        `db:"message" json:"message"`
	Active     bool          `db:"active" json:"active"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
}
