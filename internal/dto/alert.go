package dto

// CreateAlertRequest publishes an urgent-need alert for a bank.
type CreateAlertRequest struct {
	BloodGroup string `json:"blood_group" validate:"required,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	City       string `json:"city" validate:"required"`
	Severity   string `json:"severity" validate:"required,oneof=low medium high emergency"`
	Message    string `json:"message" validate:"required"`
	Active     bool   `json:"active"`
}
