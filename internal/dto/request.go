package dto

// CreateBloodRequest submits a request for units of a blood group.
type CreateBloodRequest struct {
	BankID        string `json:"blood_bank_id" validate:"required"`
	RequesterName string `json:"requester_name" validate:"required"`
	ContactNumber string `json:"contact_number" validate:"required"`
	BloodGroup    string `json:"blood_group" validate:"required,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Units         int    `json:"units" validate:"required,min=1"`
	RequiredBy    string `json:"required_by" validate:"required"` // yyyy-mm-dd
}
