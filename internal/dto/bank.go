package dto

import "github.com/amar-rokto/api/internal/models"

// UpdateBankRequest mutates a blood bank profile. Keywords are rebuilt on
// every write so search stays consistent with the profile fields.
type UpdateBankRequest struct {
	Name              string   `json:"name" validate:"required"`
	Address           string   `json:"address"`
	City              string   `json:"city"`
	Contact           string   `json:"contact"`
	Email             string   `json:"email" validate:"omitempty,email"`
	Website           string   `json:"website"`
	Description       string   `json:"description"`
	LogoURL           string   `json:"logo_url"`
	BloodGroups       []string `json:"blood_groups" validate:"dive,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	LowStockThreshold int      `json:"low_stock_threshold" validate:"omitempty,min=0"`
}

// BankSummary is the public listing/search projection of a bank.
type BankSummary struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Address     string          `json:"address"`
	City        string          `json:"city"`
	Contact     string          `json:"contact"`
	LogoURL     string          `json:"logo_url"`
	BloodGroups []string        `json:"blood_groups"`
	Stock       models.StockMap `json:"stock"`
}

// BankSearchQuery filters the public bank directory.
type BankSearchQuery struct {
	Keyword  string
	City     string
	Group    string
	Page     int
	PageSize int
}
