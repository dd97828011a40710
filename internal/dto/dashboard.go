package dto

import "github.com/amar-rokto/api/internal/models"

// AdminStats mirrors the admin dashboard counter cards.
type AdminStats struct {
	Users            int `json:"users"`
	BloodBanks       int `json:"blood_banks"`
	Donations        int `json:"donations"`
	Requests         int `json:"requests"`
	PendingDonations int `json:"pending_donations"`
	PendingRequests  int `json:"pending_requests"`
}

// LowStockEntry flags a bank group at or under its threshold.
type LowStockEntry struct {
	BankID    string            `json:"bank_id"`
	BankName  string            `json:"bank_name"`
	Group     models.BloodGroup `json:"group"`
	Units     int               `json:"units"`
	Threshold int               `json:"threshold"`
}
