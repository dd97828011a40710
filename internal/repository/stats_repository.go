package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/amar-rokto/api/internal/dto"
)

// StatsRepository aggregates counters for the admin dashboard.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs the repository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// AdminStats runs the dashboard counters in a single round trip.
func (r *StatsRepository) AdminStats(ctx context.Context) (*dto.AdminStats, error) {
	const query = `SELECT
	(SELECT COUNT(*) FROM users) AS users,
	(SELECT COUNT(*) FROM blood_banks) AS blood_banks,
	(SELECT COUNT(*) FROM donation_schedules) AS donations,
	(SELECT COUNT(*) FROM blood_requests) AS requests,
	(SELECT COUNT(*) FROM donation_schedules WHERE status IS NULL OR status = '' OR status = 'pending') AS pending_donations,
	(SELECT COUNT(*) FROM blood_requests WHERE status IS NULL OR status = '' OR status = 'pending') AS pending_requests`

	var row struct {
		Users            int `db:"users"`
		BloodBanks       int `db:"blood_banks"`
		Donations        int `db:"donations"`
		Requests         int `db:"requests"`
		PendingDonations int `db:"pending_donations"`
		PendingRequests  int `db:"pending_requests"`
	}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}
	return &dto.AdminStats{
		Users:            row.Users,
		BloodBanks:       row.BloodBanks,
		Donations:        row.Donations,
		Requests:         row.Requests,
		PendingDonations: row.PendingDonations,
		PendingRequests:  row.PendingRequests,
	}, nil
}
