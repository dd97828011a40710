package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/amar-rokto/api/internal/models"
)

// DonationRepository persists donation schedule records.
//
// Legacy rows predate the blood_bank_id column and carry the owning bank id
// in bank_id instead. Every SELECT coalesces the two aliases and the empty
// status into the canonical shape, so callers only ever see normalized
// records.
type DonationRepository struct {
	db *sqlx.DB
}

// NewDonationRepository constructs the repository.
func NewDonationRepository(db *sqlx.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

const donationSelect = `SELECT id,
	COALESCE(NULLIF(blood_bank_id, ''), bank_id) AS blood_bank_id,
	user_id, donor_name, contact_number, blood_group, units,
	COALESCE(NULLIF(status, ''), 'pending') AS status,
	scheduled_at, created_at
	FROM donation_schedules`

// Create inserts a new donation schedule in pending status.
func (r *DonationRepository) Create(ctx context.Context, record *models.DonationRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Status == "" {
		record.Status = models.StatusPending
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO donation_schedules
	(id, blood_bank_id, user_id, donor_name, contact_number, blood_group, units, status, scheduled_at, created_at)
	VALUES (:id, :blood_bank_id, :user_id, :donor_name, :contact_number, :blood_group, :units, :status, :scheduled_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create donation schedule: %w", err)
	}
	return nil
}

// GetByID fetches a single normalized donation record.
func (r *DonationRepository) GetByID(ctx context.Context, id string) (*models.DonationRecord, error) {
	query := donationSelect + ` WHERE id = $1 LIMIT 1`
	var record models.DonationRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get donation schedule: %w", err)
	}
	return &record, nil
}

// ListPendingByBank returns unresolved donations for a bank, matching the
// owning-bank id under either column alias. Rows are deduplicated by id in
// case a migrated record carries both.
func (r *DonationRepository) ListPendingByBank(ctx context.Context, bankID string) ([]models.DonationRecord, error) {
	query := donationSelect + ` WHERE (blood_bank_id = $1 OR bank_id = $1)
	AND (status IS NULL OR status = '' OR status = 'pending')
	ORDER BY created_at DESC`
	var rows []models.DonationRecord
	if err := r.db.SelectContext(ctx, &rows, query, bankID); err != nil {
		return nil, fmt.Errorf("list pending donations: %w", err)
	}
	return dedupeDonations(rows), nil
}

// ListByUser returns a donor's history, latest first.
func (r *DonationRepository) ListByUser(ctx context.Context, userID string) ([]models.DonationRecord, error) {
	query := donationSelect + ` WHERE user_id = $1 ORDER BY created_at DESC`
	var rows []models.DonationRecord
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list donations by user: %w", err)
	}
	return rows, nil
}

// ListByBank returns every record for a bank regardless of status.
func (r *DonationRepository) ListByBank(ctx context.Context, bankID string) ([]models.DonationRecord, error) {
	query := donationSelect + ` WHERE (blood_bank_id = $1 OR bank_id = $1) ORDER BY created_at DESC`
	var rows []models.DonationRecord
	if err := r.db.SelectContext(ctx, &rows, query, bankID); err != nil {
		return nil, fmt.Errorf("list donations by bank: %w", err)
	}
	return dedupeDonations(rows), nil
}

// UpdateStatusIfPending claims the pending record and moves it to a
// terminal status. Returns sql.ErrNoRows when the record is gone or was
// already resolved, which makes double-apply impossible.
func (r *DonationRepository) UpdateStatusIfPending(ctx context.Context, id string, status models.RecordStatus) error {
	const query = `UPDATE donation_schedules SET status = $2
	WHERE id = $1 AND (status IS NULL OR status = '' OR status = 'pending')`
	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update donation status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update donation status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ResetStatusToPending reverts a claimed record. Only used to unwind a
// claim when the subsequent stock write cannot proceed.
func (r *DonationRepository) ResetStatusToPending(ctx context.Context, id string) error {
	const query = `UPDATE donation_schedules SET status = 'pending' WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("reset donation status: %w", err)
	}
	return nil
}

func dedupeDonations(rows []models.DonationRecord) []models.DonationRecord {
	if len(rows) < 2 {
		return rows
	}
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0]
	for _, row := range rows {
		if _, ok := seen[row.ID]; ok {
			continue
		}
		seen[row.ID] = struct{}{}
		out = append(out, row)
	}
	return out
}
