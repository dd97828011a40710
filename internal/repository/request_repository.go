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

// RequestRepository persists blood request records. The same legacy
// owning-bank alias and implicit-pending normalization as the donation
// repository applies.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs the repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

const requestSelect = `SELECT id,
	COALESCE(NULLIF(blood_bank_id, ''), bank_id) AS blood_bank_id,
	user_id, requester_name, contact_number, blood_group, units,
	COALESCE(NULLIF(status, ''), 'pending') AS status,
	required_by, created_at
	FROM blood_requests`

// Create inserts a new blood request in pending status.
func (r *RequestRepository) Create(ctx context.Context, record *models.RequestRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Status == "" {
		record.Status = models.StatusPending
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO blood_requests
	(id, blood_bank_id, user_id, requester_name, contact_number, blood_group, units, status, required_by, created_at)
	VALUES (:id, :blood_bank_id, :user_id, :requester_name, :contact_number, :blood_group, :units, :status, :required_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create blood request: %w", err)
	}
	return nil
}

// GetByID fetches a single normalized request record.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.RequestRecord, error) {
	query := requestSelect + ` WHERE id = $1 LIMIT 1`
	var record models.RequestRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get blood request: %w", err)
	}
	return &record, nil
}

// ListPendingByBank returns unresolved requests for a bank under either
// owning-bank alias, deduplicated by record id.
func (r *RequestRepository) ListPendingByBank(ctx context.Context, bankID string) ([]models.RequestRecord, error) {
	query := requestSelect + ` WHERE (blood_bank_id = $1 OR bank_id = $1)
	AND (status IS NULL OR status = '' OR status = 'pending')
	ORDER BY created_at DESC`
	var rows []models.RequestRecord
	if err := r.db.SelectContext(ctx, &rows, query, bankID); err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return dedupeRequests(rows), nil
}

// ListByBank returns every record for a bank regardless of status.
func (r *RequestRepository) ListByBank(ctx context.Context, bankID string) ([]models.RequestRecord, error) {
	query := requestSelect + ` WHERE (blood_bank_id = $1 OR bank_id = $1) ORDER BY created_at DESC`
	var rows []models.RequestRecord
	if err := r.db.SelectContext(ctx, &rows, query, bankID); err != nil {
		return nil, fmt.Errorf("list requests by bank: %w", err)
	}
	return dedupeRequests(rows), nil
}

// ListByUser returns a requester's history, latest first.
func (r *RequestRepository) ListByUser(ctx context.Context, userID string) ([]models.RequestRecord, error) {
	query := requestSelect + ` WHERE user_id = $1 ORDER BY created_at DESC`
	var rows []models.RequestRecord
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list requests by user: %w", err)
	}
	return rows, nil
}

// UpdateStatusIfPending claims the pending record for a terminal status.
// Returns sql.ErrNoRows when already resolved.
func (r *RequestRepository) UpdateStatusIfPending(ctx context.Context, id string, status models.RecordStatus) error {
	const query = `UPDATE blood_requests SET status = $2
	WHERE id = $1 AND (status IS NULL OR status = '' OR status = 'pending')`
	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update request status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ResetStatusToPending unwinds a claim when the stock write cannot proceed.
func (r *RequestRepository) ResetStatusToPending(ctx context.Context, id string) error {
	const query = `UPDATE blood_requests SET status = 'pending' WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("reset request status: %w", err)
	}
	return nil
}

func dedupeRequests(rows []models.RequestRecord) []models.RequestRecord {
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
