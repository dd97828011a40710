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

// AlertRepository persists urgent-need alerts.
type AlertRepository struct {
	db *sqlx.DB
}

// NewAlertRepository constructs the repository.
func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

const alertColumns = `id, bank_id, bank_name, blood_group, city, severity, message, active, created_at`

// Create inserts a new alert.
func (r *AlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO alerts
	(id, bank_id, bank_name, blood_group, city, severity, message, active, created_at)
	VALUES (:id, :bank_id, :bank_name, :blood_group, :city, :severity, :message, :active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, alert); err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

// GetByID fetches one alert.
func (r *AlertRepository) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1 LIMIT 1`
	var alert models.Alert
	if err := r.db.GetContext(ctx, &alert, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return &alert, nil
}

// ListByBank returns the bank's alerts, newest first.
func (r *AlertRepository) ListByBank(ctx context.Context, bankID string) ([]models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE bank_id = $1 ORDER BY created_at DESC`
	var alerts []models.Alert
	if err := r.db.SelectContext(ctx, &alerts, query, bankID); err != nil {
		return nil, fmt.Errorf("list alerts by bank: %w", err)
	}
	return alerts, nil
}

// ListActive returns every active alert for the public board, optionally
// filtered by city.
func (r *AlertRepository) ListActive(ctx context.Context, city string) ([]models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE active = TRUE`
	args := []interface{}{}
	if city != "" {
		query += ` AND LOWER(city) = LOWER($1)`
		args = append(args, city)
	}
	query += ` ORDER BY created_at DESC`
	var alerts []models.Alert
	if err := r.db.SelectContext(ctx, &alerts, query, args...); err != nil {
		return nil, fmt.Errorf("list active alerts: %w", err)
	}
	return alerts, nil
}

// SetActive toggles visibility.
func (r *AlertRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE alerts SET active = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("toggle alert: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an alert permanently.
func (r *AlertRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM alerts WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
