package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/amar-rokto/api/internal/models"
)

// BankRepository persists blood bank profiles and their stock maps.
type BankRepository struct {
	db *sqlx.DB
}

// NewBankRepository constructs the repository.
func NewBankRepository(db *sqlx.DB) *BankRepository {
	return &BankRepository{db: db}
}

const bankColumns = `id, name, address, city, contact, email, website, description, logo_url,
	blood_groups, stock, low_stock_threshold, search_keywords, version, created_at, updated_at`

// Create inserts a bank profile row. The id equals the owning user's id.
func (r *BankRepository) Create(ctx context.Context, bank *models.BloodBank) error {
	now := time.Now().UTC()
	if bank.CreatedAt.IsZero() {
		bank.CreatedAt = now
	}
	bank.UpdatedAt = now
	if bank.Stock == nil {
		bank.Stock = models.StockMap{}
	}
	const query = `INSERT INTO blood_banks
	(id, name, address, city, contact, email, website, description, logo_url, blood_groups, stock, low_stock_threshold, search_keywords, version, created_at, updated_at)
	VALUES (:id, :name, :address, :city, :contact, :email, :website, :description, :logo_url, :blood_groups, :stock, :low_stock_threshold, :search_keywords, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, bank); err != nil {
		return fmt.Errorf("create blood bank: %w", err)
	}
	return nil
}

// GetByID fetches a bank with its current stock map and version token.
func (r *BankRepository) GetByID(ctx context.Context, id string) (*models.BloodBank, error) {
	query := `SELECT ` + bankColumns + ` FROM blood_banks WHERE id = $1 LIMIT 1`
	var bank models.BloodBank
	if err := r.db.GetContext(ctx, &bank, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get blood bank: %w", err)
	}
	return &bank, nil
}

// UpdateProfile persists the editable profile fields and rebuilt keywords.
// The stock map is not touched here; it has its own guarded write path.
func (r *BankRepository) UpdateProfile(ctx context.Context, bank *models.BloodBank) error {
	bank.UpdatedAt = time.Now().UTC()
	const query = `UPDATE blood_banks SET name = :name, address = :address, city = :city, contact = :contact,
	email = :email, website = :website, description = :description, logo_url = :logo_url,
	blood_groups = :blood_groups, low_stock_threshold = :low_stock_threshold,
	search_keywords = :search_keywords, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, bank)
	if err != nil {
		return fmt.Errorf("update blood bank: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStockVersioned writes the whole stock map guarded by the version
// token. Returns sql.ErrNoRows when another writer got there first; the
// caller re-reads and retries.
func (r *BankRepository) UpdateStockVersioned(ctx context.Context, id string, stock models.StockMap, version int) error {
	const query = `UPDATE blood_banks SET stock = $2, version = version + 1, updated_at = $3
	WHERE id = $1 AND version = $4`
	result, err := r.db.ExecContext(ctx, query, id, stock, time.Now().UTC(), version)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update stock rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateKeywords rewrites only the denormalized search keyword array.
func (r *BankRepository) UpdateKeywords(ctx context.Context, id string, keywords []string) error {
	const query = `UPDATE blood_banks SET search_keywords = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, pq.StringArray(keywords), time.Now().UTC()); err != nil {
		return fmt.Errorf("update search keywords: %w", err)
	}
	return nil
}

// Search returns banks matching the filter, newest first. Keyword lookup
// hits the denormalized search_keywords array.
func (r *BankRepository) Search(ctx context.Context, filter models.BankFilter) ([]models.BloodBank, int, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + bankColumns + ` FROM blood_banks`)
	args := make([]interface{}, 0, 4)

	conditions := make([]string, 0, 3)
	if filter.Keyword != "" {
		args = append(args, strings.ToLower(strings.TrimSpace(filter.Keyword)))
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(search_keywords)", len(args)))
	}
	if filter.City != "" {
		args = append(args, filter.City)
		conditions = append(conditions, fmt.Sprintf("LOWER(city) = LOWER($%d)", len(args)))
	}
	if filter.Group != "" {
		args = append(args, string(filter.Group))
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(blood_groups)", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}
	builder.WriteString(where)
	builder.WriteString(" ORDER BY created_at DESC")

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", pageSize, (page-1)*pageSize))

	var banks []models.BloodBank
	if err := r.db.SelectContext(ctx, &banks, builder.String(), args...); err != nil {
		return nil, 0, fmt.Errorf("search blood banks: %w", err)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM blood_banks" + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count blood banks: %w", err)
	}
	return banks, total, nil
}

// ListAll streams every bank row, used for keyword backfill and the
// low-stock overview.
func (r *BankRepository) ListAll(ctx context.Context) ([]models.BloodBank, error) {
	query := `SELECT ` + bankColumns + ` FROM blood_banks ORDER BY name ASC`
	var banks []models.BloodBank
	if err := r.db.SelectContext(ctx, &banks, query); err != nil {
		return nil, fmt.Errorf("list blood banks: %w", err)
	}
	return banks, nil
}
