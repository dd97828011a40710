package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amar-rokto/api/internal/models"
)

func newBankMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func bankRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "address", "city", "contact", "email", "website", "description", "logo_url",
		"blood_groups", "stock", "low_stock_threshold", "search_keywords", "version", "created_at", "updated_at",
	})
}

func TestBankRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newBankMock(t)
	defer cleanup()
	repo := NewBankRepository(db)

	rows := bankRows().AddRow(
		"bank-1", "City Blood Bank", "12 Green Road", "Dhaka", "01700000000", "bank@example.org", "", "", "",
		pq.StringArray{"A+", "O-"}, []byte(`{"A+":5,"O-":2}`), 5, pq.StringArray{"city", "dhaka"}, 7, time.Now(), time.Now(),
	)
	mock.ExpectQuery("FROM blood_banks WHERE id = \\$1 LIMIT 1").
		WithArgs("bank-1").
		WillReturnRows(rows)

	bank, err := repo.GetByID(context.Background(), "bank-1")
	require.NoError(t, err)
	assert.Equal(t, "City Blood Bank", bank.Name)
	assert.Equal(t, 5, bank.Stock.Units(models.GroupAPos))
	assert.Equal(t, 7, bank.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBankRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, cleanup := newBankMock(t)
	defer cleanup()
	repo := NewBankRepository(db)

	mock.ExpectQuery("FROM blood_banks WHERE id = \\$1 LIMIT 1").
		WithArgs("missing").
		WillReturnRows(bankRows())

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBankRepositoryUpdateStockVersioned(t *testing.T) {
	db, mock, cleanup := newBankMock(t)
	defer cleanup()
	repo := NewBankRepository(db)

	mock.ExpectExec("UPDATE blood_banks SET stock = \\$2, version = version \\+ 1").
		WithArgs("bank-1", sqlmock.AnyArg(), sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStockVersioned(context.Background(), "bank-1", models.StockMap{models.GroupAPos: 4}, 7)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBankRepositoryUpdateStockVersionConflict(t *testing.T) {
	db, mock, cleanup := newBankMock(t)
	defer cleanup()
	repo := NewBankRepository(db)

	// Another writer already bumped the version, so the guarded UPDATE
	// touches nothing.
	mock.ExpectExec("UPDATE blood_banks SET stock = \\$2, version = version \\+ 1").
		WithArgs("bank-1", sqlmock.AnyArg(), sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStockVersioned(context.Background(), "bank-1", models.StockMap{}, 7)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBankRepositorySearchFilters(t *testing.T) {
	db, mock, cleanup := newBankMock(t)
	defer cleanup()
	repo := NewBankRepository(db)

	mock.ExpectQuery("FROM blood_banks WHERE \\$1 = ANY\\(search_keywords\\) AND LOWER\\(city\\) = LOWER\\(\\$2\\) AND \\$3 = ANY\\(blood_groups\\) ORDER BY created_at DESC LIMIT 20 OFFSET 0").
		WithArgs("dhaka", "Dhaka", "O-").
		WillReturnRows(bankRows().AddRow(
			"bank-1", "City Blood Bank", "", "Dhaka", "", "", "", "", "",
			pq.StringArray{"O-"}, []byte(`{}`), 0, pq.StringArray{}, 0, time.Now(), time.Now(),
		))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM blood_banks WHERE \\$1 = ANY\\(search_keywords\\)").
		WithArgs("dhaka", "Dhaka", "O-").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	banks, total, err := repo.Search(context.Background(), models.BankFilter{
		Keyword: " Dhaka ",
		City:    "Dhaka",
		Group:   models.GroupONeg,
	})
	require.NoError(t, err)
	assert.Len(t, banks, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBankRepositoryUpdateProfileNotFound(t *testing.T) {
	db, mock, cleanup := newBankMock(t)
	defer cleanup()
	repo := NewBankRepository(db)

	mock.ExpectExec("UPDATE blood_banks SET name = ").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateProfile(context.Background(), &models.BloodBank{ID: "missing"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
