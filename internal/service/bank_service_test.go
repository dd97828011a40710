package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/amar-rokto/api/internal/dto"
	"github.com/amar-rokto/api/internal/models"
	appErrors "github.com/amar-rokto/api/pkg/errors"
)

type bankDirectoryStub struct {
	banks        map[string]*models.BloodBank
	searchResult []models.BloodBank
	searchTotal  int
	lastFilter   models.BankFilter
	keywordCalls map[string][]string
}

func newBankDirectoryStub(banks ...*models.BloodBank) *bankDirectoryStub {
	s := &bankDirectoryStub{
		banks:        make(map[string]*models.BloodBank),
		keywordCalls: make(map[string][]string),
	}
	for _, b := range banks {
		s.banks[b.ID] = b
	}
	return s
}

func (s *bankDirectoryStub) GetByID(ctx context.Context, id string) (*models.BloodBank, error) {
	if b, ok := s.banks[id]; ok {
		copy := *b
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *bankDirectoryStub) UpdateProfile(ctx context.Context, bank *models.BloodBank) error {
	if _, ok := s.banks[bank.ID]; !ok {
		return sql.ErrNoRows
	}
	copy := *bank
	s.banks[bank.ID] = &copy
	return nil
}

func (s *bankDirectoryStub) UpdateKeywords(ctx context.Context, id string, keywords []string) error {
	if _, ok := s.banks[id]; !ok {
		return sql.ErrNoRows
	}
	s.keywordCalls[id] = keywords
	return nil
}

func (s *bankDirectoryStub) Search(ctx context.Context, filter models.BankFilter) ([]models.BloodBank, int, error) {
	s.lastFilter = filter
	return s.searchResult, s.searchTotal, nil
}

func (s *bankDirectoryStub) ListAll(ctx context.Context) ([]models.BloodBank, error) {
	out := make([]models.BloodBank, 0, len(s.banks))
	for _, b := range s.banks {
		out = append(out, *b)
	}
	return out, nil
}

func TestSearchKeywordsTokenization(t *testing.T) {
	bank := &models.BloodBank{
		Name:        "Dhaka Central Blood Bank",
		Address:     "12, Green Road (Block-B), Dhanmondi",
		City:        "Dhaka",
		BloodGroups: pq.StringArray{"A+", "O-"},
	}

	keywords := SearchKeywords(bank)

	// Tokens are lowercase, punctuation-trimmed, deduped and sorted.
	require.Equal(t, []string{
		"12", "a+", "bank", "block-b", "blood", "central",
		"dhaka", "dhanmondi", "green", "o-", "road",
	}, keywords)
}

func TestSearchKeywordsDropsEmptyTokens(t *testing.T) {
	bank := &models.BloodBank{Name: "-- , ()", City: ""}
	require.Empty(t, SearchKeywords(bank))
}

func TestBankUpdateRebuildsKeywords(t *testing.T) {
	store := newBankDirectoryStub(&models.BloodBank{ID: "bank-1", Name: "Old Name"})
	svc := NewBankService(store, &auditStub{}, nil, nil)

	updated, err := svc.Update(context.Background(), "bank-1", dto.UpdateBankRequest{
		Name: "  Red Crescent Blood Center  ",
		City: "Chattogram",
	}, operatorClaims("bank-1"))
	require.NoError(t, err)
	require.Equal(t, "Red Crescent Blood Center", updated.Name)
	require.Contains(t, []string(updated.SearchKeywords), "crescent")
	require.Contains(t, []string(updated.SearchKeywords), "chattogram")
	require.NotContains(t, []string(updated.SearchKeywords), "old")
}

func TestBankUpdateAuthorization(t *testing.T) {
	store := newBankDirectoryStub(&models.BloodBank{ID: "bank-1", Name: "Bank"})
	audit := &auditStub{}
	svc := NewBankService(store, audit, nil, nil)

	_, err := svc.Update(context.Background(), "bank-1", dto.UpdateBankRequest{Name: "X"}, nil)
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)

	_, err = svc.Update(context.Background(), "bank-1", dto.UpdateBankRequest{Name: "X"}, operatorClaims("bank-2"))
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.Update(context.Background(), "bank-1", dto.UpdateBankRequest{Name: "X"}, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, audit.logs, 1)
	require.Equal(t, models.AuditActionBankUpdate, audit.logs[0].Action)
}

func TestBankUpdateValidation(t *testing.T) {
	store := newBankDirectoryStub(&models.BloodBank{ID: "bank-1", Name: "Bank"})
	svc := NewBankService(store, nil, nil, nil)

	_, err := svc.Update(context.Background(), "bank-1", dto.UpdateBankRequest{Name: ""}, operatorClaims("bank-1"))
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	_, err = svc.Update(context.Background(), "bank-1", dto.UpdateBankRequest{Name: "Bank", Email: "not-an-email"}, operatorClaims("bank-1"))
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestBankSearchDefaultsAndProjection(t *testing.T) {
	store := newBankDirectoryStub()
	store.searchResult = []models.BloodBank{{
		ID:    "bank-1",
		Name:  "City Blood Bank",
		City:  "Dhaka",
		Stock: models.StockMap{models.GroupAPos: 3},
	}}
	store.searchTotal = 41
	svc := NewBankService(store, nil, nil, nil)

	summaries, page, err := svc.Search(context.Background(), dto.BankSearchQuery{Keyword: "city"})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, "bank-1", summaries[0].ID)
	require.Equal(t, 3, summaries[0].Stock.Units(models.GroupAPos))

	require.Equal(t, 1, page.Page)
	require.Equal(t, 20, page.PageSize)
	require.Equal(t, 41, page.TotalCount)
	require.Equal(t, "city", store.lastFilter.Keyword)
}

func TestBankSearchRejectsUnknownGroup(t *testing.T) {
	svc := NewBankService(newBankDirectoryStub(), nil, nil, nil)

	_, _, err := svc.Search(context.Background(), dto.BankSearchQuery{Group: "C+"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestRebuildKeywordsCountsUpdates(t *testing.T) {
	store := newBankDirectoryStub(
		&models.BloodBank{ID: "bank-1", Name: "Alpha Bank"},
		&models.BloodBank{ID: "bank-2", Name: "Beta Bank"},
	)
	svc := NewBankService(store, nil, nil, nil)

	updated, err := svc.RebuildKeywords(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, updated)
	require.Contains(t, store.keywordCalls["bank-1"], "alpha")
	require.Contains(t, store.keywordCalls["bank-2"], "beta")
}
