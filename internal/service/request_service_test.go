package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/amar-rokto/api/internal/dto"
	"github.com/amar-rokto/api/internal/models"
	appErrors "github.com/amar-rokto/api/pkg/errors"
)

type recipientRequestStub struct {
	created []*models.RequestRecord
	byUser  map[string][]models.RequestRecord
	byBank  map[string][]models.RequestRecord
}

func (s *recipientRequestStub) Create(ctx context.Context, record *models.RequestRecord) error {
	record.ID = "req-new"
	s.created = append(s.created, record)
	return nil
}

func (s *recipientRequestStub) ListByUser(ctx context.Context, userID string) ([]models.RequestRecord, error) {
	return s.byUser[userID], nil
}

func (s *recipientRequestStub) ListByBank(ctx context.Context, bankID string) ([]models.RequestRecord, error) {
	return s.byBank[bankID], nil
}

func validBloodRequest() dto.CreateBloodRequest {
	return dto.CreateBloodRequest{
		BankID:        "bank-1",
		RequesterName: "Karim Ahmed",
		ContactNumber: "01800000000",
		BloodGroup:    "O-",
		Units:         2,
		RequiredBy:    "2026-09-20",
	}
}

func TestCreateBloodRequestIsPendingWithoutAvailabilityCheck(t *testing.T) {
	store := &recipientRequestStub{}
	// The bank holds zero O- units; the request must still be accepted and
	// sit pending until the operator decides.
	banks := newBankStoreStub(testBank("bank-1", models.StockMap{}))
	svc := NewRequestService(store, banks, nil, nil)

	record, err := svc.Create(context.Background(), "user-1", validBloodRequest())
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, record.Status)
	require.Equal(t, models.GroupONeg, record.BloodGroup)
	require.Equal(t, 2, record.Units)
	require.Equal(t, time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC), record.RequiredBy)
	require.Len(t, store.created, 1)
}

func TestCreateBloodRequestValidation(t *testing.T) {
	store := &recipientRequestStub{}
	banks := newBankStoreStub(testBank("bank-1", models.StockMap{}))
	svc := NewRequestService(store, banks, nil, nil)

	cases := map[string]func(*dto.CreateBloodRequest){
		"missing group":  func(r *dto.CreateBloodRequest) { r.BloodGroup = "" },
		"unknown group":  func(r *dto.CreateBloodRequest) { r.BloodGroup = "C+" },
		"zero units":     func(r *dto.CreateBloodRequest) { r.Units = 0 },
		"negative units": func(r *dto.CreateBloodRequest) { r.Units = -1 },
		"bad date":       func(r *dto.CreateBloodRequest) { r.RequiredBy = "20-09-2026" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validBloodRequest()
			mutate(&req)
			_, err := svc.Create(context.Background(), "user-1", req)
			var appErr *appErrors.Error
			require.ErrorAs(t, err, &appErr)
			require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
		})
	}
	require.Empty(t, store.created)
}

func TestCreateBloodRequestUnknownBank(t *testing.T) {
	svc := NewRequestService(&recipientRequestStub{}, newBankStoreStub(), nil, nil)

	_, err := svc.Create(context.Background(), "user-1", validBloodRequest())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestRequestHistoryNeverNil(t *testing.T) {
	svc := NewRequestService(&recipientRequestStub{}, newBankStoreStub(), nil, nil)

	rows, err := svc.History(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, rows)
	require.Empty(t, rows)
}

func TestRequestBankHistoryAuthorization(t *testing.T) {
	svc := NewRequestService(&recipientRequestStub{}, newBankStoreStub(), nil, nil)

	_, err := svc.BankHistory(context.Background(), "bank-1", nil)
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)

	_, err = svc.BankHistory(context.Background(), "bank-1", &models.JWTClaims{UserID: "u-1", Role: models.RoleUser})
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	rows, err := svc.BankHistory(context.Background(), "bank-1", &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})
	require.NoError(t, err)
	require.NotNil(t, rows)
}
