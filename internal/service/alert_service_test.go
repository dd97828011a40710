package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amar-rokto/api/internal/dto"
	"github.com/amar-rokto/api/internal/models"
	appErrors "github.com/amar-rokto/api/pkg/errors"
)

type alertStoreStub struct {
	alerts  map[string]*models.Alert
	deleted []string
}

func newAlertStoreStub(alerts ...*models.Alert) *alertStoreStub {
	s := &alertStoreStub{alerts: make(map[string]*models.Alert)}
	for _, a := range alerts {
		s.alerts[a.ID] = a
	}
	return s
}

func (s *alertStoreStub) Create(ctx context.Context, alert *models.Alert) error {
	alert.ID = "alert-new"
	s.alerts[alert.ID] = alert
	return nil
}

func (s *alertStoreStub) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	if a, ok := s.alerts[id]; ok {
		copy := *a
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *alertStoreStub) ListByBank(ctx context.Context, bankID string) ([]models.Alert, error) {
	var out []models.Alert
	for _, a := range s.alerts {
		if a.BankID == bankID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *alertStoreStub) ListActive(ctx context.Context, city string) ([]models.Alert, error) {
	var out []models.Alert
	for _, a := range s.alerts {
		if !a.Active {
			continue
		}
		if city != "" && a.City != city {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (s *alertStoreStub) SetActive(ctx context.Context, id string, active bool) error {
	a, ok := s.alerts[id]
	if !ok {
		return sql.ErrNoRows
	}
	a.Active = active
	return nil
}

func (s *alertStoreStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.alerts[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.alerts, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func validAlert() dto.CreateAlertRequest {
	return dto.CreateAlertRequest{
		BloodGroup: "O-",
		City:       "Dhaka",
		Severity:   "emergency",
		Message:    "Urgent need for O- units",
	}
}

func TestPublishAlertDenormalizesBankName(t *testing.T) {
	store := newAlertStoreStub()
	banks := newBankStoreStub(testBank("bank-1", models.StockMap{}))
	svc := NewAlertService(store, banks, nil, nil)

	alert, err := svc.Publish(context.Background(), "bank-1", validAlert(), operatorClaims("bank-1"))
	require.NoError(t, err)
	require.Equal(t, "City Blood Bank", alert.BankName)
	require.Equal(t, models.SeverityEmergency, alert.Severity)
	require.True(t, alert.Active)
}

func TestPublishAlertValidation(t *testing.T) {
	svc := NewAlertService(newAlertStoreStub(), newBankStoreStub(testBank("bank-1", models.StockMap{})), nil, nil)

	req := validAlert()
	req.Severity = "critical"
	_, err := svc.Publish(context.Background(), "bank-1", req, operatorClaims("bank-1"))
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAlertOwnershipGuard(t *testing.T) {
	store := newAlertStoreStub(&models.Alert{ID: "alert-1", BankID: "bank-2", Active: true})
	svc := NewAlertService(store, newBankStoreStub(), nil, nil)

	// Another bank's alert is indistinguishable from a missing one.
	err := svc.SetActive(context.Background(), "bank-1", "alert-1", false, operatorClaims("bank-1"))
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)

	err = svc.Delete(context.Background(), "bank-1", "alert-1", operatorClaims("bank-1"))
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	require.True(t, store.alerts["alert-1"].Active)
}

func TestAlertToggleAndDelete(t *testing.T) {
	store := newAlertStoreStub(&models.Alert{ID: "alert-1", BankID: "bank-1", Active: true})
	svc := NewAlertService(store, newBankStoreStub(), nil, nil)

	require.NoError(t, svc.SetActive(context.Background(), "bank-1", "alert-1", false, operatorClaims("bank-1")))
	require.False(t, store.alerts["alert-1"].Active)

	require.NoError(t, svc.Delete(context.Background(), "bank-1", "alert-1", operatorClaims("bank-1")))
	require.Equal(t, []string{"alert-1"}, store.deleted)
}

func TestListActiveFiltersByCity(t *testing.T) {
	store := newAlertStoreStub(
		&models.Alert{ID: "a1", BankID: "bank-1", City: "Dhaka", Active: true},
		&models.Alert{ID: "a2", BankID: "bank-1", City: "Khulna", Active: true},
		&models.Alert{ID: "a3", BankID: "bank-1", City: "Dhaka", Active: false},
	)
	svc := NewAlertService(store, newBankStoreStub(), nil, nil)

	alerts, err := svc.ListActive(context.Background(), "Dhaka")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, "a1", alerts[0].ID)

	all, err := svc.ListActive(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)
}
