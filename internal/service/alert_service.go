package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/amar-rokto/api/internal/dto"
	"github.com/amar-rokto/api/internal/models"
	appErrors "github.com/amar-rokto/api/pkg/errors"
)

type alertStore interface {
	Create(ctx context.Context, alert *models.Alert) error
	GetByID(ctx context.Context, id string) (*models.Alert, error)
	ListByBank(ctx context.Context, bankID string) ([]models.Alert, error)
	ListActive(ctx context.Context, city string) ([]models.Alert, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// AlertService manages bank-published urgent-need alerts.
type AlertService struct {
	alerts    alertStore
	banks     donationBankStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAlertService constructs the service.
func NewAlertService(alerts alertStore, banks donationBankStore, validate *validator.Validate, logger *zap.Logger) *AlertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AlertService{alerts: alerts, banks: banks, validator: validate, logger: logger}
}

// Publish creates an alert owned by the acting bank. The bank's name is
// denormalized onto the alert so the public board needs no join.
func (s *AlertService) Publish(ctx context.Context, bankID string, req dto.CreateAlertRequest, actor *models.JWTClaims) (*models.Alert, error) {
	if err := s.authorize(bankID, actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid alert payload")
	}

	bank, err := s.banks.GetByID(ctx, bankID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "blood bank not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bank")
	}

	alert := &models.Alert{
		BankID:     bankID,
		BankName:   bank.Name,
		BloodGroup: models.BloodGroup(req.BloodGroup),
		City:       req.City,
		Severity:   models.AlertSeverity(req.Severity),
		Message:    req.Message,
		Active:     true,
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish alert")
	}
	return alert, nil
}

// ListForBank returns a bank's own alerts including inactive ones.
func (s *AlertService) ListForBank(ctx context.Context, bankID string, actor *models.JWTClaims) ([]models.Alert, error) {
	if err := s.authorize(bankID, actor); err != nil {
		return nil, err
	}
	rows, err := s.alerts.ListByBank(ctx, bankID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list alerts")
	}
	if rows == nil {
		rows = []models.Alert{}
	}
	return rows, nil
}

// ListActive returns the public board, optionally filtered by city.
func (s *AlertService) ListActive(ctx context.Context, city string) ([]models.Alert, error) {
	rows, err := s.alerts.ListActive(ctx, city)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list active alerts")
	}
	if rows == nil {
		rows = []models.Alert{}
	}
	return rows, nil
}

// SetActive toggles an alert on or off the public board.
func (s *AlertService) SetActive(ctx context.Context, bankID, alertID string, active bool, actor *models.JWTClaims) error {
	if err := s.authorize(bankID, actor); err != nil {
		return err
	}
	if err := s.ownAlert(ctx, bankID, alertID); err != nil {
		return err
	}
	if err := s.alerts.SetActive(ctx, alertID, active); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle alert")
	}
	return nil
}

// Delete removes an alert permanently.
func (s *AlertService) Delete(ctx context.Context, bankID, alertID string, actor *models.JWTClaims) error {
	if err := s.authorize(bankID, actor); err != nil {
		return err
	}
	if err := s.ownAlert(ctx, bankID, alertID); err != nil {
		return err
	}
	if err := s.alerts.Delete(ctx, alertID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete alert")
	}
	return nil
}

func (s *AlertService) ownAlert(ctx context.Context, bankID, alertID string) error {
	alert, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "alert not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load alert")
	}
	if alert.BankID != bankID {
		return appErrors.Clone(appErrors.ErrNotFound, "alert not found")
	}
	return nil
}

func (s *AlertService) authorize(bankID string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if actor.Role == models.RoleBloodBank && actor.UserID == bankID {
		return nil
	}
	return appErrors.ErrForbidden
}
