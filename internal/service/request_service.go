package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/amar-rokto/api/internal/dto"
	"github.com/amar-rokto/api/internal/models"
	appErrors "github.com/amar-rokto/api/pkg/errors"
)

type requestStore interface {
	Create(ctx context.Context, record *models.RequestRecord) error
	ListByUser(ctx context.Context, userID string) ([]models.RequestRecord, error)
	ListByBank(ctx context.Context, bankID string) ([]models.RequestRecord, error)
}

// RequestService handles recipient-side blood requests.
type RequestService struct {
	requests  requestStore
	banks     donationBankStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRequestService constructs the service.
func NewRequestService(requests requestStore, banks donationBankStore, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RequestService{requests: requests, banks: banks, validator: validate, logger: logger}
}

// Create submits a blood request into the bank's moderation queue.
// Availability is NOT checked here; the request may sit pending until the
// bank restocks, and the sufficiency decision happens at approval time.
func (s *RequestService) Create(ctx context.Context, userID string, req dto.CreateBloodRequest) (*models.RequestRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}

	requiredBy, err := time.Parse("2006-01-02", req.RequiredBy)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid required_by date, expected yyyy-mm-dd")
	}

	if _, err := s.banks.GetByID(ctx, req.BankID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "blood bank not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bank")
	}

	record := &models.RequestRecord{
		BankID:        req.BankID,
		UserID:        userID,
		RequesterName: req.RequesterName,
		ContactNumber: req.ContactNumber,
		BloodGroup:    models.BloodGroup(req.BloodGroup),
		Units:         req.Units,
		Status:        models.StatusPending,
		RequiredBy:    requiredBy.UTC(),
	}
	if err := s.requests.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create blood request")
	}
	return record, nil
}

// History returns a recipient's requests, latest first.
func (s *RequestService) History(ctx context.Context, userID string) ([]models.RequestRecord, error) {
	rows, err := s.requests.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request history")
	}
	if rows == nil {
		rows = []models.RequestRecord{}
	}
	return rows, nil
}

// BankHistory returns every request aimed at a bank for the operator's
// ledger view.
func (s *RequestService) BankHistory(ctx context.Context, bankID string, actor *models.JWTClaims) ([]models.RequestRecord, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin && actor.UserID != bankID {
		return nil, appErrors.ErrForbidden
	}
	rows, err := s.requests.ListByBank(ctx, bankID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bank requests")
	}
	if rows == nil {
		rows = []models.RequestRecord{}
	}
	return rows, nil
}
