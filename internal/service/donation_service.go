package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/amar-rokto/api/internal/dto"
	"github.com/amar-rokto/api/internal/models"
	appErrors "github.com/amar-rokto/api/pkg/errors"
)

type donationStore interface {
	Create(ctx context.Context, record *models.DonationRecord) error
	ListByUser(ctx context.Context, userID string) ([]models.DonationRecord, error)
	ListByBank(ctx context.Context, bankID string) ([]models.DonationRecord, error)
}

type donationBankStore interface {
	GetByID(ctx context.Context, id string) (*models.BloodBank, error)
}

// DonationService handles donor-side scheduling and history.
type DonationService struct {
	donations donationStore
	banks     donationBankStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDonationService constructs the service.
func NewDonationService(donations donationStore, banks donationBankStore, validate *validator.Validate, logger *zap.Logger) *DonationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DonationService{donations: donations, banks: banks, validator: validate, logger: logger}
}

// Schedule books a donation appointment. The record enters the bank's
// moderation queue in pending status.
func (s *DonationService) Schedule(ctx context.Context, userID string, req dto.ScheduleDonationRequest) (*models.DonationRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid donation payload")
	}

	scheduledAt, err := parseAppointment(req.Date, req.Time)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	if _, err := s.banks.GetByID(ctx, req.BankID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "blood bank not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bank")
	}

	record := &models.DonationRecord{
		BankID:        req.BankID,
		DonorName:     req.DonorName,
		ContactNumber: req.ContactNumber,
		Status:        models.StatusPending,
		ScheduledAt:   scheduledAt,
	}
	if userID != "" {
		record.UserID = &userID
	}
	if req.BloodGroup != "" {
		group := models.BloodGroup(req.BloodGroup)
		record.BloodGroup = &group
	}
	if req.Units > 0 {
		units := req.Units
		record.Units = &units
	}

	if err := s.donations.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to schedule donation")
	}
	return record, nil
}

// History returns a donor's donation records, latest first.
func (s *DonationService) History(ctx context.Context, userID string) ([]models.DonationRecord, error) {
	rows, err := s.donations.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load donation history")
	}
	if rows == nil {
		rows = []models.DonationRecord{}
	}
	return rows, nil
}

// BankHistory returns every record for a bank regardless of status, for the
// operator's ledger view.
func (s *DonationService) BankHistory(ctx context.Context, bankID string, actor *models.JWTClaims) ([]models.DonationRecord, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin && actor.UserID != bankID {
		return nil, appErrors.ErrForbidden
	}
	rows, err := s.donations.ListByBank(ctx, bankID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bank donations")
	}
	if rows == nil {
		rows = []models.DonationRecord{}
	}
	return rows, nil
}

// Stats computes the donor dashboard figures from the full history.
func (s *DonationService) Stats(ctx context.Context, userID string) (*dto.DonorStats, error) {
	rows, err := s.donations.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load donation history")
	}

	stats := &dto.DonorStats{TotalScheduled: len(rows)}
	now := time.Now().UTC()
	for i := range rows {
		record := rows[i]
		switch record.Status {
		case models.StatusApproved:
			stats.ApprovedCount++
			if stats.LastApprovedAt == nil || record.ScheduledAt.After(*stats.LastApprovedAt) {
				ts := record.ScheduledAt
				stats.LastApprovedAt = &ts
			}
		case models.StatusPending:
			stats.PendingCount++
			if record.ScheduledAt.After(now) {
				if stats.NextUpcoming == nil || record.ScheduledAt.Before(stats.NextUpcoming.ScheduledAt) {
					upcoming := record
					stats.NextUpcoming = &upcoming
				}
			}
		}
	}
	return stats, nil
}

// parseAppointment combines the date and time fields into a UTC timestamp.
func parseAppointment(date, clock string) (time.Time, error) {
	ts, err := time.Parse("2006-01-02 15:04", fmt.Sprintf("%s %s", date, clock))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid appointment, expected date yyyy-mm-dd and time HH:MM")
	}
	return ts.UTC(), nil
}
