package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/amar-rokto/api/internal/models"
	appErrors "github.com/amar-rokto/api/pkg/errors"
	"github.com/amar-rokto/api/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportResult carries the rendered bytes and the metadata needed for the
// Content-Disposition header.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

type exportDonationStore interface {
	ListByBank(ctx context.Context, bankID string) ([]models.DonationRecord, error)
}

type exportRequestStore interface {
	ListByBank(ctx context.Context, bankID string) ([]models.RequestRecord, error)
}

// ExportService renders a bank's moderation ledger as CSV or PDF.
type ExportService struct {
	donations exportDonationStore
	requests  exportRequestStore
	banks     donationBankStore
	logger    *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(donations exportDonationStore, requests exportRequestStore, banks donationBankStore, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		donations: donations,
		requests:  requests,
		banks:     banks,
		logger:    logger,
	}
}

// Donations exports a bank's donation ledger.
func (s *ExportService) Donations(ctx context.Context, bankID string, format ExportFormat, actor *models.JWTClaims) (*ExportResult, error) {
	if err := s.authorize(bankID, actor); err != nil {
		return nil, err
	}
	rows, err := s.donations.ListByBank(ctx, bankID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load donations")
	}

	report := export.Report{
		Title:   "Amar Rokto donations report",
		Columns: []string{"Donor", "Contact", "Group", "Units", "Status", "Scheduled"},
	}
	for i := range rows {
		record := &rows[i]
		report.AddRow(
			record.DonorName,
			record.ContactNumber,
			groupOrEmpty(record.BloodGroup),
			strconv.Itoa(record.DonatedUnits()),
			string(record.Status),
			record.ScheduledAt.Format("2006-01-02 15:04"),
		)
	}
	return s.render(report, "donations", bankID, format)
}

// Requests exports a bank's blood request ledger.
func (s *ExportService) Requests(ctx context.Context, bankID string, format ExportFormat, actor *models.JWTClaims) (*ExportResult, error) {
	if err := s.authorize(bankID, actor); err != nil {
		return nil, err
	}
	rows, err := s.requests.ListByBank(ctx, bankID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requests")
	}

	report := export.Report{
		Title:   "Amar Rokto blood-requests report",
		Columns: []string{"Requester", "Contact", "Group", "Units", "Status", "Required By"},
	}
	for i := range rows {
		record := &rows[i]
		report.AddRow(
			record.RequesterName,
			record.ContactNumber,
			string(record.BloodGroup),
			strconv.Itoa(record.Units),
			string(record.Status),
			record.RequiredBy.Format("2006-01-02"),
		)
	}
	return s.render(report, "blood-requests", bankID, format)
}

// Stock exports the bank's current stock map.
func (s *ExportService) Stock(ctx context.Context, bankID string, format ExportFormat, actor *models.JWTClaims) (*ExportResult, error) {
	if err := s.authorize(bankID, actor); err != nil {
		return nil, err
	}
	bank, err := s.banks.GetByID(ctx, bankID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "blood bank not found")
	}

	report := export.Report{
		Title:   fmt.Sprintf("%s stock report", bank.Name),
		Columns: []string{"Group", "Units"},
	}
	for _, group := range models.BloodGroups {
		report.AddRow(string(group), strconv.Itoa(bank.Stock.Units(group)))
	}
	return s.render(report, "stock", bankID, format)
}

func (s *ExportService) render(report export.Report, kind, bankID string, format ExportFormat) (*ExportResult, error) {
	switch format {
	case FormatCSV:
		data, err := export.RenderCSV(report)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("%s-%s.csv", kind, bankID),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case FormatPDF:
		data, err := export.RenderPDF(report)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("%s-%s.pdf", kind, bankID),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func (s *ExportService) authorize(bankID string, actor *models.JWTClaims) error {
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
