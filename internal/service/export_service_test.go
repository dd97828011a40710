package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/amar-rokto/api/internal/models"
	appErrors "github.com/amar-rokto/api/pkg/errors"
)

func exportFixtures() (*donorScheduleStub, *recipientRequestStub, *bankStoreStub) {
	donations := &donorScheduleStub{byBank: map[string][]models.DonationRecord{
		"bank-1": {{
			DonorName:     "Rahim Uddin",
			ContactNumber: "017",
			BloodGroup:    groupPtr(models.GroupAPos),
			Units:         intPtr(2),
			Status:        models.StatusApproved,
			ScheduledAt:   time.Date(2026, 9, 15, 10, 30, 0, 0, time.UTC),
		}},
	}}
	requests := &recipientRequestStub{byBank: map[string][]models.RequestRecord{
		"bank-1": {{
			RequesterName: "Karim Ahmed",
			ContactNumber: "018",
			BloodGroup:    models.GroupONeg,
			Units:         3,
			Status:        models.StatusRejected,
			RequiredBy:    time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC),
		}},
	}}
	banks := newBankStoreStub(testBank("bank-1", models.StockMap{models.GroupAPos: 4}))
	return donations, requests, banks
}

func TestExportDonationsCSV(t *testing.T) {
	donations, requests, banks := exportFixtures()
	svc := NewExportService(donations, requests, banks, nil)

	result, err := svc.Donations(context.Background(), "bank-1", FormatCSV, operatorClaims("bank-1"))
	require.NoError(t, err)
	require.Equal(t, "donations-bank-1.csv", result.FileName)
	require.Equal(t, "text/csv", result.ContentType)

	body := string(result.Data)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "Donor,Contact,Group,Units,Status,Scheduled", lines[0])
	require.Contains(t, lines[1], "Rahim Uddin")
	require.Contains(t, lines[1], "A+")
	require.Contains(t, lines[1], "2026-09-15 10:30")
}

func TestExportRequestsCSV(t *testing.T) {
	donations, requests, banks := exportFixtures()
	svc := NewExportService(donations, requests, banks, nil)

	result, err := svc.Requests(context.Background(), "bank-1", FormatCSV, operatorClaims("bank-1"))
	require.NoError(t, err)
	require.Contains(t, string(result.Data), "Karim Ahmed")
	require.Contains(t, string(result.Data), "rejected")
}

func TestExportStockPDF(t *testing.T) {
	donations, requests, banks := exportFixtures()
	svc := NewExportService(donations, requests, banks, nil)

	result, err := svc.Stock(context.Background(), "bank-1", FormatPDF, operatorClaims("bank-1"))
	require.NoError(t, err)
	require.Equal(t, "stock-bank-1.pdf", result.FileName)
	require.Equal(t, "application/pdf", result.ContentType)
	require.True(t, strings.HasPrefix(string(result.Data), "%PDF"))
}

func TestExportUnknownFormat(t *testing.T) {
	donations, requests, banks := exportFixtures()
	svc := NewExportService(donations, requests, banks, nil)

	_, err := svc.Stock(context.Background(), "bank-1", ExportFormat("xlsx"), operatorClaims("bank-1"))
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestExportAuthorization(t *testing.T) {
	donations, requests, banks := exportFixtures()
	svc := NewExportService(donations, requests, banks, nil)

	_, err := svc.Donations(context.Background(), "bank-1", FormatCSV, nil)
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)

	_, err = svc.Donations(context.Background(), "bank-1", FormatCSV, operatorClaims("bank-2"))
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.Donations(context.Background(), "bank-1", FormatCSV, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})
	require.NoError(t, err)
}
