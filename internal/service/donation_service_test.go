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

type donorScheduleStub struct {
	created []*models.DonationRecord
	byUser  map[string][]models.DonationRecord
	byBank  map[string][]models.DonationRecord
}

func (s *donorScheduleStub) Create(ctx context.Context, record *models.DonationRecord) error {
	record.ID = "don-new"
	s.created = append(s.created, record)
	return nil
}

func (s *donorScheduleStub) ListByUser(ctx context.Context, userID string) ([]models.DonationRecord, error) {
	return s.byUser[userID], nil
}

func (s *donorScheduleStub) ListByBank(ctx context.Context, bankID string) ([]models.DonationRecord, error) {
	return s.byBank[bankID], nil
}

func validSchedule() dto.ScheduleDonationRequest {
	return dto.ScheduleDonationRequest{
		BankID:        "bank-1",
		DonorName:     "Rahim Uddin",
		ContactNumber: "01700000000",
		Date:          "2026-09-15",
		Time:          "10:30",
	}
}

func TestScheduleCreatesPendingRecord(t *testing.T) {
	store := &donorScheduleStub{}
	banks := newBankStoreStub(testBank("bank-1", models.StockMap{}))
	svc := NewDonationService(store, banks, nil, nil)

	record, err := svc.Schedule(context.Background(), "user-1", validSchedule())
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, record.Status)
	require.NotNil(t, record.UserID)
	require.Equal(t, "user-1", *record.UserID)
	require.Nil(t, record.BloodGroup)
	require.Nil(t, record.Units)
	require.Equal(t, time.Date(2026, 9, 15, 10, 30, 0, 0, time.UTC), record.ScheduledAt)
	require.Len(t, store.created, 1)
}

func TestScheduleGuestHasNoUserID(t *testing.T) {
	store := &donorScheduleStub{}
	banks := newBankStoreStub(testBank("bank-1", models.StockMap{}))
	svc := NewDonationService(store, banks, nil, nil)

	record, err := svc.Schedule(context.Background(), "", validSchedule())
	require.NoError(t, err)
	require.Nil(t, record.UserID)
}

func TestScheduleRejectsBadAppointment(t *testing.T) {
	store := &donorScheduleStub{}
	banks := newBankStoreStub(testBank("bank-1", models.StockMap{}))
	svc := NewDonationService(store, banks, nil, nil)

	req := validSchedule()
	req.Time = "25:99"
	_, err := svc.Schedule(context.Background(), "user-1", req)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	require.Empty(t, store.created)
}

func TestScheduleUnknownBank(t *testing.T) {
	svc := NewDonationService(&donorScheduleStub{}, newBankStoreStub(), nil, nil)

	_, err := svc.Schedule(context.Background(), "user-1", validSchedule())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestDonorStats(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-48 * time.Hour)
	soon := now.Add(24 * time.Hour)
	later := now.Add(72 * time.Hour)

	store := &donorScheduleStub{byUser: map[string][]models.DonationRecord{
		"user-1": {
			{ID: "d1", Status: models.StatusApproved, ScheduledAt: past},
			{ID: "d2", Status: models.StatusPending, ScheduledAt: later},
			{ID: "d3", Status: models.StatusPending, ScheduledAt: soon},
			{ID: "d4", Status: models.StatusRejected, ScheduledAt: past},
		},
	}}
	svc := NewDonationService(store, newBankStoreStub(), nil, nil)

	stats, err := svc.Stats(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, 4, stats.TotalScheduled)
	require.Equal(t, 1, stats.ApprovedCount)
	require.Equal(t, 2, stats.PendingCount)
	require.NotNil(t, stats.LastApprovedAt)
	require.True(t, stats.LastApprovedAt.Equal(past))
	require.NotNil(t, stats.NextUpcoming)
	require.Equal(t, "d3", stats.NextUpcoming.ID)
}

func TestDonationBankHistoryAuthorization(t *testing.T) {
	store := &donorScheduleStub{byBank: map[string][]models.DonationRecord{}}
	svc := NewDonationService(store, newBankStoreStub(), nil, nil)

	_, err := svc.BankHistory(context.Background(), "bank-1", nil)
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)

	_, err = svc.BankHistory(context.Background(), "bank-1", operatorClaims("bank-2"))
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	rows, err := svc.BankHistory(context.Background(), "bank-1", operatorClaims("bank-1"))
	require.NoError(t, err)
	require.NotNil(t, rows)
	require.Empty(t, rows)
}
