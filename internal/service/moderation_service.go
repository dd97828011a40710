package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/amar-rokto/api/internal/dto"
	"github.com/amar-rokto/api/internal/models"
	appErrors "github.com/amar-rokto/api/pkg/errors"
)

type moderationBankStore interface {
	GetByID(ctx context.Context, id string) (*models.BloodBank, error)
	UpdateStockVersioned(ctx context.Context, id string, stock models.StockMap, version int) error
}

type moderationDonationStore interface {
	GetByID(ctx context.Context, id string) (*models.DonationRecord, error)
	ListPendingByBank(ctx context.Context, bankID string) ([]models.DonationRecord, error)
	UpdateStatusIfPending(ctx context.Context, id string, status models.RecordStatus) error
	ResetStatusToPending(ctx context.Context, id string) error
}

type moderationRequestStore interface {
	GetByID(ctx context.Context, id string) (*models.RequestRecord, error)
	ListPendingByBank(ctx context.Context, bankID string) ([]models.RequestRecord, error)
	UpdateStatusIfPending(ctx context.Context, id string, status models.RecordStatus) error
	ResetStatusToPending(ctx context.Context, id string) error
}

type notificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ResolvedEvent describes a completed moderation decision for the email
// side channel.
type ResolvedEvent struct {
	Kind       models.RecordKind
	Status     models.RecordStatus
	RecordID   string
	UserID     string
	BankID     string
	BankName   string
	BankEmail  string
	BloodGroup string
	Units      int
	Date       time.Time
}

// ModerationNotifier receives resolved events. Delivery is best-effort;
// failures must not surface into the moderation flow.
type ModerationNotifier interface {
	RecordResolved(ctx context.Context, event ResolvedEvent)
}

// PendingFeed pushes refreshed pending snapshots to subscribed operators.
type PendingFeed interface {
	PublishPending(bankID string, snapshot dto.PendingSnapshot)
}

// DecisionRecorder counts moderation outcomes for metrics.
type DecisionRecorder interface {
	RecordDecision(kind, outcome string)
}

// DashboardInvalidator drops cached dashboard figures. Wired to Redis in
// production; stock writes call it so the admin boards catch up.
type DashboardInvalidator interface {
	InvalidateDashboards(ctx context.Context)
}

// ModerationService resolves pending donation and request records for a
// blood bank while keeping the stock map consistent.
//
// The stock map is the only shared mutable resource. Writes go through an
// optimistic-concurrency version token on the bank row and are retried a
// bounded number of times, so two operators racing on the same group can
// no longer both pass the sufficiency check and under-count the inventory.
type ModerationService struct {
	banks         moderationBankStore
	donations     moderationDonationStore
	requests      moderationRequestStore
	notifications notificationStore
	audit         auditLogger
	notifier      ModerationNotifier
	feed          PendingFeed
	decisions     DecisionRecorder
	dashboards    DashboardInvalidator
	logger        *zap.Logger
	stockRetries  int
}

// ModerationServiceOption configures the service.
type ModerationServiceOption func(*ModerationService)

// WithModerationNotifier wires the email side channel.
func WithModerationNotifier(n ModerationNotifier) ModerationServiceOption {
	return func(s *ModerationService) { s.notifier = n }
}

// WithPendingFeed wires the live websocket feed.
func WithPendingFeed(f PendingFeed) ModerationServiceOption {
	return func(s *ModerationService) { s.feed = f }
}

// WithDecisionRecorder wires moderation outcome metrics.
func WithDecisionRecorder(d DecisionRecorder) ModerationServiceOption {
	return func(s *ModerationService) { s.decisions = d }
}

// WithDashboardInvalidator wires cache invalidation for stock writes.
func WithDashboardInvalidator(inv DashboardInvalidator) ModerationServiceOption {
	return func(s *ModerationService) { s.dashboards = inv }
}

// WithStockRetries overrides the optimistic-concurrency retry bound.
func WithStockRetries(n int) ModerationServiceOption {
	return func(s *ModerationService) {
		if n > 0 {
			s.stockRetries = n
		}
	}
}

// NewModerationService constructs the service with defaults.
func NewModerationService(
	banks moderationBankStore,
	donations moderationDonationStore,
	requests moderationRequestStore,
	notifications notificationStore,
	audit auditLogger,
	logger *zap.Logger,
	opts ...ModerationServiceOption,
) *ModerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ModerationService{
		banks:         banks,
		donations:     donations,
		requests:      requests,
		notifications: notifications,
		audit:         audit,
		logger:        logger,
		stockRetries:  3,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// ListPending returns the bank's unresolved donations and requests.
func (s *ModerationService) ListPending(ctx context.Context, bankID string, actor *models.JWTClaims) (*dto.PendingSnapshot, error) {
	if err := s.authorize(bankID, actor); err != nil {
		return nil, err
	}
	return s.pendingSnapshot(ctx, bankID)
}

// Approve resolves a pending record to approved, crediting or debiting the
// bank's stock. A request approval is refused with INSUFFICIENT_STOCK when
// the bank cannot cover the asked units; nothing is written in that case.
func (s *ModerationService) Approve(ctx context.Context, bankID, recordID string, kind models.RecordKind, actor *models.JWTClaims) (*dto.ModerationResult, error) {
	if err := s.authorize(bankID, actor); err != nil {
		return nil, err
	}
	switch kind {
	case models.KindDonation:
		return s.approveDonation(ctx, bankID, recordID, actor)
	case models.KindRequest:
		return s.approveRequest(ctx, bankID, recordID, actor)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported record kind: %s", kind))
	}
}

// Reject resolves a pending record to rejected. Stock is never touched.
func (s *ModerationService) Reject(ctx context.Context, bankID, recordID string, kind models.RecordKind, actor *models.JWTClaims) (*dto.ModerationResult, error) {
	if err := s.authorize(bankID, actor); err != nil {
		return nil, err
	}

	bank, err := s.loadBank(ctx, bankID)
	if err != nil {
		return nil, err
	}

	switch kind {
	case models.KindDonation:
		record, err := s.loadDonation(ctx, bankID, recordID)
		if err != nil {
			return nil, err
		}
		if err := s.claimDonation(ctx, record.ID, models.StatusRejected); err != nil {
			return nil, err
		}
		s.finishDonation(ctx, bank, record, models.StatusRejected, actor)
		return s.result(record.ID, models.KindDonation, models.StatusRejected, record.BloodGroup, record.DonatedUnits(), bank.Stock), nil
	case models.KindRequest:
		record, err := s.loadRequest(ctx, bankID, recordID)
		if err != nil {
			return nil, err
		}
		if err := s.claimRequest(ctx, record.ID, models.StatusRejected); err != nil {
			return nil, err
		}
		s.finishRequest(ctx, bank, record, models.StatusRejected, actor)
		group := record.BloodGroup
		return s.result(record.ID, models.KindRequest, models.StatusRejected, &group, record.Units, bank.Stock), nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported record kind: %s", kind))
	}
}

// AdjustStock is the manual operator +/- control. The result is clamped at
// zero and written through the same versioned path as moderation.
func (s *ModerationService) AdjustStock(ctx context.Context, bankID string, req dto.AdjustStockRequest, actor *models.JWTClaims) (models.StockMap, error) {
	if err := s.authorize(bankID, actor); err != nil {
		return nil, err
	}
	if !req.Group.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown blood group: %s", req.Group))
	}

	var updated models.StockMap
	err := s.mutateStock(ctx, bankID, func(stock models.StockMap) (models.StockMap, error) {
		next := stock.Clone()
		units := next.Units(req.Group) + req.Delta
		if units < 0 {
			units = 0
		}
		next[req.Group] = units
		updated = next
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	s.emitAudit(ctx, actor, models.AuditActionStockAdjust, "blood_bank", bankID, map[string]interface{}{
		"group": req.Group,
		"delta": req.Delta,
	})
	return updated, nil
}

func (s *ModerationService) approveDonation(ctx context.Context, bankID, recordID string, actor *models.JWTClaims) (*dto.ModerationResult, error) {
	record, err := s.loadDonation(ctx, bankID, recordID)
	if err != nil {
		return nil, err
	}
	if record.BloodGroup == nil || !record.BloodGroup.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "donation has no valid blood group recorded")
	}
	bank, err := s.loadBank(ctx, bankID)
	if err != nil {
		return nil, err
	}

	if err := s.claimDonation(ctx, record.ID, models.StatusApproved); err != nil {
		return nil, err
	}

	group := *record.BloodGroup
	units := record.DonatedUnits()
	err = s.mutateStock(ctx, bankID, func(stock models.StockMap) (models.StockMap, error) {
		next := stock.Clone()
		next[group] = next.Units(group) + units
		return next, nil
	})
	if err != nil {
		// The claim already happened; unwind it so the record stays pending
		// rather than approved-without-credit.
		if resetErr := s.donations.ResetStatusToPending(ctx, record.ID); resetErr != nil {
			s.logger.Error("failed to unwind donation claim", zap.String("record_id", record.ID), zap.Error(resetErr))
		}
		return nil, err
	}

	bank, refreshErr := s.banks.GetByID(ctx, bankID)
	if refreshErr != nil {
		return nil, appErrors.Wrap(refreshErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload bank")
	}
	s.finishDonation(ctx, bank, record, models.StatusApproved, actor)
	return s.result(record.ID, models.KindDonation, models.StatusApproved, record.BloodGroup, units, bank.Stock), nil
}

func (s *ModerationService) approveRequest(ctx context.Context, bankID, recordID string, actor *models.JWTClaims) (*dto.ModerationResult, error) {
	record, err := s.loadRequest(ctx, bankID, recordID)
	if err != nil {
		return nil, err
	}
	if !record.BloodGroup.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown blood group: %s", record.BloodGroup))
	}
	if record.Units <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "requested units must be positive")
	}
	bank, err := s.loadBank(ctx, bankID)
	if err != nil {
		return nil, err
	}

	// Cheap pre-check so the common shortage case refuses before any write.
	if available := bank.Stock.Units(record.BloodGroup); available < record.Units {
		return nil, insufficientStock(record.BloodGroup, record.Units, available)
	}

	if err := s.claimRequest(ctx, record.ID, models.StatusApproved); err != nil {
		return nil, err
	}

	group := record.BloodGroup
	err = s.mutateStock(ctx, bankID, func(stock models.StockMap) (models.StockMap, error) {
		available := stock.Units(group)
		if available < record.Units {
			return nil, insufficientStock(group, record.Units, available)
		}
		next := stock.Clone()
		next[group] = available - record.Units
		return next, nil
	})
	if err != nil {
		if resetErr := s.requests.ResetStatusToPending(ctx, record.ID); resetErr != nil {
			s.logger.Error("failed to unwind request claim", zap.String("record_id", record.ID), zap.Error(resetErr))
		}
		return nil, err
	}

	bank, refreshErr := s.banks.GetByID(ctx, bankID)
	if refreshErr != nil {
		return nil, appErrors.Wrap(refreshErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload bank")
	}
	s.finishRequest(ctx, bank, record, models.StatusApproved, actor)
	return s.result(record.ID, models.KindRequest, models.StatusApproved, &group, record.Units, bank.Stock), nil
}

// mutateStock applies fn to the bank's stock map under the optimistic
// version token, re-reading and retrying on conflict.
func (s *ModerationService) mutateStock(ctx context.Context, bankID string, fn func(models.StockMap) (models.StockMap, error)) error {
	for attempt := 0; attempt < s.stockRetries; attempt++ {
		bank, err := s.banks.GetByID(ctx, bankID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "blood bank not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bank")
		}
		next, err := fn(bank.Stock)
		if err != nil {
			return err
		}
		err = s.banks.UpdateStockVersioned(ctx, bankID, next, bank.Version)
		if err == nil {
			if s.dashboards != nil {
				s.dashboards.InvalidateDashboards(ctx)
			}
			return nil
		}
		if errors.Is(err, sql.ErrNoRows) {
			// lost the race, re-read and retry
			if recorder, ok := s.decisions.(interface{ RecordStockConflict() }); ok {
				recorder.RecordStockConflict()
			}
			continue
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write stock")
	}
	return appErrors.Clone(appErrors.ErrConflict, "stock is being updated concurrently, try again")
}

func (s *ModerationService) loadBank(ctx context.Context, bankID string) (*models.BloodBank, error) {
	bank, err := s.banks.GetByID(ctx, bankID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "blood bank not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bank")
	}
	return bank, nil
}

func (s *ModerationService) loadDonation(ctx context.Context, bankID, recordID string) (*models.DonationRecord, error) {
	record, err := s.donations.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "donation record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load donation")
	}
	if record.BankID != bankID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "donation record not found")
	}
	if record.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrAlreadyResolved, fmt.Sprintf("donation already %s", record.Status))
	}
	return record, nil
}

func (s *ModerationService) loadRequest(ctx context.Context, bankID, recordID string) (*models.RequestRecord, error) {
	record, err := s.requests.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "blood request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	if record.BankID != bankID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "blood request not found")
	}
	if record.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrAlreadyResolved, fmt.Sprintf("request already %s", record.Status))
	}
	return record, nil
}

func (s *ModerationService) claimDonation(ctx context.Context, id string, status models.RecordStatus) error {
	if err := s.donations.UpdateStatusIfPending(ctx, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrAlreadyResolved, "donation already resolved")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update donation status")
	}
	return nil
}

func (s *ModerationService) claimRequest(ctx context.Context, id string, status models.RecordStatus) error {
	if err := s.requests.UpdateStatusIfPending(ctx, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrAlreadyResolved, "request already resolved")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request status")
	}
	return nil
}

// finishDonation runs the post-transition side effects: one notification
// for the donor, audit trail, email event, metrics, live feed refresh.
// All are best-effort except the notification, whose failure is logged
// loudly since exactly one is expected per transition.
func (s *ModerationService) finishDonation(ctx context.Context, bank *models.BloodBank, record *models.DonationRecord, status models.RecordStatus, actor *models.JWTClaims) {
	if record.UserID != nil && *record.UserID != "" {
		n := &models.Notification{
			UserID:   *record.UserID,
			Kind:     models.KindDonation,
			RecordID: record.ID,
			Status:   status,
			Message:  fmt.Sprintf("Your donation with %s is %s.", bank.Name, status),
		}
		if err := s.notifications.Create(ctx, n); err != nil {
			s.logger.Error("failed to create donation notification", zap.String("record_id", record.ID), zap.Error(err))
		}
	}

	s.emitAudit(ctx, actor, auditActionFor(status), "donation_schedule", record.ID, map[string]interface{}{
		"status": status,
		"bank":   bank.ID,
	})
	s.recordDecision(models.KindDonation, status)
	s.emitResolved(ctx, ResolvedEvent{
		Kind:       models.KindDonation,
		Status:     status,
		RecordID:   record.ID,
		UserID:     stringOrEmpty(record.UserID),
		BankID:     bank.ID,
		BankName:   bank.Name,
		BankEmail:  bank.Email,
		BloodGroup: groupOrEmpty(record.BloodGroup),
		Units:      record.DonatedUnits(),
		Date:       record.ScheduledAt,
	})
	s.publishPending(ctx, bank.ID)
}

func (s *ModerationService) finishRequest(ctx context.Context, bank *models.BloodBank, record *models.RequestRecord, status models.RecordStatus, actor *models.JWTClaims) {
	if record.UserID != "" {
		n := &models.Notification{
			UserID:   record.UserID,
			Kind:     models.KindRequest,
			RecordID: record.ID,
			Status:   status,
			Message:  fmt.Sprintf("Your blood request at %s has been %s.", bank.Name, status),
		}
		if err := s.notifications.Create(ctx, n); err != nil {
			s.logger.Error("failed to create request notification", zap.String("record_id", record.ID), zap.Error(err))
		}
	}

	s.emitAudit(ctx, actor, auditActionFor(status), "blood_request", record.ID, map[string]interface{}{
		"status": status,
		"bank":   bank.ID,
	})
	s.recordDecision(models.KindRequest, status)
	s.emitResolved(ctx, ResolvedEvent{
		Kind:       models.KindRequest,
		Status:     status,
		RecordID:   record.ID,
		UserID:     record.UserID,
		BankID:     bank.ID,
		BankName:   bank.Name,
		BankEmail:  bank.Email,
		BloodGroup: string(record.BloodGroup),
		Units:      record.Units,
		Date:       record.RequiredBy,
	})
	s.publishPending(ctx, bank.ID)
}

func (s *ModerationService) pendingSnapshot(ctx context.Context, bankID string) (*dto.PendingSnapshot, error) {
	donations, err := s.donations.ListPendingByBank(ctx, bankID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending donations")
	}
	requests, err := s.requests.ListPendingByBank(ctx, bankID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending requests")
	}
	if donations == nil {
		donations = []models.DonationRecord{}
	}
	if requests == nil {
		requests = []models.RequestRecord{}
	}
	return &dto.PendingSnapshot{Donations: donations, Requests: requests}, nil
}

func (s *ModerationService) publishPending(ctx context.Context, bankID string) {
	if s.feed == nil {
		return
	}
	snapshot, err := s.pendingSnapshot(ctx, bankID)
	if err != nil {
		s.logger.Warn("failed to refresh pending feed", zap.String("bank_id", bankID), zap.Error(err))
		return
	}
	s.feed.PublishPending(bankID, *snapshot)
}

func (s *ModerationService) emitResolved(ctx context.Context, event ResolvedEvent) {
	if s.notifier == nil {
		return
	}
	s.notifier.RecordResolved(ctx, event)
}

func (s *ModerationService) recordDecision(kind models.RecordKind, status models.RecordStatus) {
	if s.decisions == nil {
		return
	}
	s.decisions.RecordDecision(string(kind), string(status))
}

func (s *ModerationService) emitAudit(ctx context.Context, actor *models.JWTClaims, action, resource, resourceID string, values map[string]interface{}) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		Action:     action,
		Resource:   resource,
		ResourceID: &resourceID,
		IPAddress:  "system",
		UserAgent:  "moderation-service",
	}
	if actor != nil {
		userID := actor.UserID
		log.UserID = &userID
	}
	if values != nil {
		if raw, err := json.Marshal(values); err == nil {
			log.NewValues = raw
		}
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}

func (s *ModerationService) authorize(bankID string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleBloodBank:
		if actor.UserID == bankID {
			return nil
		}
	}
	return appErrors.ErrForbidden
}

func (s *ModerationService) result(recordID string, kind models.RecordKind, status models.RecordStatus, group *models.BloodGroup, units int, stock models.StockMap) *dto.ModerationResult {
	return &dto.ModerationResult{
		RecordID:   recordID,
		Kind:       kind,
		Status:     status,
		BloodGroup: group,
		Units:      units,
		Stock:      stock,
		ResolvedAt: time.Now().UTC(),
	}
}

func insufficientStock(group models.BloodGroup, needed, available int) *appErrors.Error {
	return appErrors.WithDetails(
		appErrors.ErrInsufficientStock,
		fmt.Sprintf("insufficient %s stock: need %d, have %d", group, needed, available),
		models.StockShortage{Group: group, Needed: needed, Available: available},
	)
}

func auditActionFor(status models.RecordStatus) string {
	if status == models.StatusApproved {
		return models.AuditActionApprove
	}
	return models.AuditActionReject
}

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func groupOrEmpty(g *models.BloodGroup) string {
	if g == nil {
		return ""
	}
	return string(*g)
}
