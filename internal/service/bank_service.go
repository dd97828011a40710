package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/amar-rokto/api/internal/dto"
	"github.com/amar-rokto/api/internal/models"
	appErrors "github.com/amar-rokto/api/pkg/errors"
)

type bankStore interface {
	GetByID(ctx context.Context, id string) (*models.BloodBank, error)
	UpdateProfile(ctx context.Context, bank *models.BloodBank) error
	UpdateKeywords(ctx context.Context, id string, keywords []string) error
	Search(ctx context.Context, filter models.BankFilter) ([]models.BloodBank, int, error)
	ListAll(ctx context.Context) ([]models.BloodBank, error)
}

// BankService manages blood bank profiles and the public directory.
type BankService struct {
	banks     bankStore
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBankService constructs the service.
func NewBankService(banks bankStore, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *BankService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BankService{banks: banks, audit: audit, validator: validate, logger: logger}
}

// Get returns a bank's full profile.
func (s *BankService) Get(ctx context.Context, id string) (*models.BloodBank, error) {
	bank, err := s.banks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "blood bank not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bank")
	}
	return bank, nil
}

// Update applies the editable profile fields and rebuilds the denormalized
// search keywords in the same write.
func (s *BankService) Update(ctx context.Context, bankID string, req dto.UpdateBankRequest, actor *models.JWTClaims) (*models.BloodBank, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin && actor.UserID != bankID {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bank payload")
	}

	bank, err := s.Get(ctx, bankID)
	if err != nil {
		return nil, err
	}

	bank.Name = strings.TrimSpace(req.Name)
	bank.Address = req.Address
	bank.City = req.City
	bank.Contact = req.Contact
	bank.Email = req.Email
	bank.Website = req.Website
	bank.Description = req.Description
	bank.LogoURL = req.LogoURL
	bank.BloodGroups = pq.StringArray(req.BloodGroups)
	bank.LowStockThreshold = req.LowStockThreshold
	bank.SearchKeywords = pq.StringArray(SearchKeywords(bank))

	if err := s.banks.UpdateProfile(ctx, bank); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "blood bank not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update bank")
	}

	if s.audit != nil {
		log := &models.AuditLog{
			Action:     models.AuditActionBankUpdate,
			Resource:   "blood_bank",
			ResourceID: &bank.ID,
			IPAddress:  "system",
			UserAgent:  "bank-service",
		}
		userID := actor.UserID
		log.UserID = &userID
		if err := s.audit.CreateAuditLog(ctx, log); err != nil {
			s.logger.Warn("failed to persist bank audit log", zap.Error(err))
		}
	}
	return bank, nil
}

// Search returns the public directory page matching the query.
func (s *BankService) Search(ctx context.Context, query dto.BankSearchQuery) ([]dto.BankSummary, *models.Pagination, error) {
	filter := models.BankFilter{
		Keyword:  query.Keyword,
		City:     query.City,
		Group:    models.BloodGroup(query.Group),
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if filter.Group != "" && !filter.Group.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown blood group filter")
	}

	banks, total, err := s.banks.Search(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search banks")
	}

	summaries := make([]dto.BankSummary, 0, len(banks))
	for _, bank := range banks {
		summaries = append(summaries, dto.BankSummary{
			ID:          bank.ID,
			Name:        bank.Name,
			Address:     bank.Address,
			City:        bank.City,
			Contact:     bank.Contact,
			LogoURL:     bank.LogoURL,
			BloodGroups: bank.BloodGroups,
			Stock:       bank.Stock,
		})
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return summaries, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// RebuildKeywords recomputes the search keyword array for every bank.
// Used by the backfill tool after imports or schema changes.
func (s *BankService) RebuildKeywords(ctx context.Context) (int, error) {
	banks, err := s.banks.ListAll(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list banks")
	}
	updated := 0
	for i := range banks {
		bank := &banks[i]
		keywords := SearchKeywords(bank)
		if err := s.banks.UpdateKeywords(ctx, bank.ID, keywords); err != nil {
			s.logger.Warn("failed to rebuild keywords", zap.String("bank_id", bank.ID), zap.Error(err))
			continue
		}
		updated++
	}
	return updated, nil
}

// SearchKeywords derives the lowercase token set a bank is findable by:
// every word of its name, address and city, plus its supported groups.
func SearchKeywords(bank *models.BloodBank) []string {
	seen := make(map[string]struct{})
	add := func(raw string) {
		for _, token := range strings.Fields(strings.ToLower(raw)) {
			token = strings.Trim(token, ",.()-")
			if token == "" {
				continue
			}
			seen[token] = struct{}{}
		}
	}
	add(bank.Name)
	add(bank.Address)
	add(bank.City)
	for _, group := range bank.BloodGroups {
		seen[strings.ToLower(group)] = struct{}{}
	}

	keywords := make([]string, 0, len(seen))
	for token := range seen {
		keywords = append(keywords, token)
	}
	sort.Strings(keywords)
	return keywords
}
