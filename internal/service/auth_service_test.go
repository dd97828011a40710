package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/amar-rokto/api/internal/models"
	appErrors "github.com/amar-rokto/api/pkg/errors"
)

type authUserStoreStub struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
	tokens  map[string]*models.RefreshToken
	revoked []string
}

func newAuthUserStoreStub(users ...*models.User) *authUserStoreStub {
	s := &authUserStoreStub{
		byEmail: make(map[string]*models.User),
		byID:    make(map[string]*models.User),
		tokens:  make(map[string]*models.RefreshToken),
	}
	for _, u := range users {
		s.byEmail[u.Email] = u
		s.byID[u.ID] = u
	}
	return s
}

func (s *authUserStoreStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := s.byEmail[email]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authUserStoreStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.byID[id]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authUserStoreStub) Create(ctx context.Context, user *models.User) error {
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
	return nil
}

func (s *authUserStoreStub) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if u, ok := s.byID[id]; ok {
		u.LastLogin = &ts
	}
	return nil
}

func (s *authUserStoreStub) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	u, ok := s.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = updatedAt
	return nil
}

func (s *authUserStoreStub) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	for _, t := range s.tokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

func (s *authUserStoreStub) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	s.tokens[token.Token] = token
	return nil
}

func (s *authUserStoreStub) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := s.tokens[token]; ok {
		copy := *t
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authUserStoreStub) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, t := range s.tokens {
		if t.ID == id {
			t.Revoked = true
			t.RevokedAt = &revokedAt
			s.revoked = append(s.revoked, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

type authBankStoreStub struct {
	created []*models.BloodBank
}

func (s *authBankStoreStub) Create(ctx context.Context, bank *models.BloodBank) error {
	s.created = append(s.created, bank)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "amar-rokto",
	}
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegisterDefaultsToUserRole(t *testing.T) {
	users := newAuthUserStoreStub()
	banks := &authBankStoreStub{}
	svc := NewAuthService(users, banks, &auditStub{}, nil, nil, testAuthConfig())

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:     "Donor@Example.org",
		Password:  "secret123",
		FirstName: "Rahim",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, resp.User.Role)
	require.Equal(t, "donor@example.org", resp.User.Email)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.Empty(t, banks.created)
}

func TestRegisterBloodBankCreatesProfileRow(t *testing.T) {
	users := newAuthUserStoreStub()
	banks := &authBankStoreStub{}
	svc := NewAuthService(users, banks, nil, nil, nil, testAuthConfig())

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:     "bank@example.org",
		Password:  "secret123",
		FirstName: "Operator",
		Role:      "BLOODBANK",
		BankName:  "City Blood Bank",
		City:      "Dhaka",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleBloodBank, resp.User.Role)

	// The bank profile shares the operator's identifier.
	require.Len(t, banks.created, 1)
	require.Equal(t, resp.User.ID, banks.created[0].ID)
	require.Equal(t, "City Blood Bank", banks.created[0].Name)
	require.NotNil(t, banks.created[0].Stock)
}

func TestRegisterBloodBankRequiresBankName(t *testing.T) {
	svc := NewAuthService(newAuthUserStoreStub(), &authBankStoreStub{}, nil, nil, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:     "bank@example.org",
		Password:  "secret123",
		FirstName: "Operator",
		Role:      "BLOODBANK",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newAuthUserStoreStub(&models.User{ID: "u1", Email: "taken@example.org"})
	svc := NewAuthService(users, &authBankStoreStub{}, nil, nil, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:     "taken@example.org",
		Password:  "secret123",
		FirstName: "Dup",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestLoginAndValidateToken(t *testing.T) {
	users := newAuthUserStoreStub(&models.User{
		ID:           "u1",
		Email:        "donor@example.org",
		PasswordHash: hashPassword(t, "secret123"),
		Role:         models.RoleUser,
		Active:       true,
	})
	svc := NewAuthService(users, &authBankStoreStub{}, nil, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "donor@example.org", Password: "secret123"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.UserID)
	require.Equal(t, models.RoleUser, claims.Role)
	require.Equal(t, "amar-rokto", claims.Issuer)
}

func TestLoginWrongPassword(t *testing.T) {
	users := newAuthUserStoreStub(&models.User{
		ID:           "u1",
		Email:        "donor@example.org",
		PasswordHash: hashPassword(t, "secret123"),
		Active:       true,
	})
	svc := NewAuthService(users, &authBankStoreStub{}, nil, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "donor@example.org", Password: "wrong"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	users := newAuthUserStoreStub(&models.User{
		ID:           "u1",
		Email:        "donor@example.org",
		PasswordHash: hashPassword(t, "secret123"),
		Active:       false,
	})
	svc := NewAuthService(users, &authBankStoreStub{}, nil, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "donor@example.org", Password: "secret123"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	users := newAuthUserStoreStub(&models.User{
		ID:           "u1",
		Email:        "donor@example.org",
		PasswordHash: hashPassword(t, "secret123"),
		Role:         models.RoleUser,
		Active:       true,
	})
	svc := NewAuthService(users, &authBankStoreStub{}, nil, nil, nil, testAuthConfig())

	session, err := svc.Login(context.Background(), models.LoginRequest{Email: "donor@example.org", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: session.RefreshToken})
	require.NoError(t, err)
	require.NotEqual(t, session.RefreshToken, refreshed.RefreshToken)

	// The old token is single-use.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: session.RefreshToken})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestLogoutRejectsForeignToken(t *testing.T) {
	users := newAuthUserStoreStub(&models.User{
		ID:           "u1",
		Email:        "donor@example.org",
		PasswordHash: hashPassword(t, "secret123"),
		Active:       true,
	})
	svc := NewAuthService(users, &authBankStoreStub{}, nil, nil, nil, testAuthConfig())

	session, err := svc.Login(context.Background(), models.LoginRequest{Email: "donor@example.org", Password: "secret123"})
	require.NoError(t, err)

	err = svc.Logout(context.Background(), session.RefreshToken, "someone-else", models.LoginRequest{})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	require.NoError(t, svc.Logout(context.Background(), session.RefreshToken, "u1", models.LoginRequest{}))
	require.Len(t, users.revoked, 1)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	users := newAuthUserStoreStub(&models.User{
		ID:           "u1",
		Email:        "donor@example.org",
		PasswordHash: hashPassword(t, "oldpass"),
		Active:       true,
	})
	svc := NewAuthService(users, &authBankStoreStub{}, nil, nil, nil, testAuthConfig())

	session, err := svc.Login(context.Background(), models.LoginRequest{Email: "donor@example.org", Password: "oldpass"})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "newpass1"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	require.NoError(t, svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "oldpass", NewPassword: "newpass1"}))
	require.True(t, users.tokens[session.RefreshToken].Revoked)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.byID["u1"].PasswordHash), []byte("newpass1")))
}
