package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"wellnesshub/internal/auth"
	apperr "wellnesshub/internal/errors"
	"wellnesshub/internal/model"
	"wellnesshub/internal/repository"
)

const bcryptCost = 10

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = apperr.Unauthenticated("invalid email or password")
	// ErrAccountInactive is returned when a non-active account tries to sign in.
	ErrAccountInactive = apperr.Unauthenticated("account is not active")
	// ErrWrongPassword is returned when the current password does not match on change.
	ErrWrongPassword = apperr.Validation("current password is incorrect")
)

// RegisterInput is the public sign-up payload.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
}

// ChangePasswordInput changes the caller's own password.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128,nefield=CurrentPassword"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Account   *model.Account `json:"user"`
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Me(ctx context.Context, p *auth.Principal) (*model.Account, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	ChangePassword(ctx context.Context, p *auth.Principal, in ChangePasswordInput) error
}

type authService struct {
	accountRepo repository.AccountRepository
	jwtService  *auth.JWTService
	tokenStore  auth.TokenStoreInterface
	logger      *zap.Logger
	now         func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(accountRepo repository.AccountRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, logger *zap.Logger) AuthService {
	return &authService{
		accountRepo: accountRepo,
		jwtService:  jwtService,
		tokenStore:  tokenStore,
		logger:      logger,
		now:         time.Now,
	}
}

// Register creates a plain user account and signs it in.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	existing, err := s.accountRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperr.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check account existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &model.Account{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         auth.RoleUser,
		Permissions:  auth.Permissions{},
		Status:       auth.StatusActive,
		Phone:        in.Phone,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, conflictOr(err, apperr.ErrEmailTaken.Message)
	}

	return s.issue(account)
}

// Login authenticates an account and returns a signed token.
func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.accountRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if account.Status != "" && account.Status != auth.StatusActive {
		return nil, ErrAccountInactive
	}

	now := s.now()
	if err := s.accountRepo.UpdateFields(ctx, account.ID, map[string]interface{}{"last_login": now}); err != nil {
		s.logger.Warn("record last login", zap.String("account_id", account.ID.String()), zap.Error(err))
	}
	account.LastLogin = &now

	return s.issue(account)
}

// Me returns the caller's stored account.
func (s *authService) Me(ctx context.Context, p *auth.Principal) (*model.Account, error) {
	id, err := ParseID(p.ID, "user")
	if err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return account, nil
}

// Logout revokes the presented token until it would have expired.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return apperr.Unauthenticated("no token provided")
	}
	return s.tokenStore.Revoke(ctx, claims.ID, s.jwtService.Remaining(claims))
}

// ChangePassword verifies the current password and stores a new one.
func (s *authService) ChangePassword(ctx context.Context, p *auth.Principal, in ChangePasswordInput) error {
	account, err := s.Me(ctx, p)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.accountRepo.UpdateFields(ctx, account.ID, map[string]interface{}{
		"password_hash":        string(hashed),
		"must_change_password": false,
	})
}

func (s *authService) issue(account *model.Account) (*Session, error) {
	token, err := s.jwtService.GenerateToken(account.ID.String(), account.Role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &Session{
		Token:     token,
		ExpiresAt: s.now().Add(s.jwtService.Expiry()),
		Account:   account,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
