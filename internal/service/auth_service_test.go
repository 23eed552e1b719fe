package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"wellnesshub/internal/auth"
	apperr "wellnesshub/internal/errors"
	"wellnesshub/internal/model"
)

func newTestAuthService(repo *MockAccountRepository, tokens *MockTokenStore) (AuthService, *auth.JWTService) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	return NewAuthService(repo, jwtService, tokens, zap.NewNop()), jwtService
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         RegisterInput
		setupMock     func(*MockAccountRepository)
		expectedError error
	}{
		{
			name:  "successful registration",
			input: RegisterInput{Name: "Test User", Email: "Test@Example.com ", Password: "password123"},
			setupMock: func(m *MockAccountRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.Account")).Return(nil)
			},
		},
		{
			name:  "account already exists",
			input: RegisterInput{Name: "Existing User", Email: "existing@example.com", Password: "password123"},
			setupMock: func(m *MockAccountRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.Account{Email: "existing@example.com"}, nil)
			},
			expectedError: apperr.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockAccountRepository)
			tt.setupMock(mockRepo)
			service, _ := newTestAuthService(mockRepo, new(MockTokenStore))

			session, err := service.Register(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, session)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, session.Token)
				assert.Equal(t, "test@example.com", session.Account.Email)
				assert.Equal(t, auth.RoleUser, session.Account.Role)
				assert.NotEmpty(t, session.Account.PasswordHash)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockAccountRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockAccountRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.Account{
					ID:           uuid.New(),
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
					Role:         auth.RoleStaff,
					Status:       auth.StatusActive,
				}, nil)
				m.On("UpdateFields", mock.Anything, mock.Anything, mock.Anything).Return(nil)
			},
		},
		{
			name:     "invalid credentials - account not found",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(m *MockAccountRepository) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "invalid credentials - wrong password",
			email:    "test@example.com",
			password: "wrong-password",
			setupMock: func(m *MockAccountRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.Account{
					ID:           uuid.New(),
					PasswordHash: string(hashedPassword),
				}, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "suspended account",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockAccountRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.Account{
					ID:           uuid.New(),
					PasswordHash: string(hashedPassword),
					Status:       auth.StatusSuspended,
				}, nil)
			},
			expectedError: ErrAccountInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockAccountRepository)
			tt.setupMock(mockRepo)
			service, jwtService := newTestAuthService(mockRepo, new(MockTokenStore))

			session, err := service.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
				assert.Nil(t, session)
			} else {
				require.NoError(t, err)
				claims, err := jwtService.ValidateToken(session.Token)
				require.NoError(t, err)
				assert.Equal(t, session.Account.ID.String(), claims.UserID)
				assert.NotNil(t, session.Account.LastLogin)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	mockRepo := new(MockAccountRepository)
	mockTokens := new(MockTokenStore)
	service, jwtService := newTestAuthService(mockRepo, mockTokens)

	token, err := jwtService.GenerateToken(uuid.NewString(), auth.RoleUser)
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)

	mockTokens.On("Revoke", mock.Anything, claims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 0 && ttl <= time.Hour
	})).Return(nil)

	require.NoError(t, service.Logout(context.Background(), claims))
	mockTokens.AssertExpectations(t)

	err = service.Logout(context.Background(), nil)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestAuthService_ChangePassword(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	id := uuid.New()
	principal := &auth.Principal{ID: id.String(), Role: auth.RoleStaff, Status: auth.StatusActive}

	t.Run("wrong current password", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(&model.Account{ID: id, PasswordHash: string(hashed)}, nil)
		service, _ := newTestAuthService(mockRepo, new(MockTokenStore))

		err := service.ChangePassword(context.Background(), principal, ChangePasswordInput{
			CurrentPassword: "nope", NewPassword: "new-password",
		})
		assert.ErrorIs(t, err, ErrWrongPassword)
		mockRepo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stores new hash and clears must change flag", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(&model.Account{ID: id, PasswordHash: string(hashed), MustChangePassword: true}, nil)
		mockRepo.On("UpdateFields", mock.Anything, id, mock.MatchedBy(func(fields map[string]interface{}) bool {
			hash, _ := fields["password_hash"].(string)
			return fields["must_change_password"] == false &&
				bcrypt.CompareHashAndPassword([]byte(hash), []byte("new-password")) == nil
		})).Return(nil)
		service, _ := newTestAuthService(mockRepo, new(MockTokenStore))

		err := service.ChangePassword(context.Background(), principal, ChangePasswordInput{
			CurrentPassword: "old-password", NewPassword: "new-password",
		})
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}
