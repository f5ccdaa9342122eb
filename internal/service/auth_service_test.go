package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/prestaweb/api/internal/domain"
	"github.com/prestaweb/api/internal/mocks"
	customError "github.com/prestaweb/api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(clientRepo *mocks.MockClientRepository, userRepo *mocks.MockUserRepository) *AuthService {
	return NewAuthService(clientRepo, userRepo, testLogger(), testConfig())
}

func TestClientLogin(t *testing.T) {
	client := &domain.Client{
		ID:         uuid.New(),
		Name:       "Maria Jimenez",
		AccessCode: "a1b2c3d4e5f6",
	}

	tests := []struct {
		name          string
		accessCode    string
		setupMock     func(*mocks.MockClientRepository)
		expectedError error
	}{
		{
			name:       "Success",
			accessCode: client.AccessCode,
			setupMock: func(m *mocks.MockClientRepository) {
				m.On("GetByAccessCode", mock.Anything, client.AccessCode).Return(client, nil)
			},
		},
		{
			name:       "Failure - unknown access code",
			accessCode: "ffffffffffff",
			setupMock: func(m *mocks.MockClientRepository) {
				m.On("GetByAccessCode", mock.Anything, "ffffffffffff").Return(nil, sql.ErrNoRows)
			},
			expectedError: customError.ErrInvalidAccessCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clientRepo := new(mocks.MockClientRepository)
			userRepo := new(mocks.MockUserRepository)
			tt.setupMock(clientRepo)

			svc := newAuthService(clientRepo, userRepo)
			resp, err := svc.ClientLogin(context.Background(), tt.accessCode)

			if tt.expectedError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, resp.Token)
			assert.Equal(t, client.ID, resp.Client.ID)

			claims, err := svc.ParseToken(resp.Token)
			require.NoError(t, err)
			assert.Equal(t, RoleClient, claims.Role)
			assert.Equal(t, client.ID.String(), claims.Subject)
		})
	}
}

func TestStaffLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &domain.User{
		ID:           uuid.New(),
		Email:        "admin@prestaweb.test",
		PasswordHash: string(hash),
		Role:         "admin",
	}

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*mocks.MockUserRepository)
		expectedError error
	}{
		{
			name:     "Success",
			email:    user.Email,
			password: "correct-horse",
			setupMock: func(m *mocks.MockUserRepository) {
				m.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
			},
		},
		{
			name:     "Failure - wrong password",
			email:    user.Email,
			password: "battery-staple",
			setupMock: func(m *mocks.MockUserRepository) {
				m.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
			},
			expectedError: customError.ErrInvalidCredentials,
		},
		{
			name:     "Failure - unknown email",
			email:    "nobody@prestaweb.test",
			password: "correct-horse",
			setupMock: func(m *mocks.MockUserRepository) {
				m.On("GetByEmail", mock.Anything, "nobody@prestaweb.test").Return(nil, sql.ErrNoRows)
			},
			expectedError: customError.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clientRepo := new(mocks.MockClientRepository)
			userRepo := new(mocks.MockUserRepository)
			tt.setupMock(userRepo)

			svc := newAuthService(clientRepo, userRepo)
			resp, err := svc.StaffLogin(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}

			require.NoError(t, err)
			claims, err := svc.ParseToken(resp.Token)
			require.NoError(t, err)
			assert.Equal(t, RoleStaff, claims.Role)
		})
	}
}

func TestParseTokenRejectsTampering(t *testing.T) {
	clientRepo := new(mocks.MockClientRepository)
	userRepo := new(mocks.MockUserRepository)
	svc := newAuthService(clientRepo, userRepo)

	client := &domain.Client{ID: uuid.New(), AccessCode: "deadbeef0000"}
	clientRepo.On("GetByAccessCode", mock.Anything, client.AccessCode).Return(client, nil)

	resp, err := svc.ClientLogin(context.Background(), client.AccessCode)
	require.NoError(t, err)

	_, err = svc.ParseToken(resp.Token + "x")
	assert.Error(t, err)

	otherCfg := testConfig()
	otherCfg.Auth.JWTSecret = "different-secret"
	other := NewAuthService(clientRepo, userRepo, testLogger(), otherCfg)
	_, err = other.ParseToken(resp.Token)
	assert.Error(t, err)
}

func TestGenerateAccessCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateAccessCode()
		require.NoError(t, err)
		assert.Len(t, code, 12)
		assert.False(t, seen[code], "access codes must not repeat")
		seen[code] = true
	}
}
