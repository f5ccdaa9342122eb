package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prestaweb/api/internal/config"
	"github.com/prestaweb/api/internal/domain"
	"github.com/prestaweb/api/internal/repository"
	customError "github.com/prestaweb/api/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleClient = "client"
	RoleStaff  = "staff"
)

// Claims carried by every issued token. Subject is the client or user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	clientRepo repository.ClientRepository
	userRepo   repository.UserRepository
	log        *logrus.Logger
	config     *config.Config
}

func NewAuthService(
	clientRepo repository.ClientRepository,
	userRepo repository.UserRepository,
	log *logrus.Logger,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		clientRepo: clientRepo,
		userRepo:   userRepo,
		log:        log,
		config:     cfg,
	}
}

// ClientLogin authenticates a portal client by its access code and issues a
// JWT scoped to the client role.
func (s *AuthService) ClientLogin(ctx context.Context, accessCode string) (*domain.LoginResponse, error) {
	client, err := s.clientRepo.GetByAccessCode(ctx, accessCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapInvalidAccessCode()
		}
		return nil, customError.WrapDatabaseError(err)
	}

	token, err := s.issueToken(client.ID.String(), RoleClient)
	if err != nil {
		return nil, err
	}

	s.log.WithField("client_id", client.ID).Info("client logged in")
	return &domain.LoginResponse{Token: token, Client: client}, nil
}

// StaffLogin authenticates a staff user by email and password.
func (s *AuthService) StaffLogin(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapInvalidCredentials()
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, customError.WrapInvalidCredentials()
	}

	token, err := s.issueToken(user.ID.String(), RoleStaff)
	if err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("staff user logged in")
	return &domain.LoginResponse{Token: token, User: user}, nil
}

// RegisterStaff creates a staff account with a bcrypt-hashed password.
func (s *AuthService) RegisterStaff(ctx context.Context, name, email, password, role string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.log.WithField("email", email).Info("staff user registered")
	return user, nil
}

// ParseToken verifies a token and returns its claims.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.Auth.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func (s *AuthService) issueToken(subject, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.GetTokenTTL())),
		},
	})

	signed, err := token.SignedString([]byte(s.config.Auth.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// GenerateAccessCode returns a fresh random access code for a client. Codes
// are opaque random tokens, not user-chosen secrets, and are unique by
// construction with overwhelming probability.
func GenerateAccessCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
