package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"memory-map-backend/internal/models"
	"memory-map-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	shareCodeLength   = 6
	shareCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	shareCodeAttempts = 10

	tokenIssuer   = "memory-map"
	tokenLifetime = 365 * 24 * time.Hour
)

// ownerClaims identifies the user a token was issued to. Every memory created
// with the token is owned by UserID.
type ownerClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// UserService issues anonymous identities and resolves the owners behind tokens
type UserService struct {
	userRepo repository.UserRepository
	secret   []byte
	now      func() time.Time
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, jwtSecret string) *UserService {
	return &UserService{
		userRepo: userRepo,
		secret:   []byte(jwtSecret),
		now:      time.Now,
	}
}

// CreateUser registers a new anonymous memory owner with a fresh share code
// and a long lived token
func (s *UserService) CreateUser(ctx context.Context) (*models.User, error) {
	now := s.now().UTC()
	user := &models.User{
		ID:        uuid.NewString(),
		CreatedAt: now,
	}

	var err error
	if user.Code, err = s.reserveShareCode(ctx); err != nil {
		return nil, err
	}
	if user.Token, err = s.IssueToken(user.ID, now); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// reserveShareCode draws codes until one is not taken by another user
func (s *UserService) reserveShareCode(ctx context.Context) (string, error) {
	for range shareCodeAttempts {
		code, err := newShareCode()
		if err != nil {
			return "", err
		}
		taken, err := s.userRepo.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check share code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("no free share code after %d attempts", shareCodeAttempts)
}

func newShareCode() (string, error) {
	alphabet := big.NewInt(int64(len(shareCodeAlphabet)))
	code := make([]byte, shareCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabet)
		if err != nil {
			return "", fmt.Errorf("failed to read random share code: %w", err)
		}
		code[i] = shareCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// IssueToken signs an HS256 token naming userID as the owner
func (s *UserService) IssueToken(userID string, issuedAt time.Time) (string, error) {
	claims := ownerClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(tokenLifetime)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateJWT returns the owner named by a token this service issued
func (s *UserService) ValidateJWT(token string) (string, error) {
	var claims ownerClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.UserID == "" || claims.UserID != claims.Subject {
		return "", errors.New("token does not name an owner")
	}
	return claims.UserID, nil
}

// GetUser retrieves a user by id
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// UpdatePushToken stores the device token used for push notifications; an
// empty token clears it
func (s *UserService) UpdatePushToken(ctx context.Context, userID, pushToken string) error {
	var token *string
	if pushToken != "" {
		token = &pushToken
	}
	err := s.userRepo.UpdatePushToken(ctx, userID, token)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
