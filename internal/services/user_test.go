package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memory-map-backend/internal/repository"
)

func TestCreateUser(t *testing.T) {
	repo := repository.NewLocalUserRepository()
	svc := NewUserService(repo, "secret")

	user, err := svc.CreateUser(context.Background())
	require.NoError(t, err)
	assert.Len(t, user.Code, shareCodeLength)
	assert.Regexp(t, "^[A-Z0-9]{6}$", user.Code)
	assert.NotEmpty(t, user.Token)

	userID, err := svc.ValidateJWT(user.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	stored, err := svc.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Code, stored.Code)
}

func TestValidateJWTRejects(t *testing.T) {
	svc := NewUserService(repository.NewLocalUserRepository(), "secret")
	other := NewUserService(repository.NewLocalUserRepository(), "other-secret")

	sign := func(method jwt.SigningMethod, claims jwt.Claims) string {
		t.Helper()
		signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		return signed
	}
	owner := func(userID, subject, issuer string, expires time.Time) ownerClaims {
		return ownerClaims{
			UserID: userID,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				Subject:   subject,
				ExpiresAt: jwt.NewNumericDate(expires),
			},
		}
	}
	later := time.Now().Add(time.Hour)

	foreign, err := other.IssueToken("user-1", time.Now())
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"other secret", foreign},
		{"expired", sign(jwt.SigningMethodHS256, owner("user-1", "user-1", tokenIssuer, time.Now().Add(-time.Hour)))},
		{"no expiry", sign(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "user-1", "sub": "user-1", "iss": tokenIssuer})},
		{"no owner", sign(jwt.SigningMethodHS256, owner("", "", tokenIssuer, later))},
		{"owner differs from subject", sign(jwt.SigningMethodHS256, owner("user-1", "user-2", tokenIssuer, later))},
		{"other issuer", sign(jwt.SigningMethodHS256, owner("user-1", "user-1", "someone-else", later))},
		{"other algorithm", sign(jwt.SigningMethodHS512, owner("user-1", "user-1", tokenIssuer, later))},
		{"garbage", "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateJWT(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestIssueTokenLifetime(t *testing.T) {
	svc := NewUserService(repository.NewLocalUserRepository(), "secret")
	issued := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	token, err := svc.IssueToken("user-1", issued)
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(tokenLifetime - time.Minute) }
	userID, err := svc.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	svc.now = func() time.Time { return issued.Add(tokenLifetime + time.Minute) }
	_, err = svc.ValidateJWT(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestUpdatePushToken(t *testing.T) {
	svc := NewUserService(repository.NewLocalUserRepository(), "secret")
	ctx := context.Background()
	user, err := svc.CreateUser(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.UpdatePushToken(ctx, user.ID, "device-token"))
	stored, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PushToken)
	assert.Equal(t, "device-token", *stored.PushToken)

	require.NoError(t, svc.UpdatePushToken(ctx, user.ID, ""))
	stored, err = svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.PushToken)

	assert.ErrorIs(t, svc.UpdatePushToken(ctx, "missing", "x"), ErrUserNotFound)
	_, err = svc.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
