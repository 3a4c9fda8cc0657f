package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tuanvumaihuynh/lfs/internal/apperr"
	"github.com/tuanvumaihuynh/lfs/internal/config"
	"github.com/tuanvumaihuynh/lfs/internal/model"
)

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	cfg := config.Auth{JWTSecret: "secret", TokenTTL: time.Hour, Issuer: "lfs"}

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	admin := model.AdminUser{ID: uuid.New(), Email: "admin@example.com", PasswordHash: string(hash), Active: true}

	t.Run("Should issue a token that parses back", func(t *testing.T) {
		repo := &mockCustomerRepository{}
		svc := NewAuthService(testLogger(), testClock, cfg, repo)
		repo.On("GetAdminUserByEmail", mock.Anything, "admin@example.com").Return(admin, nil)

		token, err := svc.Login(ctx, "Admin@Example.com", "s3cret")
		require.NoError(t, err)

		assert.Equal(t, "Bearer", token.TokenType)
		assert.Equal(t, int64(3600), token.ExpiresIn)

		claims, err := svc.ParseToken(token.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, admin.Email, claims.Email)
		assert.Equal(t, admin.ID.String(), claims.Subject)
	})

	t.Run("Should reject a wrong password", func(t *testing.T) {
		repo := &mockCustomerRepository{}
		svc := NewAuthService(testLogger(), testClock, cfg, repo)
		repo.On("GetAdminUserByEmail", mock.Anything, "admin@example.com").Return(admin, nil)

		_, err := svc.Login(ctx, "admin@example.com", "wrong")
		require.ErrorIs(t, err, apperr.InvalidCredentialsErr)
	})

	t.Run("Should reject an unknown user", func(t *testing.T) {
		repo := &mockCustomerRepository{}
		svc := NewAuthService(testLogger(), testClock, cfg, repo)
		repo.On("GetAdminUserByEmail", mock.Anything, "nobody@example.com").Return(model.AdminUser{}, pgx.ErrNoRows)

		_, err := svc.Login(ctx, "nobody@example.com", "s3cret")
		require.ErrorIs(t, err, apperr.InvalidCredentialsErr)
	})

	t.Run("Should reject an inactive user", func(t *testing.T) {
		repo := &mockCustomerRepository{}
		svc := NewAuthService(testLogger(), testClock, cfg, repo)
		inactive := admin
		inactive.Active = false
		repo.On("GetAdminUserByEmail", mock.Anything, "admin@example.com").Return(inactive, nil)

		_, err := svc.Login(ctx, "admin@example.com", "s3cret")
		require.ErrorIs(t, err, apperr.InvalidCredentialsErr)
	})
}

func TestAuthService_ParseToken(t *testing.T) {
	ctx := context.Background()
	cfg := config.Auth{JWTSecret: "secret", TokenTTL: time.Hour, Issuer: "lfs"}

	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	admin := model.AdminUser{ID: uuid.New(), Email: "admin@example.com", PasswordHash: string(hash), Active: true}

	repo := &mockCustomerRepository{}
	repo.On("GetAdminUserByEmail", mock.Anything, "admin@example.com").Return(admin, nil)
	token, err := NewAuthService(testLogger(), testClock, cfg, repo).Login(ctx, admin.Email, "pw")
	require.NoError(t, err)

	t.Run("Should reject an expired token", func(t *testing.T) {
		later := func() time.Time { return testNow.Add(2 * time.Hour) }
		_, err := NewAuthService(testLogger(), later, cfg, repo).ParseToken(token.AccessToken)
		require.ErrorIs(t, err, apperr.InvalidTokenErr)
	})

	t.Run("Should reject a token signed with another secret", func(t *testing.T) {
		other := cfg
		other.JWTSecret = "other"
		_, err := NewAuthService(testLogger(), testClock, other, repo).ParseToken(token.AccessToken)
		require.ErrorIs(t, err, apperr.InvalidTokenErr)
	})

	t.Run("Should reject a token of another issuer", func(t *testing.T) {
		other := cfg
		other.Issuer = "someone-else"
		_, err := NewAuthService(testLogger(), testClock, other, repo).ParseToken(token.AccessToken)
		require.ErrorIs(t, err, apperr.InvalidTokenErr)
	})

	t.Run("Should reject garbage", func(t *testing.T) {
		_, err := NewAuthService(testLogger(), testClock, cfg, repo).ParseToken("not-a-token")
		require.ErrorIs(t, err, apperr.InvalidTokenErr)
	})
}

func TestAuthService_CreateAdmin(t *testing.T) {
	ctx := context.Background()
	cfg := config.Auth{JWTSecret: "secret", TokenTTL: time.Hour, Issuer: "lfs"}

	t.Run("Should store a hashed password", func(t *testing.T) {
		repo := &mockCustomerRepository{}
		svc := NewAuthService(testLogger(), testClock, cfg, repo)
		repo.On("CreateAdminUser", mock.Anything, mock.MatchedBy(func(u model.AdminUser) bool {
			return u.Email == "ops@example.com" && u.Active &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("pw")) == nil
		})).Return(nil)

		user, err := svc.CreateAdmin(ctx, "OPS@example.com", "pw")
		require.NoError(t, err)
		assert.Equal(t, "ops@example.com", user.Email)
		repo.AssertExpectations(t)
	})

	t.Run("Should map a duplicate email", func(t *testing.T) {
		repo := &mockCustomerRepository{}
		svc := NewAuthService(testLogger(), testClock, cfg, repo)
		repo.On("CreateAdminUser", mock.Anything, mock.Anything).Return(&pgconn.PgError{Code: "23505"})

		_, err := svc.CreateAdmin(ctx, "ops@example.com", "pw")
		require.ErrorIs(t, err, apperr.AdminExistsErr)
	})

	t.Run("Should reject an empty password", func(t *testing.T) {
		svc := NewAuthService(testLogger(), testClock, cfg, &mockCustomerRepository{})

		_, err := svc.CreateAdmin(ctx, "ops@example.com", "")
		require.ErrorIs(t, err, apperr.ValidationErr)
	})
}
