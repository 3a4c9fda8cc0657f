package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/tuanvumaihuynh/lfs/internal/apperr"
	"github.com/tuanvumaihuynh/lfs/internal/config"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

// Claims is the payload of operator tokens.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (Token, error)
	ParseToken(token string) (Claims, error)
	CreateAdmin(ctx context.Context, email, password string) (model.AdminUser, error)
}

type authService struct {
	logger       *slog.Logger
	now          Clock
	cfg          config.Auth
	customerRepo repository.CustomerRepository
}

func NewAuthService(
	logger *slog.Logger,
	now Clock,
	cfg config.Auth,
	customerRepo repository.CustomerRepository,
) AuthService {
	return &authService{
		logger:       logger.With(slog.String("service", "auth")),
		now:          now,
		cfg:          cfg,
		customerRepo: customerRepo,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (Token, error) {
	user, err := s.customerRepo.GetAdminUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if db.IsNotFound(err) {
			return Token{}, apperr.InvalidCredentialsErr
		}
		return Token{}, fmt.Errorf("customer repository get admin user by email: %w", err)
	}

	if !user.Active || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return Token{}, apperr.InvalidCredentialsErr
	}

	now := s.now()
	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	s.logger.InfoContext(ctx, "operator logged in", slog.String("user_id", user.ID.String()))

	return Token{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.cfg.TokenTTL.Seconds()),
	}, nil
}

func (s *authService) ParseToken(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Claims{}, apperr.InvalidTokenErr.WrapParent(err)
	}
	if !parsed.Valid {
		return Claims{}, apperr.InvalidTokenErr
	}

	return claims, nil
}

func (s *authService) CreateAdmin(ctx context.Context, email, password string) (model.AdminUser, error) {
	if password == "" {
		return model.AdminUser{}, apperr.ValidationErr.WrapParent(errors.New("password is empty"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.AdminUser{}, fmt.Errorf("hash password: %w", err)
	}

	id, err := newID()
	if err != nil {
		return model.AdminUser{}, err
	}

	user := model.AdminUser{
		ID:           id,
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		Active:       true,
		CreatedAt:    s.now(),
	}

	if err := s.customerRepo.CreateAdminUser(ctx, user); err != nil {
		return model.AdminUser{}, conflict(fmt.Errorf("customer repository create admin user: %w", err), apperr.AdminExistsErr)
	}

	return user, nil
}
