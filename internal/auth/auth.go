// Package auth issues and validates the bearer tokens and owns the
// credential flows: registration, login and password change.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"

	"github.com/mailboxapp/mailbox/internal/apperr"
	"github.com/mailboxapp/mailbox/internal/models"
)

type Service struct {
	db        *bun.DB
	jwtSecret string
	tokenTTL  time.Duration
}

type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

func New(db *bun.DB, jwtSecret string) *Service {
	return NewWithTokenTTL(db, jwtSecret, 24*time.Hour)
}

func NewWithTokenTTL(db *bun.DB, jwtSecret string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}

	return &Service{
		db:        db,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Register hashes the password and stores the new account. The caller has
// already bind-validated the field formats.
func (s *Service) Register(ctx context.Context, user *models.User, password string) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}
	user.MotDePasse = string(hash)

	return models.CreateUser(ctx, s.db, user)
}

// Login verifies the credentials and returns the user with a signed token.
// A wrong email and a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := models.FindUserByEmail(ctx, s.db, email)
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return nil, "", apperr.Authentication("invalid email or password")
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.MotDePasse), []byte(password)); err != nil {
		return nil, "", apperr.Authentication("invalid email or password")
	}

	token, err := s.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ChangePassword re-hashes after checking the old password against the
// stored hash.
func (s *Service) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	user, err := models.FindUserByID(ctx, s.db, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.MotDePasse), []byte(oldPassword)); err != nil {
		return apperr.Authentication("old password incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}
	return models.UpdateUserPassword(ctx, s.db, userID, string(hash))
}

func (s *Service) GenerateToken(userID int64) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return tokenString, nil
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Authentication("token expired")
		}
		return nil, apperr.Authentication("invalid token")
	}

	if !token.Valid {
		return nil, apperr.Authentication("invalid token")
	}

	return claims, nil
}
