// Package accounts owns the user record lifecycle and every
// credential-bearing operation: register, login, session validation,
// password-reset issuance, and profile update.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/asmi/skincare-advisor-backend/internal/mail"
	"github.com/asmi/skincare-advisor-backend/internal/models"
	"github.com/asmi/skincare-advisor-backend/internal/store"
)

// UserStore defines the interface for user persistence. The store assigns
// IDs and enforces email uniqueness.
type UserStore interface {
	Insert(ctx context.Context, username, email, passwordHash string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateByID(ctx context.Context, id, username, email, passwordHash string) error
}

// Service is the account authority. Every method resolves to a success
// value or one of the sentinel error kinds in errors.go.
type Service struct {
	users         UserStore
	mailer        mail.Dispatcher
	signer        *Signer
	sessionTTL    time.Duration
	resetTTL      time.Duration
	publicBaseURL string
}

func NewService(users UserStore, mailer mail.Dispatcher, signer *Signer, sessionTTL, resetTTL time.Duration, publicBaseURL string) *Service {
	return &Service{
		users:         users,
		mailer:        mailer,
		signer:        signer,
		sessionTTL:    sessionTTL,
		resetTTL:      resetTTL,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Register hashes the password and creates the user. Email uniqueness is
// enforced by the store's index; a duplicate surfaces as ErrDuplicateEmail.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("register: hash password: %v", err)
		return nil, ErrStore
	}
	user, err := s.users.Insert(ctx, username, email, string(hashed))
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		log.Printf("register: insert user: %v", err)
		return nil, ErrStore
	}
	return user, nil
}

// Login verifies the credentials and issues a session token. An unknown
// email and a wrong password fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		log.Printf("login: find user: %v", err)
		return "", ErrStore
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	token, err := s.signer.Sign(user.ID, PurposeSession, s.sessionTTL)
	if err != nil {
		log.Printf("login: sign session token: %v", err)
		return "", ErrStore
	}
	return token, nil
}

// ValidateSession checks a bearer token and returns the user ID it was
// issued for. An empty token is ErrUnauthorized; anything that fails
// verification is ErrInvalidToken.
func (s *Service) ValidateSession(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrUnauthorized
	}
	claims, err := s.signer.Verify(tokenString)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// Profile returns the record of the authenticated user.
func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		log.Printf("profile: find user %s: %v", userID, err)
		return nil, ErrStore
	}
	return user, nil
}

// ForgotPassword issues a short-lived reset token and mails the reset link.
// The token itself is the credential; nothing is stored server-side.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		log.Printf("forgot password: find user: %v", err)
		return ErrStore
	}
	token, err := s.signer.Sign(user.ID, PurposeReset, s.resetTTL)
	if err != nil {
		log.Printf("forgot password: sign reset token: %v", err)
		return ErrStore
	}
	body := fmt.Sprintf(
		"You requested a password reset. Click the link below to reset your password:\n\n%s/reset-password/%s",
		s.publicBaseURL, token,
	)
	if err := s.mailer.Send(email, "Password Reset Request", body); err != nil {
		log.Printf("forgot password: send mail: %v", err)
		return ErrMailDispatch
	}
	return nil
}

// UpdateProfile overwrites username, email, and password hash for the
// given user. All three fields are required; the password is re-hashed
// even if unchanged. Email uniqueness is not re-checked against other
// users here; an exact collision is rejected by the store's index and
// reported as a store failure.
func (s *Service) UpdateProfile(ctx context.Context, userID, username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return ErrValidation
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("update profile: hash password: %v", err)
		return ErrStore
	}
	if err := s.users.UpdateByID(ctx, userID, username, email, string(hashed)); err != nil {
		log.Printf("update profile: update user %s: %v", userID, err)
		return ErrStore
	}
	return nil
}

// Logout acknowledges the request without invalidating anything. Session
// tokens are bearer credentials with no server-side state; without a
// revocation store an issued token stays valid until it expires.
func (s *Service) Logout() error {
	return nil
}
