// Package services defines the business logic for accounts, bookings, and
// reviews. This file implements account registration and login on top of the
// user repository, bcrypt password hashing, and the token manager.
package services

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/bookline-app/bookline-backend/internal/domain"
	"github.com/bookline-app/bookline-backend/internal/repo"
	"github.com/bookline-app/bookline-backend/internal/token"
)

// AuthService handles registration and credential exchange. It owns no
// request state; every method is context-aware and safe for concurrent use.
type AuthService struct {
	DB     *gorm.DB
	Tokens *token.Manager

	// Invalidate is called with a user id whenever a mutation makes that
	// user's cached principal stale. Wired to the principal cache.
	Invalidate func(id string)
}

// Register creates a customer or specialist account and returns the new user
// with a signed access token. A duplicate email maps to ErrEmailTaken.
func (s *AuthService) Register(ctx context.Context, email, password, name string, role domain.Role) (*domain.User, string, error) {
	if role != domain.RoleCustomer && role != domain.RoleSpecialist {
		role = domain.RoleCustomer
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	u, err := repo.CreateUser(ctx, s.DB, email, string(hash), name, role)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}
	tok, err := s.Tokens.Sign(u.ID, string(u.Role))
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

// Login verifies credentials and issues an access token. Unknown email and
// wrong password both map to ErrInvalidCredentials; a deactivated account
// maps to ErrAccountDisabled.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	u, err := repo.FindUserByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, "", ErrAccountDisabled
	}
	tok, err := s.Tokens.Sign(u.ID, string(u.Role))
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

// LoginTelegram exchanges a verified Telegram identity for an access token.
// When autoRegister is set and no account is linked to tgID, a customer
// account is provisioned on the fly; otherwise an unlinked identity maps to
// ErrInvalidCredentials.
func (s *AuthService) LoginTelegram(ctx context.Context, tgID int64, name, username, avatarURL string, autoRegister bool) (*domain.User, string, error) {
	u, err := repo.FindUserByTelegramID(ctx, s.DB, tgID)
	if errors.Is(err, repo.ErrNotFound) {
		if !autoRegister {
			return nil, "", ErrInvalidCredentials
		}
		display := name
		if display == "" {
			display = username
		}
		u, err = repo.CreateTelegramUser(ctx, s.DB, tgID, display, avatarURL)
	}
	if err != nil {
		return nil, "", err
	}
	if !u.IsActive {
		return nil, "", ErrAccountDisabled
	}
	tok, err := s.Tokens.Sign(u.ID, string(u.Role))
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

// Deactivate disables an account and invalidates its cached principal so the
// change takes effect within one request, not one cache TTL.
func (s *AuthService) Deactivate(ctx context.Context, id string) error {
	if err := repo.SetUserActive(ctx, s.DB, id, false); err != nil {
		return err
	}
	if s.Invalidate != nil {
		s.Invalidate(id)
	}
	return nil
}

// UpdateProfile patches profile fields and invalidates the cached principal.
func (s *AuthService) UpdateProfile(ctx context.Context, id, name, avatarURL string) error {
	if err := repo.UpdateProfile(ctx, s.DB, id, name, avatarURL); err != nil {
		return err
	}
	if s.Invalidate != nil {
		s.Invalidate(id)
	}
	return nil
}
