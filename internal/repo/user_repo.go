// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a user is not found, lookup functions return (nil, nil) where the
//     absence is an expected outcome (FindPrincipal), or ErrNotFound where
//     the caller asked for a specific row (FindUserByEmail, GetUser).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the gorm error is propagated for the terminal mapper to classify.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookline-app/bookline-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// principalColumns is the non-sensitive projection cached by the principal
// cache. The password hash is deliberately excluded at the query level.
var principalColumns = []string{
	"id", "email", "name", "role", "is_active",
	"avatar_url", "loyalty_points", "created_at", "updated_at",
}

// CreateUser inserts a new user row. The ID is a fresh UUID; the caller
// provides an already-hashed password.
func CreateUser(ctx context.Context, db *gorm.DB, email, passwordHash, name string, role domain.Role) (*domain.User, error) {
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// FindUserByEmail fetches a user (including credential material) for login.
// Returns ErrNotFound when no account matches.
func FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindUserByTelegramID fetches the account linked to a Telegram identity.
// Returns ErrNotFound when no account is linked.
func FindUserByTelegramID(ctx context.Context, db *gorm.DB, tgID int64) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("telegram_id = ?", tgID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateTelegramUser inserts an account provisioned from a verified Telegram
// identity. Such accounts have no usable password; the stored hash is a
// random sentinel that bcrypt can never match.
func CreateTelegramUser(ctx context.Context, db *gorm.DB, tgID int64, name, avatarURL string) (*domain.User, error) {
	id := uuid.NewString()
	u := &domain.User{
		ID:         id,
		Email:      fmt.Sprintf("tg-%d@telegram.local", tgID),
		// "!" prefix guarantees the value is not a valid bcrypt hash.
		PasswordHash: "!" + uuid.NewString(),
		Name:         name,
		Role:         domain.RoleCustomer,
		IsActive:     true,
		TelegramID:   &tgID,
		AvatarURL:    avatarURL,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser fetches a user by id. Returns ErrNotFound when missing.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile patches mutable profile fields. Callers must invalidate the
// principal cache for id afterwards.
func UpdateProfile(ctx context.Context, db *gorm.DB, id, name, avatarURL string) error {
	res := db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": name, "avatar_url": avatarURL})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetUserActive flips the active flag. Callers must invalidate the principal
// cache for id afterwards so the change is visible within the cache TTL.
func SetUserActive(ctx context.Context, db *gorm.DB, id string, active bool) error {
	res := db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UserSource adapts the users table to the principal cache's PrincipalSource
// interface: a projection-only, failure-transparent lookup.
type UserSource struct {
	DB *gorm.DB
}

// FindPrincipal loads the non-sensitive snapshot for id. A missing user is
// (nil, nil) so the cache can distinguish absence from a downstream failure.
func (s UserSource) FindPrincipal(ctx context.Context, id string) (*domain.Principal, error) {
	var u domain.User
	err := s.DB.WithContext(ctx).
		Select(principalColumns).
		First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return domain.PrincipalOf(&u), nil
}
