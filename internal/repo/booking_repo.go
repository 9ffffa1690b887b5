// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Booking
// model, plus the minimal ownership projections consumed by the
// authorization middleware.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookline-app/bookline-backend/internal/domain"
)

// CreateBooking inserts a booking in pending state. Price is copied from the
// service row at creation time so later price edits do not retro-apply.
func CreateBooking(ctx context.Context, db *gorm.DB, customerID string, svc *domain.Service, startsAt time.Time, notes string) (*domain.Booking, error) {
	b := &domain.Booking{
		ID:           uuid.NewString(),
		CustomerID:   customerID,
		SpecialistID: svc.SpecialistID,
		ServiceID:    svc.ID,
		Status:       domain.BookingPending,
		StartsAt:     startsAt,
		PriceCents:   svc.PriceCents,
		Notes:        notes,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

// GetBooking fetches a booking by id. Returns ErrNotFound when missing.
func GetBooking(ctx context.Context, db *gorm.DB, id string) (*domain.Booking, error) {
	var b domain.Booking
	if err := db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBookingsForUser returns the bookings a user participates in, as either
// customer or specialist, most recent first.
func ListBookingsForUser(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Booking, error) {
	var out []domain.Booking
	err := db.WithContext(ctx).
		Where("customer_id = ? OR specialist_id = ?", userID, userID).
		Order("starts_at desc").
		Offset(offset).Limit(limit).
		Find(&out).Error
	return out, err
}

// CountOverlapping reports how many non-cancelled bookings the specialist has
// in the [startsAt, endsAt) interval. Used by the availability rule.
func CountOverlapping(ctx context.Context, db *gorm.DB, specialistID string, startsAt, endsAt time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Booking{}).
		Where("specialist_id = ? AND status IN ('pending','confirmed')", specialistID).
		Where("starts_at < ? AND starts_at >= ?", endsAt, startsAt.Add(-time.Hour)).
		Count(&n).Error
	return n, err
}

// UpdateBookingStatus transitions a booking. Returns ErrNotFound when the
// booking does not exist.
func UpdateBookingStatus(ctx context.Context, db *gorm.DB, id string, status domain.BookingStatus) error {
	res := db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
