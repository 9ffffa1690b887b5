// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Review model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookline-app/bookline-backend/internal/domain"
)

// CreateReview inserts a review. The unique (booking, customer) index makes a
// duplicate surface as gorm.ErrDuplicatedKey for the error mapper.
func CreateReview(ctx context.Context, db *gorm.DB, bookingID, customerID string, rating int, comment string) (*domain.Review, error) {
	r := &domain.Review{
		ID:         uuid.NewString(),
		BookingID:  bookingID,
		CustomerID: customerID,
		Rating:     rating,
		Comment:    comment,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// ListReviewsForBooking returns reviews on a booking, newest first.
func ListReviewsForBooking(ctx context.Context, db *gorm.DB, bookingID string) ([]domain.Review, error) {
	var out []domain.Review
	err := db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}
