// Package services defines the business logic for accounts, bookings, and
// reviews. This file implements booking creation and retrieval, including
// the availability check consumed by the business-rule middleware.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bookline-app/bookline-backend/internal/domain"
	"github.com/bookline-app/bookline-backend/internal/repo"
)

// BookingService creates and lists bookings.
type BookingService struct {
	DB *gorm.DB
}

// Create places a pending booking for the customer on the given service.
func (s *BookingService) Create(ctx context.Context, customerID, serviceID string, startsAt time.Time, notes string) (*domain.Booking, error) {
	if startsAt.Before(time.Now()) {
		return nil, ErrPastStartTime
	}
	svc, err := repo.GetService(ctx, s.DB, serviceID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	if !svc.IsActive {
		return nil, ErrServiceInactive
	}
	if err := s.CheckAvailability(ctx, svc.SpecialistID, startsAt, svc.DurationMin); err != nil {
		return nil, err
	}
	return repo.CreateBooking(ctx, s.DB, customerID, svc, startsAt, notes)
}

// CheckAvailability verifies the specialist has no overlapping active booking
// for a slot of durationMin minutes starting at startsAt.
func (s *BookingService) CheckAvailability(ctx context.Context, specialistID string, startsAt time.Time, durationMin int) error {
	endsAt := startsAt.Add(time.Duration(durationMin) * time.Minute)
	n, err := repo.CountOverlapping(ctx, s.DB, specialistID, startsAt, endsAt)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrSlotTaken
	}
	return nil
}

// Get fetches one booking.
func (s *BookingService) Get(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := repo.GetBooking(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// ListForUser lists the bookings a user participates in.
func (s *BookingService) ListForUser(ctx context.Context, userID string, offset, limit int) ([]domain.Booking, error) {
	return repo.ListBookingsForUser(ctx, s.DB, userID, offset, limit)
}

// Cancel transitions a booking to cancelled. Modification-window enforcement
// is the business-rule middleware's job; this is the raw transition.
func (s *BookingService) Cancel(ctx context.Context, id string) error {
	err := repo.UpdateBookingStatus(ctx, s.DB, id, domain.BookingCancelled)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrBookingNotFound
	}
	return err
}
