// Package services defines the business logic for accounts, bookings, and
// reviews. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer; mapping to
// HTTP statuses and user-facing messages happens in the terminal error
// mapper, never here.
package services

import "errors"

// Account-related errors.
var (
	// ErrInvalidCredentials is returned when login email/password do not
	// match an active account. Deliberately indistinct between "no such
	// user" and "wrong password".
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountDisabled is returned when credentials are valid but the
	// account has been deactivated.
	ErrAccountDisabled = errors.New("account is disabled")

	// ErrEmailTaken is returned when registration collides with an existing
	// account.
	ErrEmailTaken = errors.New("email already registered")
)

// Booking-related errors.
var (
	// ErrServiceNotFound indicates the requested service does not exist or
	// is not bookable.
	ErrServiceNotFound = errors.New("service not found")

	// ErrServiceInactive is returned when booking a withdrawn service.
	ErrServiceInactive = errors.New("service is not bookable")

	// ErrSlotTaken is returned when the specialist is already booked for
	// the requested time.
	ErrSlotTaken = errors.New("time slot is not available")

	// ErrBookingNotFound indicates the requested booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrPastStartTime is returned when a booking is requested for a time
	// already in the past.
	ErrPastStartTime = errors.New("start time is in the past")
)
