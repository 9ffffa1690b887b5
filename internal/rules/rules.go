// Package rules implements the business-rule hooks that run between payload
// validation and the route handler. Each rule is a named async check against
// domain state; a failed check surfaces to the client as a 400
// BUSINESS_RULE_VIOLATION carrying the rule's message.
//
// Rules are a closed enum dispatched through a switch, so a route referencing
// an unknown rule is caught at startup by MustKnow rather than at request
// time.
package rules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bookline-app/bookline-backend/internal/domain"
	"github.com/bookline-app/bookline-backend/internal/repo"
	"github.com/bookline-app/bookline-backend/internal/schemas"
	"github.com/bookline-app/bookline-backend/internal/services"
)

// Rule names the business checks routes can require.
type Rule string

// Enumerated rules.
const (
	RuleBookingAvailability Rule = "bookingAvailability"
	RuleSpecialistOwnership Rule = "specialistOwnership"
	RuleModificationWindow  Rule = "bookingModificationWindow"
	RulePaymentAmount       Rule = "paymentAmountConsistency"
	RuleReviewEligibility   Rule = "reviewEligibility"
)

// modificationWindow is how close to the start time a booking may still be
// modified or cancelled.
const modificationWindow = 2 * time.Hour

// Input carries the request-scoped facts a rule may need: the authenticated
// principal (may be nil on public routes), the validated payload, and route
// parameters.
type Input struct {
	Principal *domain.Principal
	Payload   any
	Params    map[string]string
}

// Checker evaluates rules against domain state.
type Checker struct {
	DB       *gorm.DB
	Bookings *services.BookingService
}

// MustKnow panics when rule is not one of the enumerated checks. Called at
// route registration.
func MustKnow(rule Rule) {
	switch rule {
	case RuleBookingAvailability, RuleSpecialistOwnership, RuleModificationWindow,
		RulePaymentAmount, RuleReviewEligibility:
	default:
		panic(fmt.Sprintf("rules: unknown business rule %q", rule))
	}
}

// Check runs one rule. A nil return allows the request; any error is
// reported to the client as a business-rule violation with the error's
// message.
func (c *Checker) Check(ctx context.Context, rule Rule, in Input) error {
	switch rule {
	case RuleBookingAvailability:
		return c.checkAvailability(ctx, in)
	case RuleSpecialistOwnership:
		return c.checkSpecialistOwnership(in)
	case RuleModificationWindow:
		return c.checkModificationWindow(ctx, in)
	case RulePaymentAmount:
		return c.checkPaymentAmount(ctx, in)
	case RuleReviewEligibility:
		return c.checkReviewEligibility(ctx, in)
	default:
		return fmt.Errorf("rules: unknown business rule %q", rule)
	}
}

// checkAvailability verifies the requested slot is free. It understands all
// platform variants of the booking creation payload.
func (c *Checker) checkAvailability(ctx context.Context, in Input) error {
	var serviceID string
	var startsAt time.Time
	switch p := in.Payload.(type) {
	case *schemas.CreateBookingRequest:
		serviceID, startsAt = p.ServiceID, p.StartsAt
	case *schemas.MiniAppCreateBookingRequest:
		serviceID, startsAt = p.ServiceID, p.StartsAt
	case *schemas.BotCreateBookingRequest:
		serviceID, startsAt = p.ServiceID, p.StartsAt
	default:
		return errors.New("booking payload is missing")
	}
	svc, err := repo.GetService(ctx, c.DB, serviceID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return services.ErrServiceNotFound
		}
		return err
	}
	return c.Bookings.CheckAvailability(ctx, svc.SpecialistID, startsAt, svc.DurationMin)
}

// checkSpecialistOwnership requires the acting principal to be a specialist
// (or admin) for service-publishing operations.
func (c *Checker) checkSpecialistOwnership(in Input) error {
	if in.Principal == nil {
		return errors.New("authentication required for this operation")
	}
	if in.Principal.Role != domain.RoleSpecialist && in.Principal.Role != domain.RoleAdmin {
		return errors.New("only specialists can manage services")
	}
	return nil
}

// checkModificationWindow refuses changes to bookings that start too soon.
func (c *Checker) checkModificationWindow(ctx context.Context, in Input) error {
	id := in.Params[repo.ParamBookingID]
	if id == "" {
		return errors.New("booking id is missing")
	}
	b, err := repo.GetBooking(ctx, c.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return services.ErrBookingNotFound
		}
		return err
	}
	if time.Until(b.StartsAt) < modificationWindow {
		return fmt.Errorf("booking can no longer be modified less than %s before start", modificationWindow)
	}
	return nil
}

// checkPaymentAmount verifies a checkout matches the booked price exactly.
func (c *Checker) checkPaymentAmount(ctx context.Context, in Input) error {
	p, ok := in.Payload.(*schemas.CreatePaymentRequest)
	if !ok {
		return errors.New("payment payload is missing")
	}
	b, err := repo.GetBooking(ctx, c.DB, p.BookingID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return services.ErrBookingNotFound
		}
		return err
	}
	if p.AmountCents != b.PriceCents {
		return errors.New("payment amount does not match the booking price")
	}
	return nil
}

// checkReviewEligibility allows a review only from the booking's customer and
// only after completion.
func (c *Checker) checkReviewEligibility(ctx context.Context, in Input) error {
	p, ok := in.Payload.(*schemas.CreateReviewRequest)
	if !ok {
		return errors.New("review payload is missing")
	}
	if in.Principal == nil {
		return errors.New("authentication required for this operation")
	}
	b, err := repo.GetBooking(ctx, c.DB, p.BookingID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return services.ErrBookingNotFound
		}
		return err
	}
	if b.CustomerID != in.Principal.ID {
		return errors.New("only the booking's customer can leave a review")
	}
	if b.Status != domain.BookingCompleted {
		return errors.New("reviews are allowed only after the booking is completed")
	}
	return nil
}
