package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/bookline-app/bookline-backend/internal/domain"
	"github.com/bookline-app/bookline-backend/internal/repo"
)

func seedOffering(t *testing.T, db *gorm.DB) (customerID string, svc *domain.Service) {
	t.Helper()
	ctx := context.Background()
	spec, err := repo.CreateUser(ctx, db, "spec@example.com", "x", "Spec", domain.RoleSpecialist)
	if err != nil {
		t.Fatalf("specialist: %v", err)
	}
	cust, err := repo.CreateUser(ctx, db, "cust@example.com", "x", "Cust", domain.RoleCustomer)
	if err != nil {
		t.Fatalf("customer: %v", err)
	}
	s, err := repo.CreateService(ctx, db, spec.ID, "Haircut", "", 4500, 30)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return cust.ID, s
}

func TestBooking_Create(t *testing.T) {
	db := newTestDB(t)
	svc := &BookingService{DB: db}
	ctx := context.Background()
	customerID, offering := seedOffering(t, db)
	startsAt := time.Now().Add(48 * time.Hour)

	b, err := svc.Create(ctx, customerID, offering.ID, startsAt, "first visit")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.Status != domain.BookingPending || b.PriceCents != offering.PriceCents {
		t.Fatalf("booking = %+v", b)
	}

	// The specialist's slot is now taken, including partial overlaps.
	if _, err := svc.Create(ctx, customerID, offering.ID, startsAt, ""); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("same slot: %v", err)
	}
	if _, err := svc.Create(ctx, customerID, offering.ID, startsAt.Add(15*time.Minute), ""); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("overlapping slot: %v", err)
	}
	// Outside the overlap lookback the specialist is free again.
	if _, err := svc.Create(ctx, customerID, offering.ID, startsAt.Add(90*time.Minute), ""); err != nil {
		t.Fatalf("later slot: %v", err)
	}
}

func TestBooking_Create_Rejections(t *testing.T) {
	db := newTestDB(t)
	svc := &BookingService{DB: db}
	ctx := context.Background()
	customerID, offering := seedOffering(t, db)

	if _, err := svc.Create(ctx, customerID, offering.ID, time.Now().Add(-time.Hour), ""); !errors.Is(err, ErrPastStartTime) {
		t.Fatalf("past start: %v", err)
	}
	if _, err := svc.Create(ctx, customerID, "b5d1f842-0000-4000-8000-000000000000", time.Now().Add(time.Hour), ""); !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("missing service: %v", err)
	}

	if err := db.Model(&domain.Service{}).Where("id = ?", offering.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if _, err := svc.Create(ctx, customerID, offering.ID, time.Now().Add(time.Hour), ""); !errors.Is(err, ErrServiceInactive) {
		t.Fatalf("inactive service: %v", err)
	}
}

func TestBooking_CancelLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := &BookingService{DB: db}
	ctx := context.Background()
	customerID, offering := seedOffering(t, db)

	b, err := svc.Create(ctx, customerID, offering.ID, time.Now().Add(48*time.Hour), "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Cancel(ctx, b.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	got, err := svc.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.BookingCancelled {
		t.Fatalf("status = %q", got.Status)
	}

	if err := svc.Cancel(ctx, "b5d1f842-0000-4000-8000-000000000000"); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("cancel missing: %v", err)
	}
	if _, err := svc.Get(ctx, "b5d1f842-0000-4000-8000-000000000000"); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("get missing: %v", err)
	}
}
