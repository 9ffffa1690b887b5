// Package domain defines the persistence models for the booking marketplace:
// users (customers, specialists, admins), the services specialists offer,
// bookings placed by customers, and reviews left after completed bookings.
// These types are mapped with GORM and form the core data layer of the
// application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Role tags a user account with its marketplace persona.
type Role string

// Enumerated user roles. The set is closed; authorization middleware
// compares against these values.
const (
	RoleCustomer   Role = "customer"
	RoleSpecialist Role = "specialist"
	RoleAdmin      Role = "admin"
)

// User represents an account on the platform. A user is either a customer
// booking services, a specialist offering them, or an admin.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Email: unique login identifier.
//   - PasswordHash: bcrypt hash; never serialized.
//   - Name: display name shown in listings and bookings.
//   - Role: customer | specialist | admin (enforced by DB constraint).
//   - IsActive: deactivated accounts are refused authentication.
//   - TelegramID: set for accounts created or linked via Telegram; unique.
//   - AvatarURL: optional profile image reference.
//   - LoyaltyPoints: accumulated loyalty counter (domain logic out of scope here).
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker.
type User struct {
	ID            string         `json:"id"             gorm:"type:char(36);primaryKey"`
	Email         string         `json:"email"          gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash  string         `json:"-"              gorm:"type:varchar(255);not null"`
	Name          string         `json:"name"           gorm:"type:varchar(128);not null"`
	Role          Role           `json:"role"           gorm:"type:varchar(16);not null;default:'customer';check:role IN ('customer','specialist','admin')"`
	IsActive      bool           `json:"is_active"      gorm:"not null;default:true"`
	TelegramID    *int64         `json:"-"              gorm:"uniqueIndex"`
	AvatarURL     string         `json:"avatar_url,omitempty" gorm:"type:varchar(512)"`
	LoyaltyPoints int            `json:"loyalty_points" gorm:"not null;default:0"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-"              gorm:"index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Service is an offering published by a specialist (e.g. a haircut or a
// consultation slot type). Customers search services and book them.
//
// Fields:
//   - ID: UUID primary key.
//   - SpecialistID: owning specialist; indexed for per-specialist listings.
//   - Title / Description: listing copy.
//   - PriceCents: price in minor currency units.
//   - DurationMin: slot length in minutes.
//   - IsActive: withdrawn services stay for history but are not bookable.
type Service struct {
	ID           string         `json:"id"            gorm:"type:char(36);primaryKey"`
	SpecialistID string         `json:"specialist_id" gorm:"type:char(36);not null;index:idx_specialist_services"`
	Title        string         `json:"title"         gorm:"type:varchar(255);not null"`
	Description  string         `json:"description"   gorm:"type:text"`
	PriceCents   int64          `json:"price_cents"   gorm:"not null"`
	DurationMin  int            `json:"duration_min"  gorm:"not null"`
	IsActive     bool           `json:"is_active"     gorm:"not null;default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"             gorm:"index"`

	// Specialist is the owning user. Services are cascade-deleted with it.
	Specialist User `json:"-" gorm:"foreignKey:SpecialistID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Service.
func (Service) TableName() string { return "services" }

// BookingStatus enumerates the lifecycle states of a booking.
type BookingStatus string

// Booking lifecycle states.
const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking links a customer, a specialist, and a service at a point in time.
// Ownership checks treat both the customer and the specialist as parties to
// the booking.
type Booking struct {
	ID           string         `json:"id"            gorm:"type:char(36);primaryKey"`
	CustomerID   string         `json:"customer_id"   gorm:"type:char(36);not null;index:idx_customer_bookings"`
	SpecialistID string         `json:"specialist_id" gorm:"type:char(36);not null;index:idx_specialist_bookings"`
	ServiceID    string         `json:"service_id"    gorm:"type:char(36);not null;index"`
	Status       BookingStatus  `json:"status"        gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','confirmed','completed','cancelled')"`
	StartsAt     time.Time      `json:"starts_at"     gorm:"not null;index"`
	PriceCents   int64          `json:"price_cents"   gorm:"not null"`
	Notes        string         `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"             gorm:"index"`

	Customer   User    `json:"-" gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Specialist User    `json:"-" gorm:"foreignKey:SpecialistID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Service    Service `json:"-" gorm:"foreignKey:ServiceID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Booking.
func (Booking) TableName() string { return "bookings" }

// Review is a customer's rating of a completed booking. One review per
// booking per customer (enforced by unique index).
type Review struct {
	ID         string         `json:"id"          gorm:"type:char(36);primaryKey"`
	BookingID  string         `json:"booking_id"  gorm:"type:char(36);not null;index;uniqueIndex:ux_review_booking_customer"`
	CustomerID string         `json:"customer_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_review_booking_customer"`
	Rating     int            `json:"rating"      gorm:"not null;check:rating BETWEEN 1 AND 5"`
	Comment    string         `json:"comment,omitempty" gorm:"type:text"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-"           gorm:"index"`

	Booking Booking `json:"-" gorm:"foreignKey:BookingID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Review.
func (Review) TableName() string { return "reviews" }

// Principal is the denormalized, non-sensitive snapshot of a user that the
// authentication layer caches and attaches to requests. It deliberately
// excludes the password hash and any other credential material.
type Principal struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          Role      `json:"role"`
	IsActive      bool      `json:"is_active"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	LoyaltyPoints int       `json:"loyalty_points"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PrincipalOf projects a full User row into its cacheable snapshot.
func PrincipalOf(u *User) *Principal {
	if u == nil {
		return nil
	}
	return &Principal{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		IsActive:      u.IsActive,
		AvatarURL:     u.AvatarURL,
		LoyaltyPoints: u.LoyaltyPoints,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
