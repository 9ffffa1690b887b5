// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Service
// model and the service search used by the public catalog.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookline-app/bookline-backend/internal/domain"
)

// CreateService publishes a new offering for a specialist.
func CreateService(ctx context.Context, db *gorm.DB, specialistID, title, description string, priceCents int64, durationMin int) (*domain.Service, error) {
	s := &domain.Service{
		ID:           uuid.NewString(),
		SpecialistID: specialistID,
		Title:        title,
		Description:  description,
		PriceCents:   priceCents,
		DurationMin:  durationMin,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetService fetches a service by id. Returns ErrNotFound when missing.
func GetService(ctx context.Context, db *gorm.DB, id string) (*domain.Service, error) {
	var s domain.Service
	if err := db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// SearchServices lists active services whose title or description matches the
// query substring, newest first. An empty query lists everything.
func SearchServices(ctx context.Context, db *gorm.DB, query string, offset, limit int) ([]domain.Service, error) {
	q := db.WithContext(ctx).Where("is_active = ?", true)
	if t := strings.TrimSpace(query); t != "" {
		like := "%" + t + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	var out []domain.Service
	err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&out).Error
	return out, err
}
