// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the minimal ownership projections the
// authorization middleware loads to decide resource access: only the party
// ids are selected, never the full row.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bookline-app/bookline-backend/internal/domain"
)

// ErrUnknownOwnershipParam is a configuration error: a route used an
// ownership gate with a parameter name that has no registered projection.
var ErrUnknownOwnershipParam = errors.New("unknown ownership parameter")

// Route parameter names recognized by the ownership gate. Each is wired to a
// distinct resource projection below; adding a name means adding a case.
const (
	ParamBookingID = "bookingId"
	ParamServiceID = "serviceId"
	ParamReviewID  = "reviewId"
)

// Parties returns the user ids associated with the resource identified by a
// recognized route parameter name. The boolean reports whether the resource
// exists; lookup failures propagate as errors.
func Parties(ctx context.Context, db *gorm.DB, paramName, id string) ([]string, bool, error) {
	switch paramName {
	case ParamBookingID:
		var row struct {
			CustomerID   string
			SpecialistID string
		}
		err := db.WithContext(ctx).Model(&domain.Booking{}).
			Select("customer_id", "specialist_id").
			Where("id = ?", id).
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		return []string{row.CustomerID, row.SpecialistID}, true, nil

	case ParamServiceID:
		var row struct{ SpecialistID string }
		err := db.WithContext(ctx).Model(&domain.Service{}).
			Select("specialist_id").
			Where("id = ?", id).
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		return []string{row.SpecialistID}, true, nil

	case ParamReviewID:
		var row struct{ CustomerID string }
		err := db.WithContext(ctx).Model(&domain.Review{}).
			Select("customer_id").
			Where("id = ?", id).
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		return []string{row.CustomerID}, true, nil

	default:
		return nil, false, ErrUnknownOwnershipParam
	}
}
