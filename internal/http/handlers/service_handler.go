// Package handlers — catalog endpoints: public service search and
// specialist-owned service publication.
package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookline-app/bookline-backend/internal/http/middleware"
	"github.com/bookline-app/bookline-backend/internal/repo"
	"github.com/bookline-app/bookline-backend/internal/schemas"
	"github.com/bookline-app/bookline-backend/internal/utils"
)

// ServiceHandler serves the /search and /services endpoints.
type ServiceHandler struct {
	DB *gorm.DB
}

// Search lists active services matching the query. Public; no principal
// required.
func (h *ServiceHandler) Search(c *gin.Context) error {
	q := middleware.Validated(c, middleware.InQuery).(*schemas.SearchServicesQuery)
	offset, limit := utils.ClampPage(q.Offset, q.Limit, 20, 100)

	items, err := repo.SearchServices(c.Request.Context(), h.DB, q.Q, offset, limit)
	if err != nil {
		return err
	}
	ok(c, gin.H{"services": items, "offset": offset, "limit": limit})
	return nil
}

// Create publishes an offering owned by the authenticated specialist.
func (h *ServiceHandler) Create(c *gin.Context) error {
	req := middleware.ValidatedBody(c).(*schemas.CreateServiceRequest)
	s, err := repo.CreateService(c.Request.Context(), h.DB,
		middleware.UserIDFrom(c), req.Title, req.Description, req.PriceCents, req.DurationMin)
	if err != nil {
		return err
	}
	created(c, gin.H{"service": s})
	return nil
}
