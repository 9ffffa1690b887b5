// Package handlers — upload registration. Clients register file metadata
// first and then PUT the bytes to the returned location; byte transport is
// served by the static file layer, not this API.
package handlers

import (
	"fmt"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bookline-app/bookline-backend/internal/http/httperr"
	"github.com/bookline-app/bookline-backend/internal/http/middleware"
	"github.com/bookline-app/bookline-backend/internal/schemas"
)

// allowedMimeTypes is the closed set of accepted upload content types.
var allowedMimeTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"application/pdf": {},
}

// UploadHandler serves the /upload endpoints.
type UploadHandler struct {
	// BaseURL prefixes the returned upload location.
	BaseURL string
}

// Register validates upload metadata and hands back a storage location. The
// mime allow-list is enforced here rather than in the schema because the set
// is deployment policy, not payload shape.
func (h *UploadHandler) Register(c *gin.Context) error {
	req := middleware.ValidatedBody(c).(*schemas.UploadFileRequest)
	if _, allowed := allowedMimeTypes[req.MimeType]; !allowed {
		return &httperr.ValidationError{
			Message: fmt.Sprintf("Unsupported content type %q", req.MimeType),
			Details: []httperr.FieldError{{
				Field: "mimeType", Message: "content type not allowed", Code: "mime_type",
			}},
		}
	}

	id := uuid.NewString()
	key := path.Join("uploads", middleware.UserIDFrom(c), id+path.Ext(req.FileName))
	created(c, gin.H{
		"fileId":    id,
		"key":       key,
		"uploadUrl": h.BaseURL + "/" + key,
	})
	return nil
}
