// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the authenticator: bearer-token verification, the
// cached principal lookup, and the authorization gates built on top of it.
//
// Variants:
//   - Required(): missing/invalid credentials abort with 401.
//   - Optional(): failures are swallowed; the chain continues anonymous.
//   - Soft(): like Optional but stores an explicit nil principal so
//     downstream code reading the key always finds it set.
//   - RequireRole(roles...): 403 unless the attached principal's role is in
//     the allowed set. RequireAdmin / RequireSpecialist / RequireCustomer
//     fix the set to one role.
//   - RequireOwnership(param): loads the minimal ownership projection for
//     the resource named by the route parameter and grants access to its
//     parties and to admins.
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/bookline-app/bookline-backend/internal/cache"
	"github.com/bookline-app/bookline-backend/internal/domain"
	"github.com/bookline-app/bookline-backend/internal/http/httperr"
	"github.com/bookline-app/bookline-backend/internal/repo"
	"github.com/bookline-app/bookline-backend/internal/token"
)

// Authenticator verifies bearer credentials and resolves principals through
// the cache. All methods return middleware; the struct itself is stateless
// beyond its collaborators.
type Authenticator struct {
	Tokens *token.Manager
	Cache  *cache.PrincipalCache
	DB     *gorm.DB
}

// bearerToken extracts the token from the Authorization header. The header
// must use the "Bearer " scheme; anything else is treated as absent.
func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[len("Bearer "):])
}

// resolve verifies the token and loads the principal snapshot. It reports
// the failure class through the returned error:
//   - jwt sentinel errors for token problems,
//   - errNoPrincipal when the account no longer exists,
//   - errInactive when the account is deactivated,
//   - anything else is a downstream failure.
func (a *Authenticator) resolve(c *gin.Context) (*domain.Principal, error) {
	raw := bearerToken(c)
	if raw == "" {
		return nil, jwt.ErrTokenMalformed
	}
	claims, err := a.Tokens.Verify(raw)
	if err != nil {
		return nil, err
	}
	p, err := a.Cache.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errNoPrincipal
	}
	if !p.IsActive {
		return nil, errInactive
	}
	return p, nil
}

var (
	errNoPrincipal = errors.New("principal not found")
	errInactive    = errors.New("account is inactive")
)

// Required enforces authentication. Failure mapping:
//   - no/malformed/forged token → 401 AUTHENTICATION_REQUIRED
//   - expired token → 401 TOKEN_EXPIRED
//   - missing principal → 401 AUTHENTICATION_REQUIRED
//   - inactive account → 401 ACCESS_DENIED
//   - downstream failure → 500 INTERNAL_SERVER_ERROR
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := a.resolve(c)
		if err != nil {
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				httperr.Abort(c, http.StatusUnauthorized, httperr.CodeTokenExpired, "Token has expired")
			case errors.Is(err, errInactive):
				httperr.Abort(c, http.StatusUnauthorized, httperr.CodeAccessDenied, "Account is deactivated")
			case errors.Is(err, errNoPrincipal), isTokenError(err):
				httperr.Abort(c, http.StatusUnauthorized, httperr.CodeAuthRequired, "Authentication required")
			default:
				LoggerFrom(c).Error().Err(err).Msg("authentication lookup failed")
				httperr.Abort(c, http.StatusInternalServerError, httperr.CodeInternal, "Internal server error")
			}
			return
		}
		c.Set(ctxKeyPrincipal, p)
		c.Set(ctxKeyUserID, p.ID)
		c.Next()
	}
}

// Optional authenticates when possible and stays silent otherwise: any
// failure, including downstream errors, leaves the request anonymous.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if p, err := a.resolve(c); err == nil && p != nil {
			c.Set(ctxKeyPrincipal, p)
			c.Set(ctxKeyUserID, p.ID)
		}
		c.Next()
	}
}

// Soft behaves like Optional but always sets the principal key, storing an
// explicit nil on failure. Downstream code must treat absent and nil
// identically; this variant exists for handlers that read the key
// unconditionally.
func (a *Authenticator) Soft() gin.HandlerFunc {
	return func(c *gin.Context) {
		var p *domain.Principal
		if resolved, err := a.resolve(c); err == nil {
			p = resolved
		}
		c.Set(ctxKeyPrincipal, p)
		if p != nil {
			c.Set(ctxKeyUserID, p.ID)
		}
		c.Next()
	}
}

// RequireRole gates on the attached principal's role. It must run after
// Required; an absent principal is a 401, a disallowed role a 403 naming the
// allowed set.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
		names = append(names, string(r))
	}
	msg := fmt.Sprintf("Requires one of roles: %s", strings.Join(names, ", "))
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if p == nil {
			httperr.Abort(c, http.StatusUnauthorized, httperr.CodeAuthRequired, "Authentication required")
			return
		}
		if _, ok := allowed[p.Role]; !ok {
			httperr.Abort(c, http.StatusForbidden, httperr.CodeInsufficientPerm, msg)
			return
		}
		c.Next()
	}
}

// Convenience wrappers fixing the allowed set to a single role.
func RequireAdmin() gin.HandlerFunc      { return RequireRole(domain.RoleAdmin) }
func RequireSpecialist() gin.HandlerFunc { return RequireRole(domain.RoleSpecialist) }
func RequireCustomer() gin.HandlerFunc   { return RequireRole(domain.RoleCustomer) }

// RequireOwnership grants access when the attached principal is one of the
// parties of the resource named by paramName, or an admin.
//
// A genuinely missing resource also answers 403 rather than 404: the gate
// deliberately does not reveal whether a resource exists to callers who
// would not be allowed to see it anyway.
func (a *Authenticator) RequireOwnership(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if p == nil {
			httperr.Abort(c, http.StatusUnauthorized, httperr.CodeAuthRequired, "Authentication required")
			return
		}
		id := c.Param(paramName)
		if id == "" {
			httperr.Abort(c, http.StatusBadRequest, httperr.CodeValidation,
				fmt.Sprintf("Missing route parameter %q", paramName))
			return
		}
		if p.Role == domain.RoleAdmin {
			c.Next()
			return
		}
		parties, found, err := repo.Parties(c.Request.Context(), a.DB, paramName, id)
		if err != nil {
			LoggerFrom(c).Error().Err(err).
				Str("param", paramName).
				Str("resource_id", id).
				Msg("ownership lookup failed")
			httperr.Abort(c, http.StatusInternalServerError, httperr.CodeInternal, "Internal server error")
			return
		}
		if found {
			for _, owner := range parties {
				if owner == p.ID {
					c.Next()
					return
				}
			}
		}
		httperr.Abort(c, http.StatusForbidden, httperr.CodeAccessDenied, "Access denied")
	}
}

// isTokenError reports whether err belongs to the jwt/v5 error family.
func isTokenError(err error) bool {
	return errors.Is(err, jwt.ErrTokenMalformed) ||
		errors.Is(err, jwt.ErrTokenSignatureInvalid) ||
		errors.Is(err, jwt.ErrTokenUnverifiable) ||
		errors.Is(err, jwt.ErrTokenInvalidClaims) ||
		errors.Is(err, jwt.ErrTokenNotValidYet) ||
		errors.Is(err, jwt.ErrTokenExpired)
}
