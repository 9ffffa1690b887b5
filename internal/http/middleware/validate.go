// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements payload validation against the schema registry, the
// per-platform feature gate, and the business-rule hook stage.
//
// Validation resolves the schema name through the registry's namespace order
// (platform-specific → common → domain groups), binds the named request
// location into a fresh typed instance, and on success threads the validated
// value through the Gin context — handlers read it back with Validated*; the
// raw request is never patched with coerced data.
package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/bookline-app/bookline-backend/internal/http/httperr"
	"github.com/bookline-app/bookline-backend/internal/platform"
	"github.com/bookline-app/bookline-backend/internal/rules"
	"github.com/bookline-app/bookline-backend/internal/schemas"
)

// Location names the request part a schema validates.
type Location string

// Validated request locations.
const (
	InBody   Location = "body"
	InQuery  Location = "query"
	InParams Location = "params"
)

// ValidateRequest returns middleware that validates the given location
// against the named schema. The name is checked against the registry at
// route-registration time, so an unregistered name panics at startup instead
// of surfacing as a runtime 500.
//
// On success the typed, defaulted value is stored in the context. On
// validation failure the client receives 400 VALIDATION_ERROR with a
// field-level detail list, and a warning is logged with the platform and
// schema name.
func ValidateRequest(name schemas.Name, loc Location) gin.HandlerFunc {
	schemas.MustResolve(name)
	return func(c *gin.Context) {
		plat := PlatformFrom(c)
		schema, ok := schemas.Resolve(name, plat)
		if !ok {
			// Registry drift after startup checks is a programmer error.
			panic(fmt.Sprintf("middleware: schema %q unresolved for platform %q", name, plat))
		}
		dst := schema.New()

		var err error
		switch loc {
		case InQuery:
			err = c.ShouldBindQuery(dst)
		case InParams:
			err = c.ShouldBindUri(dst)
		default:
			err = c.ShouldBindJSON(dst)
		}
		if err != nil {
			details := fieldErrors(err)
			LoggerFrom(c).Warn().
				Str("schema", string(name)).
				Str("platform", string(plat)).
				Str("location", string(loc)).
				Int("violations", len(details)).
				Msg("request validation failed")
			httperr.AbortWithDetails(c, http.StatusBadRequest,
				httperr.CodeValidation, "Validation failed", details)
			return
		}
		c.Set(ctxKeyValidated+string(loc), dst)
		c.Next()
	}
}

// Validated returns the typed value stored by ValidateRequest for a location.
func Validated(c *gin.Context, loc Location) any {
	v, _ := c.Get(ctxKeyValidated + string(loc))
	return v
}

// ValidatedBody is shorthand for Validated(c, InBody).
func ValidatedBody(c *gin.Context) any { return Validated(c, InBody) }

// fieldErrors converts a binding failure into the structured detail list.
// Non-validator errors (malformed JSON, type mismatches) become a single
// body-level entry.
func fieldErrors(err error) []httperr.FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]httperr.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, httperr.FieldError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed %q validation", fe.Tag()),
				Code:    fe.Tag(),
			})
		}
		return out
	}
	return []httperr.FieldError{{
		Field:   "body",
		Message: "request payload could not be parsed",
		Code:    "invalid_payload",
	}}
}

// RequireFeature returns middleware that refuses the request when the
// classified platform's client surface does not support the named feature.
func RequireFeature(f platform.Feature) gin.HandlerFunc {
	return func(c *gin.Context) {
		plat := PlatformFrom(c)
		if !platform.HasFeature(plat, f) {
			httperr.Abort(c, http.StatusForbidden, httperr.CodeFeatureMissing,
				fmt.Sprintf("Feature %q is not available on platform %q", f, plat))
			return
		}
		c.Next()
	}
}

// ValidateBusinessRules returns middleware that runs one named business
// check between validation and the handler. Any check failure is surfaced as
// 400 BUSINESS_RULE_VIOLATION carrying the check's message; an empty message
// falls back to a generic one. The rule name is verified at registration.
func ValidateBusinessRules(checker *rules.Checker, rule rules.Rule) gin.HandlerFunc {
	rules.MustKnow(rule)
	return func(c *gin.Context) {
		params := make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = p.Value
		}
		in := rules.Input{
			Principal: PrincipalFrom(c),
			Payload:   ValidatedBody(c),
			Params:    params,
		}
		if err := checker.Check(c.Request.Context(), rule, in); err != nil {
			msg := err.Error()
			if msg == "" {
				msg = "Business rule violation"
			}
			LoggerFrom(c).Warn().
				Str("rule", string(rule)).
				Err(err).
				Msg("business rule rejected request")
			httperr.Abort(c, http.StatusBadRequest, httperr.CodeBusinessRule, msg)
			return
		}
		c.Next()
	}
}
