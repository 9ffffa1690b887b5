// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the input sanitizer: a defense-in-depth stage that
// scrubs script-injection patterns from the JSON body, query string, and
// route parameters of every request before validation runs. It complements
// schema validation rather than replacing it.
package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bookline-app/bookline-backend/internal/sanitize"
)

// SanitizeInput returns middleware that rewrites the request with sanitized
// content:
//
//   - JSON bodies are decoded, every string leaf cleaned, and the body
//     replaced with the re-encoded result. The decoded (sanitized) value is
//     also stashed in the context so the error mapper can log a redacted
//     body without re-reading the stream. Non-JSON and empty bodies pass
//     through untouched.
//   - Query string values are cleaned in place.
//   - Route parameters are cleaned in place.
//
// Scrubbing failures never block the request; a body that does not parse is
// left for the validator to reject.
func SanitizeInput() gin.HandlerFunc {
	return func(c *gin.Context) {
		sanitizeBody(c)
		sanitizeQuery(c)
		sanitizeParams(c)
		c.Next()
	}
}

// sanitizeBody cleans JSON payloads. The body is restored byte-for-byte when
// it is empty, not JSON, or unparseable.
func sanitizeBody(c *gin.Context) {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return
	}
	ct := c.ContentType()
	if !strings.Contains(ct, "json") {
		return
	}
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Request.Body = io.NopCloser(bytes.NewReader(nil))
		return
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		return
	}
	clean := sanitize.Value(decoded)
	encoded, err := json.Marshal(clean)
	if err != nil {
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		return
	}
	c.Set(ctxKeyBody, clean)
	c.Request.Body = io.NopCloser(bytes.NewReader(encoded))
	c.Request.ContentLength = int64(len(encoded))
}

// sanitizeQuery cleans every query value and re-encodes the raw query.
func sanitizeQuery(c *gin.Context) {
	q := c.Request.URL.Query()
	changed := false
	for k, vv := range q {
		for i, v := range vv {
			if s := sanitize.String(v); s != v {
				vv[i] = s
				changed = true
			}
		}
		q[k] = vv
	}
	if changed {
		c.Request.URL.RawQuery = q.Encode()
	}
}

// sanitizeParams cleans route parameter values in place.
func sanitizeParams(c *gin.Context) {
	for i, p := range c.Params {
		if s := sanitize.String(p.Value); s != p.Value {
			c.Params[i].Value = s
		}
	}
}

// BodyFrom returns the sanitized, decoded JSON body when available. Used by
// the error mapper to log a redacted copy of what the client sent.
func BodyFrom(c *gin.Context) (any, bool) {
	return c.Get(ctxKeyBody)
}
