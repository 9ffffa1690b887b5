// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response utilities shared by all endpoints. Success
// responses carry the payload under "data" with success=true; every error
// path flows through the terminal error mapper, never through ad-hoc writes
// here. Handlers are written as error-returning functions and adapted with
// Wrap so a returned (or otherwise escaped) error always reaches the mapper.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HandlerFunc is a route handler that reports failures by returning an
// error instead of writing a response.
type HandlerFunc func(c *gin.Context) error

// Wrap adapts a HandlerFunc to gin: a returned error is recorded on the
// context and the chain aborted, handing classification to the terminal
// error mapper. Pure control-flow; no retries.
func Wrap(fn HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := fn(c); err != nil {
			_ = c.Error(err)
			c.Abort()
		}
	}
}

// envelope is the uniform success shape.
type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ok writes a 200 success envelope around body.
func ok(c *gin.Context, body any) {
	c.JSON(http.StatusOK, envelope{
		Success:   true,
		Data:      body,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// created writes a 201 success envelope around body.
func created(c *gin.Context, body any) {
	c.JSON(http.StatusCreated, envelope{
		Success:   true,
		Data:      body,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
