// Package payments defines the boundary types for the external payment
// gateway. Integration logic lives outside this repository; what matters
// here is the error family the gateway surfaces, which the terminal error
// mapper translates into user-facing responses without leaking provider
// internals.
package payments

import (
	"errors"
	"fmt"
	"strings"
)

// TypePrefix marks every error originating from the payment provider.
const TypePrefix = "stripe_"

// Gateway error sub-types, dispatched exactly by the error mapper.
const (
	TypeCardError           = TypePrefix + "card_error"
	TypeRateLimitError      = TypePrefix + "rate_limit_error"
	TypeInvalidRequestError = TypePrefix + "invalid_request_error"
	TypeAPIError            = TypePrefix + "api_error"
	TypeConnectionError     = TypePrefix + "api_connection_error"
	TypeAuthenticationError = TypePrefix + "authentication_error"
)

// GatewayError is the provider failure shape. Type always starts with
// TypePrefix; Code and DeclineCode carry provider-specific detail that must
// never reach production responses.
type GatewayError struct {
	Type        string
	Code        string
	DeclineCode string
	Message     string
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway: %s (%s): %s", e.Type, e.Code, e.Message)
}

// IsGatewayError reports whether err belongs to the provider error family
// and, when it does, returns the typed value.
func IsGatewayError(err error) (*GatewayError, bool) {
	var ge *GatewayError
	if !errors.As(err, &ge) || ge == nil {
		return nil, false
	}
	return ge, strings.HasPrefix(ge.Type, TypePrefix)
}
