package payments

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Charge is the durable record of a gateway charge attempt.
type Charge struct {
	ID          string `json:"id"`
	BookingID   string `json:"bookingId"`
	AmountCents int64  `json:"amountCents"`
	Status      string `json:"status"`
}

// Charger abstracts the payment provider. The HTTP layer depends on this
// interface only; failures are reported as *GatewayError so the terminal
// mapper can classify them.
type Charger interface {
	Charge(ctx context.Context, bookingID, paymentMethodID string, amountCents int64) (*Charge, error)
}

// SimGateway is the offline provider used in development and tests. It
// dispatches on well-known payment method markers so every gateway error
// family stays reachable without network access.
type SimGateway struct{}

// Charge simulates a provider charge. Marker method ids trigger the matching
// provider failure; anything else succeeds.
func (SimGateway) Charge(_ context.Context, bookingID, paymentMethodID string, amountCents int64) (*Charge, error) {
	switch {
	case strings.HasSuffix(paymentMethodID, "_declined"):
		return nil, &GatewayError{
			Type:        TypeCardError,
			Code:        "card_declined",
			DeclineCode: "generic_decline",
			Message:     "Your card was declined.",
		}
	case strings.HasSuffix(paymentMethodID, "_rate_limited"):
		return nil, &GatewayError{
			Type:    TypeRateLimitError,
			Code:    "rate_limit",
			Message: "Too many requests hit the provider too quickly.",
		}
	case strings.HasSuffix(paymentMethodID, "_invalid"):
		return nil, &GatewayError{
			Type:    TypeInvalidRequestError,
			Code:    "parameter_invalid_empty",
			Message: "Invalid payment method.",
		}
	case strings.HasSuffix(paymentMethodID, "_unavailable"):
		return nil, &GatewayError{
			Type:    TypeConnectionError,
			Code:    "api_connection_error",
			Message: "Could not reach the provider.",
		}
	}
	return &Charge{
		ID:          "ch_" + uuid.NewString(),
		BookingID:   bookingID,
		AmountCents: amountCents,
		Status:      "succeeded",
	}, nil
}
