// Package redact strips sensitive material from JSON-like values and header
// maps before they reach logs. All transforms are pure: inputs are never
// mutated, and the output is a deep copy with sensitive leaves replaced by a
// fixed marker. Inputs are expected to be deserialized request payloads
// (maps, slices, scalars) and are therefore acyclic.
package redact

import "net/http"

// Marker is the fixed replacement for every redacted value. It is
// deliberately non-reversible and constant so log pipelines can match it.
const Marker = "[REDACTED]"

// sensitiveFields is the closed set of object keys whose values are always
// redacted, at any nesting depth. Matching is case-sensitive and exact.
var sensitiveFields = map[string]struct{}{
	"password":        {},
	"currentPassword": {},
	"newPassword":     {},
	"token":           {},
	"accessToken":     {},
	"refreshToken":    {},
	"creditCard":      {},
	"cardNumber":      {},
	"cvv":             {},
	"ssn":             {},
	"apiKey":          {},
	"secret":          {},
	"botToken":        {},
	"initData":        {},
	"stripeToken":     {},
	"paymentMethodId": {},
}

// sensitiveHeaders are masked wholesale in Headers output. Header names are
// canonicalized by net/http, so both casings are listed defensively where the
// canonical form differs from the wire form.
var sensitiveHeaders = map[string]struct{}{
	"Authorization": {},
	"Cookie":        {},
	"Set-Cookie":    {},
}

// Value returns a deep copy of v with every sensitive field replaced by
// Marker. Maps and slices are walked recursively; scalars pass through
// unchanged. The input is never mutated.
func Value(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if _, hit := sensitiveFields[k]; hit {
				out[k] = Marker
				continue
			}
			out[k] = Value(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Value(val)
		}
		return out
	default:
		return v
	}
}

// Headers returns a flattened copy of h with authorization and cookie values
// replaced by Marker. Multi-valued headers are joined by the caller's
// http.Header semantics (first value wins here, which is sufficient for
// logging).
func Headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if len(vv) == 0 {
			continue
		}
		if _, hit := sensitiveHeaders[http.CanonicalHeaderKey(k)]; hit {
			out[k] = Marker
			continue
		}
		out[k] = vv[0]
	}
	return out
}

// IsSensitiveField reports whether a key belongs to the redacted set.
// Exposed for tests and for callers that need to pre-check single fields.
func IsSensitiveField(key string) bool {
	_, ok := sensitiveFields[key]
	return ok
}
