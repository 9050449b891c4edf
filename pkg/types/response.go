// Package types holds the wire envelopes every storefront endpoint speaks:
// success bodies wrap their payload under "data", failures carry a coded
// error object. Shared here so controller tests and clients can decode
// responses without importing the handlers.
package types

// SuccessEnvelope wraps a successful payload (a cart view, a product page,
// a checkout quote) under the "data" key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public face of a failure: a stable machine-readable code,
// a safe message, and optional details such as per-field validation errors.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope is the body of every non-2xx response.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
