// Package whatsapp exposes a minimal gateway for sending WhatsApp messages
// through an external provider and checking that the provider is usable.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured is returned when provider credentials are missing.
var ErrNotConfigured = errors.New("whatsapp provider not configured")

// Client is the contract for a messaging provider implementation.
// Failures are reported, never retried.
type Client interface {
	// Send delivers body to the given address and returns the provider
	// message id.
	Send(ctx context.Context, to, body string) (messageID string, err error)

	// Health checks whether the provider is reachable with the current credentials.
	Health(ctx context.Context) error

	// PhoneNumber returns the sending number configured for the provider.
	PhoneNumber(ctx context.Context) (string, error)
}

// APIError is a request the provider answered with a non-2xx status.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("provider returned %d (code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("provider returned %d: %s", e.StatusCode, e.Message)
}

const addressPrefix = "whatsapp:"

// Address adds the whatsapp: channel prefix to a phone number if missing.
func Address(number string) string {
	number = strings.TrimSpace(number)
	if number == "" || strings.HasPrefix(number, addressPrefix) {
		return number
	}
	return addressPrefix + number
}
