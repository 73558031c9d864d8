package whatsapp

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Credentials identify the provider account used for sending.
// When APIKey is empty the account sid and AuthToken are used instead.
type Credentials struct {
	AccountSID   string
	APIKey       string
	APIKeySecret string
	AuthToken    string
	PhoneNumber  string
}

// Validate reports which required fields are missing.
func (c Credentials) Validate() error {
	var missing []string
	if c.AccountSID == "" {
		missing = append(missing, "account sid")
	}
	if c.APIKey == "" && c.AuthToken == "" {
		missing = append(missing, "api key or auth token")
	}
	if c.APIKey != "" && c.APIKeySecret == "" {
		missing = append(missing, "api key secret")
	}
	if c.PhoneNumber == "" {
		missing = append(missing, "phone number")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrNotConfigured, strings.Join(missing, ", "))
	}
	return nil
}

func (c Credentials) basicAuth() (user, pass string) {
	if c.APIKey != "" {
		return c.APIKey, c.APIKeySecret
	}
	return c.AccountSID, c.AuthToken
}

// CredentialsSource resolves credentials every time the gateway is used,
// so rotated secrets are picked up without a restart.
type CredentialsSource interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// StaticCredentials always returns the same credentials.
type StaticCredentials Credentials

func (s StaticCredentials) Credentials(context.Context) (Credentials, error) {
	c := Credentials(s)
	return c, c.Validate()
}

// EnvCredentials reads TWILIO_* variables from the process environment on
// every call.
type EnvCredentials struct{}

func (EnvCredentials) Credentials(context.Context) (Credentials, error) {
	c := Credentials{
		AccountSID:   strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID")),
		APIKey:       strings.TrimSpace(os.Getenv("TWILIO_API_KEY")),
		APIKeySecret: strings.TrimSpace(os.Getenv("TWILIO_API_KEY_SECRET")),
		AuthToken:    strings.TrimSpace(os.Getenv("TWILIO_AUTH_TOKEN")),
		PhoneNumber:  strings.TrimSpace(os.Getenv("TWILIO_PHONE_NUMBER")),
	}
	return c, c.Validate()
}
