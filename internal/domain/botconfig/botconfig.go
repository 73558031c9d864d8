// Package botconfig holds the auto-reply configuration singleton.
package botconfig

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const DefaultAutoReplyMessage = "Thanks for your message! We'll get back to you soon."

// MaxResponseDelaySeconds caps the configurable delay at one day.
const MaxResponseDelaySeconds = 24 * 60 * 60

var (
	// ErrNegativeDelay is returned when a patch sets a negative response delay.
	ErrNegativeDelay = errors.New("response delay must not be negative")

	// ErrDelayTooLarge is returned when a patch exceeds MaxResponseDelaySeconds.
	ErrDelayTooLarge = fmt.Errorf("response delay must not exceed %d seconds", MaxResponseDelaySeconds)
)

// Config controls whether and how inbound messages are answered.
type Config struct {
	ID                   string
	AutoReplyEnabled     bool
	AutoReplyMessage     string
	ResponseDelaySeconds int
}

// Default returns the configuration used when nothing has been stored yet.
func Default() Config {
	return Config{
		AutoReplyEnabled:     true,
		AutoReplyMessage:     DefaultAutoReplyMessage,
		ResponseDelaySeconds: 0,
	}
}

// ShouldReply reports whether an auto-reply has to be sent.
func (c Config) ShouldReply() bool {
	return c.AutoReplyEnabled && c.AutoReplyMessage != ""
}

// ResponseDelay returns the delay as a duration, clamped to
// [0, MaxResponseDelaySeconds] so stored values cannot overflow.
func (c Config) ResponseDelay() time.Duration {
	d := c.ResponseDelaySeconds
	if d <= 0 {
		return 0
	}
	if d > MaxResponseDelaySeconds {
		d = MaxResponseDelaySeconds
	}
	return time.Duration(d) * time.Second
}

// Patch is a partial update. Nil fields keep their current value.
type Patch struct {
	AutoReplyEnabled     *bool
	AutoReplyMessage     *string
	ResponseDelaySeconds *int
}

// Validate checks the fields that are set.
func (p Patch) Validate() error {
	if p.ResponseDelaySeconds == nil {
		return nil
	}
	switch d := *p.ResponseDelaySeconds; {
	case d < 0:
		return ErrNegativeDelay
	case d > MaxResponseDelaySeconds:
		return ErrDelayTooLarge
	}
	return nil
}

// Apply merges p into c field by field and returns the result.
func (p Patch) Apply(c Config) Config {
	if p.AutoReplyEnabled != nil {
		c.AutoReplyEnabled = *p.AutoReplyEnabled
	}
	if p.AutoReplyMessage != nil {
		c.AutoReplyMessage = *p.AutoReplyMessage
	}
	if p.ResponseDelaySeconds != nil {
		c.ResponseDelaySeconds = *p.ResponseDelaySeconds
	}
	return c
}

// Repository reads and updates the configuration singleton.
type Repository interface {
	GetConfig(ctx context.Context) (Config, error)
	UpdateConfig(ctx context.Context, p Patch) (Config, error)
}
