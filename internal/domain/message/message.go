// Package message holds the domain model and invariants for WhatsApp messages.
package message

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultListLimit is how many messages are returned when no limit is given.
const DefaultListLimit = 100

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

type Status string

const (
	StatusReceived Status = "received"
	StatusSent     Status = "sent"
	StatusPending  Status = "pending"
	StatusFailed   Status = "failed"
)

var (
	// ErrEmptySender is returned when an inbound message has no sender address.
	ErrEmptySender = errors.New("sender address is required")
	// ErrEmptyRecipient is returned when an outbound message has no recipient address.
	ErrEmptyRecipient = errors.New("recipient address is required")
	// ErrEmptyBody is returned when the message body is empty.
	ErrEmptyBody = errors.New("message body is required")
	// ErrNotFound is returned by repositories when a message id is unknown.
	ErrNotFound = errors.New("message not found")
)

// Message is a single entry of the message log, either received from an
// end user or sent by the service.
type Message struct {
	ID                string
	ProviderMessageID string
	From              string
	To                string
	Body              string
	Direction         Direction
	Status            Status
	Timestamp         time.Time
}

// NewInbound builds a received message from a provider callback.
// The recipient and provider id are optional.
func NewInbound(from, to, body, providerID string) (*Message, error) {
	from = strings.TrimSpace(from)
	if from == "" {
		return nil, ErrEmptySender
	}
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}

	return &Message{
		ProviderMessageID: strings.TrimSpace(providerID),
		From:              from,
		To:                strings.TrimSpace(to),
		Body:              body,
		Direction:         DirectionInbound,
		Status:            StatusReceived,
	}, nil
}

// NewOutbound builds the record of a send attempt. A non-nil sendErr marks
// the message as failed and drops the provider id.
func NewOutbound(from, to, body, providerID string, sendErr error) (*Message, error) {
	if strings.TrimSpace(to) == "" {
		return nil, ErrEmptyRecipient
	}
	if body == "" {
		return nil, ErrEmptyBody
	}

	m := &Message{
		From:      from,
		To:        to,
		Body:      body,
		Direction: DirectionOutbound,
		Status:    StatusSent,
	}
	if sendErr != nil {
		m.Status = StatusFailed
		return m, nil
	}
	m.ProviderMessageID = providerID
	return m, nil
}

// Stamp assigns a fresh identifier and creation instant to a message that
// does not have them yet. Existing values are never overwritten.
func (m *Message) Stamp(now time.Time) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = now
	}
}

// Stats holds the rolling message counts shown on the dashboard.
type Stats struct {
	TotalReceived24h int64
	TotalSent24h     int64
	TotalReceived7d  int64
	TotalSent7d      int64
}

const (
	Window24h = 24 * time.Hour
	Window7d  = 7 * 24 * time.Hour
)

// CountStats computes Stats over msgs relative to now. Outbound messages are
// counted as sent regardless of their delivery outcome.
func CountStats(msgs []*Message, now time.Time) Stats {
	dayAgo := now.Add(-Window24h)
	weekAgo := now.Add(-Window7d)

	var s Stats
	for _, m := range msgs {
		inDay := !m.Timestamp.Before(dayAgo)
		inWeek := !m.Timestamp.Before(weekAgo)

		switch m.Direction {
		case DirectionInbound:
			if inDay {
				s.TotalReceived24h++
			}
			if inWeek {
				s.TotalReceived7d++
			}
		case DirectionOutbound:
			if inDay {
				s.TotalSent24h++
			}
			if inWeek {
				s.TotalSent7d++
			}
		}
	}
	return s
}
