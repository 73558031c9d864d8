package message

import (
	"context"
	"time"
)

// Repository defines the persistence operations for the message log.
//
// It is implemented by the in-memory store and the GORM store, while the
// service layer depends only on this interface.
type Repository interface {
	// Create assigns an id and timestamp to m and stores it.
	Create(ctx context.Context, m *Message) error

	// List returns up to limit messages, most recent first.
	List(ctx context.Context, limit int) ([]*Message, error)

	// Get returns the message with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (*Message, error)

	// Stats computes the rolling 24h/7d counts relative to now.
	Stats(ctx context.Context, now time.Time) (Stats, error)
}
