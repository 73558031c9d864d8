package messagegorm

import (
	"context"
	"errors"
	"time"

	"github.com/oggyb/wa-autoreply/internal/db"
	"github.com/oggyb/wa-autoreply/internal/domain/message"
	"gorm.io/gorm"
)

// Repository is a GORM-backed implementation of the message.Repository interface.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a message repository using the given DB adapter.
func NewRepository(d db.DB) *Repository {
	return &Repository{
		db: d.Conn().(*gorm.DB),
	}
}

// Migrate creates or updates the messages table.
func Migrate(d db.DB) error {
	return d.Conn().(*gorm.DB).AutoMigrate(&MessageModel{})
}

// Create inserts a new message record, stamping id and timestamp first.
func (r *Repository) Create(ctx context.Context, msg *message.Message) error {
	msg.Stamp(time.Now().UTC())
	return r.db.WithContext(ctx).Create(fromDomain(msg)).Error
}

// List returns the newest messages first. The id breaks timestamp ties so
// repeated reads of the same rows come back in the same order.
func (r *Repository) List(ctx context.Context, limit int) ([]*message.Message, error) {
	if limit <= 0 {
		limit = message.DefaultListLimit
	}

	var models []MessageModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	return toDomainMany(models), nil
}

// Get loads a single message by id.
func (r *Repository) Get(ctx context.Context, id string) (*message.Message, error) {
	var m MessageModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, message.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomain(&m), nil
}

// Stats computes all four rolling counts in a single query over the last
// seven days of rows.
func (r *Repository) Stats(ctx context.Context, now time.Time) (message.Stats, error) {
	dayAgo := now.Add(-message.Window24h)
	weekAgo := now.Add(-message.Window7d)
	in := string(message.DirectionInbound)
	out := string(message.DirectionOutbound)

	var row statsRow
	err := r.db.WithContext(ctx).
		Model(&MessageModel{}).
		Select(
			"COUNT(*) FILTER (WHERE direction = ? AND created_at >= ?) AS received_24h, "+
				"COUNT(*) FILTER (WHERE direction = ? AND created_at >= ?) AS sent_24h, "+
				"COUNT(*) FILTER (WHERE direction = ?) AS received_7d, "+
				"COUNT(*) FILTER (WHERE direction = ?) AS sent_7d",
			in, dayAgo, out, dayAgo, in, out,
		).
		Where("created_at >= ?", weekAgo).
		Scan(&row).Error
	if err != nil {
		return message.Stats{}, err
	}

	return message.Stats{
		TotalReceived24h: row.Received24h,
		TotalSent24h:     row.Sent24h,
		TotalReceived7d:  row.Received7d,
		TotalSent7d:      row.Sent7d,
	}, nil
}

// compile-time interface check
var _ message.Repository = (*Repository)(nil)
