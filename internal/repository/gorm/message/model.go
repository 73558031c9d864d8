package messagegorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageModel is the GORM persistence model for the message log.
// It maps directly to the "messages" table in Postgres.
type MessageModel struct {
	ID                string    `gorm:"type:uuid;primaryKey"`
	ProviderMessageID *string   `gorm:"size:64;index"`
	From              string    `gorm:"column:from_addr;size:64;not null"`
	To                string    `gorm:"column:to_addr;size:64;not null"`
	Body              string    `gorm:"type:text;not null"`
	Direction         string    `gorm:"size:16;not null;index"`
	Status            string    `gorm:"size:16;not null"`
	CreatedAt         time.Time `gorm:"not null;index"`
}

// TableName overrides the default table name used by GORM.
func (MessageModel) TableName() string {
	return "messages"
}

// BeforeCreate ensures a UUID is set before inserting a new record.
func (m *MessageModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// statsRow receives the conditional counts of the stats query.
type statsRow struct {
	Received24h int64 `gorm:"column:received_24h"`
	Sent24h     int64 `gorm:"column:sent_24h"`
	Received7d  int64 `gorm:"column:received_7d"`
	Sent7d      int64 `gorm:"column:sent_7d"`
}
