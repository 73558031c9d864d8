package botconfiggorm

import (
	"github.com/google/uuid"
	"github.com/oggyb/wa-autoreply/internal/domain/botconfig"
	"gorm.io/gorm"
)

// ConfigModel is the single row of the "bot_config" table.
type ConfigModel struct {
	ID                   string `gorm:"type:uuid;primaryKey"`
	AutoReplyEnabled     bool   `gorm:"not null"`
	AutoReplyMessage     string `gorm:"type:text;not null"`
	ResponseDelaySeconds int    `gorm:"not null"`
}

// TableName overrides the default table name used by GORM.
func (ConfigModel) TableName() string {
	return "bot_config"
}

// BeforeCreate ensures a UUID is set before inserting the row.
func (m *ConfigModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func toDomain(m *ConfigModel) botconfig.Config {
	return botconfig.Config{
		ID:                   m.ID,
		AutoReplyEnabled:     m.AutoReplyEnabled,
		AutoReplyMessage:     m.AutoReplyMessage,
		ResponseDelaySeconds: m.ResponseDelaySeconds,
	}
}

func fromDomain(c botconfig.Config) *ConfigModel {
	return &ConfigModel{
		ID:                   c.ID,
		AutoReplyEnabled:     c.AutoReplyEnabled,
		AutoReplyMessage:     c.AutoReplyMessage,
		ResponseDelaySeconds: c.ResponseDelaySeconds,
	}
}
