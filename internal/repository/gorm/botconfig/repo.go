// Package botconfiggorm stores the auto-reply configuration in Postgres.
package botconfiggorm

import (
	"context"
	"errors"

	"github.com/oggyb/wa-autoreply/internal/db"
	"github.com/oggyb/wa-autoreply/internal/domain/botconfig"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// singletonID is the primary key of the only configuration row.
const singletonID = "00000000-0000-0000-0000-000000000001"

// Repository keeps exactly one configuration row. The row is created from
// the defaults the first time it is read.
type Repository struct {
	db       *gorm.DB
	defaults botconfig.Config
}

// NewRepository constructs a configuration repository using the given DB adapter.
func NewRepository(d db.DB, defaults botconfig.Config) *Repository {
	return &Repository{
		db:       d.Conn().(*gorm.DB),
		defaults: defaults,
	}
}

// Migrate creates or updates the bot_config table.
func Migrate(d db.DB) error {
	return d.Conn().(*gorm.DB).AutoMigrate(&ConfigModel{})
}

// GetConfig returns the stored configuration, creating it if missing.
func (r *Repository) GetConfig(ctx context.Context) (botconfig.Config, error) {
	var cfg botconfig.Config
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := r.loadOrCreate(tx, false)
		if err != nil {
			return err
		}
		cfg = toDomain(m)
		return nil
	})
	return cfg, err
}

// UpdateConfig merges p into the stored row inside a locking transaction.
func (r *Repository) UpdateConfig(ctx context.Context, p botconfig.Patch) (botconfig.Config, error) {
	if err := p.Validate(); err != nil {
		return botconfig.Config{}, err
	}

	var cfg botconfig.Config
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := r.loadOrCreate(tx, true)
		if err != nil {
			return err
		}

		cfg = p.Apply(toDomain(m))
		return tx.Save(fromDomain(cfg)).Error
	})
	if err != nil {
		return botconfig.Config{}, err
	}
	return cfg, nil
}

func (r *Repository) loadOrCreate(tx *gorm.DB, lock bool) (*ConfigModel, error) {
	m, err := load(tx, lock)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Concurrent first reads race on the fixed key; the loser's insert is a no-op.
	if err := insertDefaults(tx, r.defaults).Error; err != nil {
		return nil, err
	}
	return load(tx, lock)
}

func load(tx *gorm.DB, lock bool) (*ConfigModel, error) {
	q := tx
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var m ConfigModel
	if err := q.First(&m, "id = ?", singletonID).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func insertDefaults(tx *gorm.DB, defaults botconfig.Config) *gorm.DB {
	row := fromDomain(defaults)
	row.ID = singletonID
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
}

// compile-time interface check
var _ botconfig.Repository = (*Repository)(nil)
