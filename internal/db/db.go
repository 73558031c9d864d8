// Package db defines the storage port shared by the SQL-backed repositories.
package db

import "context"

// DB is a generic database port so repositories do not depend on how the
// connection was opened. Conn returns the driver-specific handle.
type DB interface {
	Conn() any
	Ping(ctx context.Context) error
	Close() error
}
