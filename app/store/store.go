// Package store provides persistence for visitor preference records.
package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a key is not found in the store.
var ErrNotFound = errors.New("key not found")

// PrefInfo holds metadata for a stored preference record.
type PrefInfo struct {
	Key       string    `db:"key" json:"key"`
	Size      int       `db:"size" json:"size"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
