// Package storage defines the persisted shape of a session and the store contract.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/xtding233/sticker-gacha/internal/gacha"
)

// ErrNotFound is returned when no record exists for a session id.
var ErrNotFound = errors.New("record not found")

// SessionRecord is everything needed to rebuild a session after eviction or restart.
type SessionRecord struct {
	ID          string             `json:"-"`
	GameVersion string             `json:"game_version"`
	State       gacha.SessionState `json:"state"`
	Owned       map[string]int     `json:"owned"`
	Balance     int                `json:"-"`
	UpdatedAt   time.Time          `json:"-"`
}

// SessionStore persists session records.
type SessionStore interface {
	SaveSession(ctx context.Context, rec SessionRecord) error
	LoadSession(ctx context.Context, id string) (SessionRecord, error)
}
