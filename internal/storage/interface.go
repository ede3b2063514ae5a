package storage

import (
	"context"
)

// Key names a value held in the local profile store
type Key string

// Keys persisted by the client
const (
	KeyPlayerID   Key = "player_id"
	KeyAdminToken Key = "admin_token"
)

// Store is the durable key-value capability backing the local profile.
// Load returns model.ErrNotFound when the key has never been saved or was cleared.
type Store interface {
	Load(ctx context.Context, key Key) (string, error)
	Save(ctx context.Context, key Key, value string) error
	Clear(ctx context.Context, key Key) error
}
