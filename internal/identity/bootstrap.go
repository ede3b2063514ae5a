// Package identity resolves the stable per-profile player id.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/minibeans/internal/dependencies/clock"
	"github.com/mcoot/minibeans/internal/dependencies/random"
	"github.com/mcoot/minibeans/internal/model"
	"github.com/mcoot/minibeans/internal/storage"
)

const (
	idPrefix     = "player_"
	suffixLength = 9
)

// Bootstrap creates the player id on first run and reuses it afterwards
type Bootstrap struct {
	store  storage.Store
	clock  clock.Clock
	random random.Random
	logger *slog.Logger
}

// New creates a Bootstrap over the given profile store
func New(store storage.Store, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Bootstrap {
	return &Bootstrap{
		store:  store,
		clock:  clk,
		random: rnd,
		logger: logger,
	}
}

// Resolve returns the stored player id, generating and persisting one if the
// profile has none. It never fails: storage problems are logged and a
// generated id is returned.
func (b *Bootstrap) Resolve(ctx context.Context) model.PlayerID {
	stored, err := b.store.Load(ctx, storage.KeyPlayerID)
	if err == nil {
		return model.PlayerID(stored)
	}

	id := b.generate()

	if !errors.Is(err, model.ErrNotFound) {
		// The stored id may still exist; do not overwrite it
		b.logger.Warn("could not read player id, using an unsaved one for this run",
			slog.String("error", err.Error()),
			slog.String("player_id", string(id)),
		)
		return id
	}

	if err := b.store.Save(ctx, storage.KeyPlayerID, string(id)); err != nil {
		b.logger.Warn("could not persist player id",
			slog.String("error", err.Error()),
			slog.String("player_id", string(id)),
		)
		return id
	}

	b.logger.Info("created player id", slog.String("player_id", string(id)))
	return id
}

func (b *Bootstrap) generate() model.PlayerID {
	millis := b.clock.Now().UnixMilli()
	suffix := b.random.String(suffixLength, random.Base36)
	return model.PlayerID(fmt.Sprintf("%s%d_%s", idPrefix, millis, suffix))
}
