package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/minibeans/internal/controller"
	"github.com/mcoot/minibeans/internal/dependencies/mocks"
	"github.com/mcoot/minibeans/internal/ledger"
	"github.com/mcoot/minibeans/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MemStore   *memory.Storage
}

// NewTestApp creates an App against endpoint with an in-memory profile and
// mocked clock and random source
func NewTestApp(endpoint string, notifier controller.Notifier) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := newWithDependencies(store, mockClock, mockRandom, ledger.NewClient(endpoint), notifier, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MemStore:   store,
	}
}

// Reload builds a fresh App over the same profile, the way a second run of
// the client would see it
func (t *TestApp) Reload(notifier controller.Notifier) *TestApp {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	app := newWithDependencies(t.MemStore, t.MockClock, t.MockRandom, ledger.NewClient(t.Ledger.Endpoint()), notifier, logger)
	return &TestApp{
		App:        app,
		MockClock:  t.MockClock,
		MockRandom: t.MockRandom,
		MemStore:   t.MemStore,
	}
}
