package testpool

import (
	"context"
	"math/rand"
	"time"
)

// Engine is the test distribution and moderation core. All cross-request
// consistency is delegated to the Store's atomic primitives; the Engine keeps
// no mutable state of its own.
type Engine struct {
	store         Store
	defaults      Options
	defaultAuthor string

	now  func() time.Time
	intn func(int) int // injected for deterministic sampling in tests
}

func New(store Store, defaults Options, defaultAuthor string) *Engine {
	return &Engine{
		store:         store,
		defaults:      defaults,
		defaultAuthor: defaultAuthor,
		now:           time.Now,
		intn:          rand.Intn,
	}
}

// Defaults returns the configured distribution options, the base for
// per-request overrides.
func (e *Engine) Defaults() Options { return e.defaults }

// Pools lists assignment pools; hidden pools only for admins.
func (e *Engine) Pools(ctx context.Context, viewer Principal) ([]Pool, error) {
	return e.store.ListPools(ctx, viewer.IsAdmin())
}

var _ Service = (*Engine)(nil)
