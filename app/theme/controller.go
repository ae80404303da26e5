// Package theme keeps a visitor's light/dark preference consistent between
// the persisted record and the rendered page, and provides the single
// action to flip it.
package theme

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/go-pkgz/lgr"

	"github.com/mkrukov/shade/app/enum"
)

// prefKey is the fixed key the preference is stored under.
// The store is expected to scope keys per visitor, see store.Scoped.
const prefKey = "theme"

// Store defines the key-value capability the controller persists through.
// The backing store is untrusted: records may be absent, corrupt or
// unwritable, and the controller degrades to the default theme in all cases.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Sink receives the active theme whenever it changes or gets restored.
// The real sink rewrites page classes, tests substitute a recording fake.
type Sink interface {
	Apply(theme enum.Theme)
}

// Controller owns the current theme for a single visitor. Instances are
// cheap per-request values and must not be shared across goroutines.
type Controller struct {
	store   Store
	sink    Sink
	current enum.Theme
}

// New creates a controller with the default (light) theme.
// Sink may be nil when no page is being rendered.
func New(st Store, sink Sink) *Controller {
	return &Controller{store: st, sink: sink, current: enum.ThemeLight}
}

// Init restores the persisted preference and applies the resulting theme.
// A missing, unreadable or invalid record leaves the default in place;
// nothing here can fail the page.
func (c *Controller) Init(ctx context.Context) {
	if th, ok := c.readPersisted(ctx); ok && th.Valid() {
		c.current = th
	}
	c.apply()
}

// Current returns the active theme.
func (c *Controller) Current() enum.Theme {
	return c.current
}

// Toggle flips the theme, applies it and persists the new value.
// The visible outcome never depends on the write: persistence failures are
// logged and the new theme is returned regardless.
func (c *Controller) Toggle(ctx context.Context) enum.Theme {
	c.current = c.current.Toggle()
	c.apply()
	if err := c.Persist(ctx); err != nil {
		log.Printf("[WARN] failed to persist theme %s: %v", c.current, err)
	}
	return c.current
}

// Persist writes the current theme as a JSON string under the fixed key.
// The returned error may be ignored by callers, the preference is cosmetic.
func (c *Controller) Persist(ctx context.Context) error {
	data, err := json.Marshal(c.current)
	if err != nil {
		return fmt.Errorf("marshal theme: %w", err)
	}
	if err := c.store.Set(ctx, prefKey, data); err != nil {
		return fmt.Errorf("store theme: %w", err)
	}
	return nil
}

// readPersisted loads and decodes the stored record. Enum membership is
// checked by Init, not here; any read or decode failure means "absent".
func (c *Controller) readPersisted(ctx context.Context) (enum.Theme, bool) {
	data, err := c.store.Get(ctx, prefKey)
	if err != nil {
		return enum.Theme{}, false
	}
	var th enum.Theme
	if err := json.Unmarshal(data, &th); err != nil {
		return enum.Theme{}, false
	}
	return th, true
}

func (c *Controller) apply() {
	if c.sink == nil {
		return
	}
	c.sink.Apply(c.current)
}
