// Package conn provides the built-in connection-lifecycle behavior
// unit every agent composes in: BaseConnection, which drives
// INITIAL_STATE -> DISCONNECTED -> CONNECTING, recovers from INVALID
// by disconnecting, and tears the child process down on any transition
// back to DISCONNECTED. It is the Go analogue of the original
// screen-scraper's BaseConnection mixin.
package conn

import (
	"context"
	"log/slog"
	"time"

	"github.com/charles-dyfis-net/isg-state-machine-framework/config"
	"github.com/charles-dyfis-net/isg-state-machine-framework/hsm"
	"github.com/charles-dyfis-net/isg-state-machine-framework/screen"
	"github.com/charles-dyfis-net/isg-state-machine-framework/terminal"
)

// Env is the shared collaborator bag every behavior unit in an agent
// receives through hsm.Automaton[*Env].Shared: the terminal façade for
// the currently-connected child (nil until CONNECTING), the config
// tree, the screen-imaging pipeline, and the captured-data store the
// pipeline writes into.
type Env struct {
	Config   *config.Tree
	Captures *screen.Captures
	Logger   *slog.Logger

	Rows, Cols int

	Session *terminal.Session
	Screen  *screen.Pipeline
}

// NewEnv builds an Env ready to hand to hsm.NewAutomaton. Session and
// Screen start nil; BaseConnection's do__DISCONNECTED handler fills
// them in on connect.
func NewEnv(cfg *config.Tree, rows, cols int, logger *slog.Logger) *Env {
	if logger == nil {
		logger = slog.Default()
	}
	return &Env{
		Config:   cfg,
		Captures: screen.NewCaptures(),
		Logger:   logger,
		Rows:     rows,
		Cols:     cols,
	}
}

// ImageScreen runs the screen-imaging pipeline (C6) against the live
// state and the behavior unit currently executing, per spec.md §4.6.
// Any behavior unit's handler can call it, mirroring the original's
// image_screen mixin method being available to every HandlerSet.
func ImageScreen(ctx context.Context, a *hsm.Automaton[*Env], expectUpdates bool, settleTime *time.Duration, substate string) error {
	state, _ := a.State()
	origin := a.CurrentHandlerOrigin()
	return a.Shared.Screen.Image(ctx, origin, state, substate, expectUpdates, settleTime)
}
