package conn

import (
	"context"
	"os"

	"github.com/charles-dyfis-net/isg-state-machine-framework/hsm"
	"github.com/charles-dyfis-net/isg-state-machine-framework/screen"
	"github.com/charles-dyfis-net/isg-state-machine-framework/terminal"
)

const (
	StateDisconnected = hsm.StateName("DISCONNECTED")
	StateConnecting   = hsm.StateName("CONNECTING")
	StateInvalid      = hsm.StateName("INVALID")
)

// BaseConnection is the built-in connection-lifecycle behavior unit:
// every agent composes it in (typically via hsm.WithBase) so that
// INITIAL_STATE, DISCONNECTED, INVALID, and the default teardown
// transition to DISCONNECTED are always handled, regardless of what
// domain-specific units are also composed.
type BaseConnection struct{}

// New returns a BaseConnection unit.
func New() *BaseConnection { return &BaseConnection{} }

func (b *BaseConnection) Name() string { return "BaseConnection" }

func (b *BaseConnection) DoHandlers() map[string]hsm.HandlerFunc[*Env] {
	return map[string]hsm.HandlerFunc[*Env]{
		"INITIAL_STATE": func(ctx context.Context, a *hsm.Automaton[*Env], args ...any) (hsm.Retval, error) {
			return hsm.ChangeState("DISCONNECTED"), nil
		},
		"INVALID": func(ctx context.Context, a *hsm.Automaton[*Env], args ...any) (hsm.Retval, error) {
			_, err := a.TransitionTo(ctx, StateDisconnected, false)
			return hsm.NoChange(), err
		},
		"DISCONNECTED": func(ctx context.Context, a *hsm.Automaton[*Env], args ...any) (hsm.Retval, error) {
			if err := connect(ctx, a.Shared); err != nil {
				return hsm.Retval{}, err
			}
			return hsm.ChangeState(StateConnecting), nil
		},
	}
}

func (b *BaseConnection) PreHandlers() map[string]hsm.HandlerFunc[*Env]  { return nil }
func (b *BaseConnection) PostHandlers() map[string]hsm.HandlerFunc[*Env] { return nil }

func (b *BaseConnection) Transitions() map[string]hsm.TransitionFunc[*Env] {
	return map[string]hsm.TransitionFunc[*Env]{
		"default__to__DISCONNECTED": func(ctx context.Context, a *hsm.Automaton[*Env], args ...any) (hsm.Retval, error) {
			env := a.Shared
			if env.Session != nil {
				if err := env.Session.Disconnect(); err != nil {
					env.Logger.Error("base_connection: disconnect child", "error", err)
				}
				env.Session = nil
				env.Screen = nil
			}
			a.ResetStack()
			a.SetState(StateDisconnected, nil)
			return hsm.NoChange(), nil
		},
	}
}

func (b *BaseConnection) Initialize(ctx context.Context, a *hsm.Automaton[*Env]) error {
	return nil
}

// connect spawns the child process under a pseudo-TTY (General.term,
// Connect.spawnString) and wires up the screen-imaging pipeline for
// it, the Go analogue of the original's cmd_connect.
func connect(ctx context.Context, env *Env) error {
	session, err := terminal.Spawn(ctx, env.Config, env.Rows, env.Cols, env.Logger)
	if err != nil {
		return err
	}
	env.Session = session
	env.Screen = &screen.Pipeline{
		Term:     session,
		Config:   env.Config,
		Captures: env.Captures,
		DumpSink: os.Stderr,
	}
	return nil
}
