// Command isg-agent wires a config file and the built-in connection
// lifecycle (conn.BaseConnection, the only behavior unit it composes)
// into an automaton and runs it, optionally exposing it over the RPC
// façade.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/charles-dyfis-net/isg-state-machine-framework/conn"
	"github.com/charles-dyfis-net/isg-state-machine-framework/config"
	"github.com/charles-dyfis-net/isg-state-machine-framework/hsm"
	"github.com/charles-dyfis-net/isg-state-machine-framework/rpcfacade"
)

func main() {
	if err := run(); err != nil {
		slog.Error("isg-agent: fatal", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = pflag.StringP("config", "c", "", "path to the YAML config file")
		rows       = pflag.Int("rows", 24, "pseudo-TTY row count")
		cols       = pflag.Int("cols", 80, "pseudo-TTY column count")
		rpcAddr    = pflag.String("rpc-listen", "", "if set, serve the RPC façade on this address (host:port)")
	)
	pflag.Parse()

	if *configPath == "" {
		return fmt.Errorf("isg-agent: --config is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.UpdateFromArgs(pflag.Args()); err != nil {
		return fmt.Errorf("isg-agent: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env := conn.NewEnv(cfg, *rows, *cols, logger)
	automaton := hsm.NewAutomaton(env, hsm.WithLogger[*conn.Env](logger), hsm.WithBase[*conn.Env](conn.New()))
	if err := automaton.Compose(ctx); err != nil {
		return err
	}

	if *rpcAddr != "" {
		so := rpcfacade.NewServerObject(automaton, exposedMethods(), logger)
		go func() {
			if err := rpcfacade.RunServer(ctx, *rpcAddr, so); err != nil && ctx.Err() == nil {
				logger.Error("isg-agent: rpc server exited", slog.Any("error", err))
			}
		}()
	}

	_, err = automaton.Run(ctx)
	return err
}

// exposedMethods declares the RPC-visible surface of the automaton,
// the Go analogue of the original's per-method "expose" attribute.
func exposedMethods() map[string]rpcfacade.ExposedFunc[*conn.Env] {
	return map[string]rpcfacade.ExposedFunc[*conn.Env]{
		"state": func(ctx context.Context, a *hsm.Automaton[*conn.Env], args []any) (any, error) {
			name, _ := a.State()
			return name.String(), nil
		},
		"disconnect": func(ctx context.Context, a *hsm.Automaton[*conn.Env], args []any) (any, error) {
			_, err := a.TransitionTo(ctx, conn.StateDisconnected, false)
			return nil, err
		},
	}
}
