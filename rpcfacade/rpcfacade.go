// Package rpcfacade exposes a subset of an automaton's driving methods
// over net/rpc, the Go analogue of the original's SimpleXMLRPCServer
// wrapper: one shared object, declarative per-method exposure, a
// single dispatch entrypoint, and one mutex serializing every call
// into the automaton (spec.md §5, "Shared resources").
package rpcfacade

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"sync"

	"github.com/charles-dyfis-net/isg-state-machine-framework/hsm"
)

// ExposedFunc is one RPC-callable operation against the automaton.
// args is whatever the caller supplied positionally (mirroring the
// original's *params dispatch).
type ExposedFunc[T any] func(ctx context.Context, a *hsm.Automaton[T], args []any) (any, error)

// Request is the wire shape of one RPC call: the exposed method name
// and its positional arguments.
type Request struct {
	Method string
	Args   []any
}

// Response carries the result of a dispatched call.
type Response struct {
	Result any
}

// ServerObject wraps an automaton behind a declarative Expose table
// and a mutex that serializes every dispatched call, per spec.md §5:
// "it MUST serialize calls into the automaton with a mutex that wraps
// every method invocation."
type ServerObject[T any] struct {
	mu        sync.Mutex
	automaton *hsm.Automaton[T]
	exposed   map[string]ExposedFunc[T]
	logger    *slog.Logger
}

// NewServerObject wraps automaton, exposing exactly the methods named
// in exposed. Declaring a method's exposure here — rather than via a
// struct tag or naming convention — is the Go equivalent of the
// original's per-method "expose" attribute.
func NewServerObject[T any](automaton *hsm.Automaton[T], exposed map[string]ExposedFunc[T], logger *slog.Logger) *ServerObject[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &ServerObject[T]{automaton: automaton, exposed: exposed, logger: logger}
}

// Dispatch is the one net/rpc-registered method: it looks up
// req.Method in the Expose table and calls it under the serializing
// mutex, mirroring the original ServerObject's _dispatch.
func (s *ServerObject[T]) Dispatch(req *Request, resp *Response) error {
	fn, ok := s.exposed[req.Method]
	if !ok {
		return fmt.Errorf("rpcfacade: method %q is not exposed", req.Method)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := fn(context.Background(), s.automaton, req.Args)
	if err != nil {
		s.logger.Error("rpcfacade: exception passing through", slog.String("method", req.Method), slog.Any("error", err))
		return err
	}
	resp.Result = result
	return nil
}

// ListMethods reports the names of every exposed method, the analogue
// of the original's _listMethods (used by introspection clients).
func (s *ServerObject[T]) ListMethods(_ *struct{}, resp *[]string) error {
	names := make([]string, 0, len(s.exposed))
	for name := range s.exposed {
		names = append(names, name)
	}
	*resp = names
	return nil
}

// RunServer registers so under the name "ServerObject" and serves
// net/rpc requests on addr until the listener fails or ctx is
// cancelled.
func RunServer[T any](ctx context.Context, addr string, so *ServerObject[T]) error {
	server := rpc.NewServer()
	if err := server.RegisterName("ServerObject", so); err != nil {
		return err
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("rpcfacade: listen %s: %w", addr, err)
	}
	go func() {
		<-ctx.Done()
		listener.Close()
	}()
	server.Accept(listener)
	return ctx.Err()
}
