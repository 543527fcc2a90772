package hsm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
)

const initialState = StateName("INITIAL_STATE")

// StateValue is a (name, data) pair: a state name and the opaque
// payload attached by whoever installed it.
type StateValue struct {
	Name StateName
	Data any
}

// Automaton is a live hierarchical state machine: the handler registry
// and composition chain described by C3, and the current state, state
// stack, and run loop described by C4. Shared is the caller-supplied
// bag of collaborators (terminal façade, config adapter, and so on)
// every handler receives through the Automaton it's called with.
type Automaton[T any] struct {
	Shared T

	logger *slog.Logger

	prepended []BehaviorUnit[T]
	base      []BehaviorUnit[T]
	requested []BehaviorUnit[T]
	appended  []BehaviorUnit[T]

	initialized map[string]bool
	reg         *registry[T]

	state       StateName
	stateData   any
	lastState   *StateValue
	stack       []StateValue
	currentUnit string // origin unit of the handler currently executing
}

// Option configures an Automaton at construction time.
type Option[T any] func(*Automaton[T])

// WithLogger overrides the default (slog.Default()) logger.
func WithLogger[T any](l *slog.Logger) Option[T] {
	return func(a *Automaton[T]) { a.logger = l }
}

// WithBase sets the automaton's permanent base units, present in every
// composition regardless of what is later requested.
func WithBase[T any](units ...BehaviorUnit[T]) Option[T] {
	return func(a *Automaton[T]) { a.base = append(a.base, units...) }
}

// NewAutomaton creates an automaton in INITIAL_STATE with no data and
// an empty stack. Call Compose to install behavior units before Run.
func NewAutomaton[T any](shared T, opts ...Option[T]) *Automaton[T] {
	a := &Automaton[T]{
		Shared:      shared,
		logger:      slog.Default(),
		initialized: make(map[string]bool),
		state:       initialState,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.reg = buildRegistry[T](a.chain())
	return a
}

func (a *Automaton[T]) chain() []BehaviorUnit[T] {
	chain := make([]BehaviorUnit[T], 0, len(a.prepended)+len(a.base)+len(a.requested)+len(a.appended))
	chain = append(chain, a.prepended...)
	chain = append(chain, a.base...)
	chain = append(chain, a.requested...)
	chain = append(chain, a.appended...)
	return chain
}

// compositionKey returns a content-addressed key over the ordered unit
// identities in chain — a direct translation of the original's
// sha.sha(...).hexdigest() class-name hash, useful for callers that
// want to memoize work keyed to "this exact composed chain".
func compositionKey[T any](chain []BehaviorUnit[T]) string {
	names := make([]string, len(chain))
	for i, u := range chain {
		names[i] = u.Name()
	}
	sum := sha256.Sum256([]byte(strings.Join(names, "__")))
	return hex.EncodeToString(sum[:])
}

// CompositionKey returns the content-addressed key of the automaton's
// current live chain.
func (a *Automaton[T]) CompositionKey() string {
	return compositionKey(a.chain())
}

// Compose replaces the "requested" slot with units, recomputes the live
// chain, runs Initialize on any unit not yet initialized for this
// automaton instance (in chain order), and re-indexes the registry.
func (a *Automaton[T]) Compose(ctx context.Context, units ...BehaviorUnit[T]) error {
	a.requested = units
	return a.recompose(ctx)
}

// AlwaysPrepend extends the permanently-prepended slot and recomposes.
func (a *Automaton[T]) AlwaysPrepend(ctx context.Context, units ...BehaviorUnit[T]) error {
	a.prepended = append(a.prepended, units...)
	return a.recompose(ctx)
}

// AlwaysAppend extends the permanently-appended slot and recomposes.
func (a *Automaton[T]) AlwaysAppend(ctx context.Context, units ...BehaviorUnit[T]) error {
	a.appended = append(a.appended, units...)
	return a.recompose(ctx)
}

func (a *Automaton[T]) recompose(ctx context.Context) error {
	chain := a.chain()
	for _, unit := range chain {
		if a.initialized[unit.Name()] {
			continue
		}
		a.initialized[unit.Name()] = true
		if err := unit.Initialize(ctx, a); err != nil {
			return err
		}
	}
	a.reg = buildRegistry[T](chain)
	return nil
}

// HandledStates returns the set of exact state names declared by any
// do__ handler in the composed chain.
func (a *Automaton[T]) HandledStates() map[StateName]bool {
	return a.reg.handledStates()
}

// State returns the current state name and its data.
func (a *Automaton[T]) State() (StateName, any) {
	return a.state, a.stateData
}

// LastState returns the (name, data) pair in effect immediately before
// the most recent SetState/Pop call, or nil if none has occurred. Push
// does not update it.
func (a *Automaton[T]) LastState() *StateValue {
	return a.lastState
}

// CurrentHandlerOrigin returns the name of the behavior unit that
// declared the primary handler currently executing — the
// "origin-unit-name" dimension screen-imaging configuration is keyed
// on (C6). It is only meaningful from inside a do__ handler's call
// stack.
func (a *Automaton[T]) CurrentHandlerOrigin() string {
	return a.currentUnit
}

// SetState records the prior (state, data) as LastState and installs
// the new values.
func (a *Automaton[T]) SetState(name StateName, data any) {
	prior := StateValue{Name: a.state, Data: a.stateData}
	a.lastState = &prior
	a.state = name
	a.stateData = data
}

// Push pushes the current (state, data) onto the stack and installs
// the new values.
func (a *Automaton[T]) Push(name StateName, data any) {
	a.stack = append(a.stack, StateValue{Name: a.state, Data: a.stateData})
	a.state = name
	a.stateData = data
}

// Pop replaces the current state with the most recently pushed pair.
// It fails with StackEmptyError if the stack is empty.
func (a *Automaton[T]) Pop() error {
	if len(a.stack) == 0 {
		return &StackEmptyError{}
	}
	prior := StateValue{Name: a.state, Data: a.stateData}
	a.lastState = &prior
	top := a.stack[len(a.stack)-1]
	a.stack = a.stack[:len(a.stack)-1]
	a.state, a.stateData = top.Name, top.Data
	return nil
}

// Peek returns the top state name on the stack, or "" if the stack is
// empty.
func (a *Automaton[T]) Peek() StateName {
	if len(a.stack) == 0 {
		return ""
	}
	return a.stack[len(a.stack)-1].Name
}

// ResetStack empties the state stack.
func (a *Automaton[T]) ResetStack() {
	a.stack = nil
}

// handleRetval applies a Retval: if it carries a change, install it via
// SetState and report true; otherwise report false.
func (a *Automaton[T]) handleRetval(r Retval) bool {
	if !r.changed {
		return false
	}
	a.SetState(r.name, r.data)
	return true
}
