package hsm

import "context"

// Retval is the sum type a handler or transition helper returns:
// "no change", "a new state with no data", or "a new state with data".
// It is enforced at the type boundary (constructed only via the
// functions below) rather than accepted as a bare interface{}, per the
// design note that handler return values are a sum type.
type Retval struct {
	changed bool
	name    StateName
	data    any
}

// NoChange is the "nothing" return value: no state change occurred.
func NoChange() Retval { return Retval{} }

// ChangeState returns a Retval that installs name with no data.
func ChangeState(name StateName) Retval { return Retval{changed: true, name: name} }

// ChangeStateWithData returns a Retval that installs name with data.
func ChangeStateWithData(name StateName, data any) Retval {
	return Retval{changed: true, name: name, data: data}
}

// ParseRetval accepts a dynamically-typed value (nil, a string, or a
// [2]any-shaped pair) and converts it to a Retval, returning
// BadReturnError for any other shape. It exists for callers that bridge
// in handlers sourced from something other than Go code (e.g. a
// scripting layer) where the sum type cannot be enforced at compile
// time; ordinary handler implementations should construct a Retval
// directly instead.
func ParseRetval(v any) (Retval, error) {
	switch value := v.(type) {
	case nil:
		return NoChange(), nil
	case string:
		name, err := NewStateName(value)
		if err != nil {
			return Retval{}, err
		}
		return ChangeState(name), nil
	case StateName:
		return ChangeState(value), nil
	case [2]any:
		name, ok := value[0].(StateName)
		if !ok {
			s, ok := value[0].(string)
			if !ok {
				return Retval{}, &BadReturnError{Value: v}
			}
			n, err := NewStateName(s)
			if err != nil {
				return Retval{}, err
			}
			name = n
		}
		return ChangeStateWithData(name, value[1]), nil
	default:
		return Retval{}, &BadReturnError{Value: v}
	}
}

// HandlerFunc is a do/pre/post handler for an Automaton sharing
// environment type T (the collaborators a handler needs: terminal
// façade, config adapter, captured-data store, and so on). args carries
// any extra arguments a caller (e.g. TransitionTo) supplied.
type HandlerFunc[T any] func(ctx context.Context, a *Automaton[T], args ...any) (Retval, error)

// TransitionFunc is a transition__FROM__to__TO handler.
type TransitionFunc[T any] func(ctx context.Context, a *Automaton[T], args ...any) (Retval, error)

// BehaviorUnit contributes handlers and/or transition helpers to an
// Automaton's composed chain. A unit's Name identifies it as the origin
// of every handler it declares (spec I5); Initialize runs at most once
// per Automaton instance (spec I4), regardless of how many times the
// unit is composed in or out.
type BehaviorUnit[T any] interface {
	// Name returns the unit's identity, used both for deduplicating
	// initialization and as the origin-unit dimension of screen-imaging
	// configuration keys.
	Name() string

	// DoHandlers, PreHandlers, and PostHandlers return this unit's
	// do__/pre__/post__ handlers, keyed by the state-name fragment that
	// follows the kind prefix (e.g. "FOO__BAR" or "FOO__BAR__default").
	DoHandlers() map[string]HandlerFunc[T]
	PreHandlers() map[string]HandlerFunc[T]
	PostHandlers() map[string]HandlerFunc[T]

	// Transitions returns this unit's transition__FROM__to__TO handlers,
	// keyed by "FROM__to__TO" (FROM may itself end in "__default").
	Transitions() map[string]TransitionFunc[T]

	// Initialize runs at most once per Automaton instance, during the
	// first Compose, AlwaysPrepend, or AlwaysAppend call whose chain
	// includes this unit. NewAutomaton does not run it for units passed
	// to WithBase.
	Initialize(ctx context.Context, a *Automaton[T]) error
}

// originHandler pairs a handler with the unit that declared it (I5);
// this identity is used to key screen-imaging configuration (C6).
type originHandler[T any] struct {
	unit    string
	handler HandlerFunc[T]
}

type originTransition[T any] struct {
	unit    string
	handler TransitionFunc[T]
}

// nullHandler is returned on demand for pre/post lookups that allow
// missing handlers.
func nullHandler[T any](ctx context.Context, a *Automaton[T], args ...any) (Retval, error) {
	return NoChange(), nil
}
