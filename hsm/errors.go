package hsm

import "fmt"

// InvalidStateNameError is returned when a string does not satisfy the
// state-name grammar [A-Z][A-Z0-9_]+(__[A-Z][A-Z0-9_]+)*.
type InvalidStateNameError struct {
	Name string
}

func (e *InvalidStateNameError) Error() string {
	return fmt.Sprintf("hsm: invalid state name %q", e.Name)
}

// NoHandlerError is returned when no handler of the given kind (or no
// transition handler) could be resolved for a state.
type NoHandlerError struct {
	State StateName
	Kind  string // "do", "pre", "post", or "transition"
}

func (e *NoHandlerError) Error() string {
	return fmt.Sprintf("hsm: no %s handler for state %q", e.Kind, e.State)
}

// BadReturnError is returned when a handler's return value does not
// match the {none | name | (name, data)} protocol.
type BadReturnError struct {
	Value any
}

func (e *BadReturnError) Error() string {
	return fmt.Sprintf("hsm: unrecognized handler return value %#v", e.Value)
}

// StackEmptyError is returned by Pop when the state stack is empty.
type StackEmptyError struct{}

func (e *StackEmptyError) Error() string { return "hsm: pop on empty state stack" }

// TransitionInertError is returned when TransitionTo's handler ran but
// left the state unchanged.
type TransitionInertError struct {
	State StateName
}

func (e *TransitionInertError) Error() string {
	return fmt.Sprintf("hsm: transition was inert, still in state %q", e.State)
}

// TransitionMissedExactError is returned in exact mode when the landing
// state is neither the target nor a substate of it.
type TransitionMissedExactError struct {
	Target, Landed StateName
}

func (e *TransitionMissedExactError) Error() string {
	return fmt.Sprintf("hsm: transition wanted %q, landed in %q", e.Target, e.Landed)
}

// TransitionMissedWithNoHandlerError is returned in non-exact mode when
// the landing state is neither a substate of the target nor a state
// with any handler at all.
type TransitionMissedWithNoHandlerError struct {
	Target, Landed StateName
}

func (e *TransitionMissedWithNoHandlerError) Error() string {
	return fmt.Sprintf("hsm: transition wanted %q, landed in %q with no handler", e.Target, e.Landed)
}

// Finished is a control-flow signal a handler returns to terminate
// Run gracefully. If NewState is non-empty, the engine installs it
// (with NewStateData) before Run returns RetVal.
type Finished struct {
	RetVal       any
	NewState     StateName // empty means "leave state untouched"
	NewStateData any
}

func (f *Finished) Error() string {
	return fmt.Sprintf("hsm: finished(retval=%v, newState=%q)", f.RetVal, f.NewState)
}

// NonFatal is a control-flow signal a handler returns to divert to
// "<current>__UNKNOWN" with its Err as the new state's data. The engine
// logs it and continues the run loop; the stack is not reset.
type NonFatal struct {
	Err error
}

func (e *NonFatal) Error() string { return fmt.Sprintf("hsm: non-fatal: %s", e.Err) }
func (e *NonFatal) Unwrap() error { return e.Err }
