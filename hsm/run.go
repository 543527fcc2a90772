package hsm

import (
	"context"
	"errors"
	"log/slog"
)

// invoke runs fn as the currently-executing handler, recording unit as
// the origin so CurrentHandlerOrigin reflects it for the duration of
// the call (and for any screen-imaging the handler triggers).
func (a *Automaton[T]) invoke(ctx context.Context, fn HandlerFunc[T], unit string, args ...any) (Retval, error) {
	a.currentUnit = unit
	return fn(ctx, a, args...)
}

// Run executes the state machine starting from the current state,
// continuing until a handler signals Finished or an unrecovered fault
// propagates.
//
// Each iteration: resolve and run the pre handler for the current
// state (missing allowed); if it changed state, restart the iteration
// for the new state without running the primary handler for the old
// one. Otherwise resolve and run the primary do handler (missing is a
// fault) and apply any state change. Then resolve and run the post
// handler keyed off the state that was in effect when the primary
// handler was chosen — not the post-change state — and apply any
// change it returns. Loop.
//
// A NonFatal returned by any handler diverts to "<current>__UNKNOWN"
// with the error as that state's data, and the loop continues. Any
// other fault resets the stack, sets the state to INVALID, and is
// returned to the caller.
func (a *Automaton[T]) Run(ctx context.Context) (any, error) {
	for {
		curr := a.state

		preHandler, preUnit, err := a.reg.findHandler(curr, KindPre, true)
		if err != nil {
			return nil, a.fault(err)
		}
		retval, err := a.invoke(ctx, preHandler, preUnit)
		if err != nil {
			done, retVal, handled, faultErr := a.handleControlFlow(curr, err)
			if done {
				return retVal, faultErr
			}
			if handled {
				continue
			}
		}
		if a.handleRetval(retval) {
			continue
		}

		doHandler, doUnit, err := a.reg.findHandler(curr, KindDo, false)
		if err != nil {
			return nil, a.fault(err)
		}
		retval, err = a.invoke(ctx, doHandler, doUnit)
		if err != nil {
			done, retVal, handled, faultErr := a.handleControlFlow(curr, err)
			if done {
				return retVal, faultErr
			}
			if handled {
				continue
			}
		}
		a.handleRetval(retval)

		// Ordering rule: the post-handler is keyed off curr (the state
		// in effect when the primary handler was chosen), regardless of
		// whether the primary changed state.
		postHandler, postUnit, err := a.reg.findHandler(curr, KindPost, true)
		if err != nil {
			return nil, a.fault(err)
		}
		retval, err = a.invoke(ctx, postHandler, postUnit)
		if err != nil {
			done, retVal, handled, faultErr := a.handleControlFlow(curr, err)
			if done {
				return retVal, faultErr
			}
			if handled {
				continue
			}
		}
		a.handleRetval(retval)
	}
}

// handleControlFlow interprets an error returned by an invoked handler.
// done reports whether Run should return immediately (a Finished
// signal, or an unrecovered fault); handled reports whether the loop
// should simply `continue` (a NonFatal diversion).
func (a *Automaton[T]) handleControlFlow(curr StateName, err error) (done bool, retVal any, handled bool, faultErr error) {
	var finished *Finished
	if errors.As(err, &finished) {
		if finished.NewState != "" {
			a.SetState(finished.NewState, finished.NewStateData)
		}
		return true, finished.RetVal, false, nil
	}
	var nonFatal *NonFatal
	if errors.As(err, &nonFatal) {
		a.logger.Error("non-fatal exception in state machine", slog.String("state", string(curr)), slog.Any("error", nonFatal.Err))
		a.SetState(StateName(string(curr)+"__UNKNOWN"), nonFatal.Err)
		return false, nil, true, nil
	}
	return true, nil, false, a.fault(err)
}

// fault applies the fatal-fault recovery of resetting the stack and
// setting state to INVALID, then returns err unchanged for the caller
// to re-raise.
func (a *Automaton[T]) fault(err error) error {
	a.ResetStack()
	a.SetState("INVALID", nil)
	return err
}

// TransitionTo transitions from the current state toward target,
// invoking the resolved transition handler with args. If target equals
// the current state, this is a no-op. Post-conditions: the state must
// differ from the pre-call value (TransitionInertError otherwise); in
// exact mode the new state must be target or a substate of it
// (TransitionMissedExactError otherwise); otherwise the new state must
// be a substate of target or a state with any handler at all
// (TransitionMissedWithNoHandlerError otherwise). Returns the handler's
// return value unchanged.
func (a *Automaton[T]) TransitionTo(ctx context.Context, target StateName, exact bool, args ...any) (Retval, error) {
	before := a.state
	if before == target {
		return NoChange(), nil
	}
	handler, _, err := a.reg.findTransition(before, target)
	if err != nil {
		return Retval{}, err
	}
	a.logger.Info("transitionTo", slog.String("target", string(target)), slog.Bool("exact", exact), slog.String("from", string(before)))
	// Called directly rather than via invoke so CurrentHandlerOrigin
	// keeps reporting the primary handler's unit.
	retval, err := handler(ctx, a, args...)
	if err != nil {
		return Retval{}, err
	}
	a.handleRetval(retval)

	if a.state == before {
		return Retval{}, &TransitionInertError{State: before}
	}
	if exact {
		if !IsSubstateOf(target, a.state) {
			return Retval{}, &TransitionMissedExactError{Target: target, Landed: a.state}
		}
	} else if !IsSubstateOf(target, a.state) && !a.reg.haveHandlerFor(a.state) {
		return Retval{}, &TransitionMissedWithNoHandlerError{Target: target, Landed: a.state}
	}
	return retval, nil
}
