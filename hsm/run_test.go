package hsm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charles-dyfis-net/isg-state-machine-framework/hsm"
)

// Shared is the test fixture's collaborator bag: just a call log.
type Shared struct {
	calls []string
}

func (s *Shared) log(name string) { s.calls = append(s.calls, name) }

// testUnit is a BehaviorUnit[*Shared] built from plain maps, for
// exercising the engine without a domain package's own handlers.
type testUnit struct {
	name string
	do   map[string]hsm.HandlerFunc[*Shared]
	pre  map[string]hsm.HandlerFunc[*Shared]
	post map[string]hsm.HandlerFunc[*Shared]
	tr   map[string]hsm.TransitionFunc[*Shared]
	init func(ctx context.Context, a *hsm.Automaton[*Shared]) error
}

func (u *testUnit) Name() string                                    { return u.name }
func (u *testUnit) DoHandlers() map[string]hsm.HandlerFunc[*Shared]  { return u.do }
func (u *testUnit) PreHandlers() map[string]hsm.HandlerFunc[*Shared] { return u.pre }
func (u *testUnit) PostHandlers() map[string]hsm.HandlerFunc[*Shared] {
	return u.post
}
func (u *testUnit) Transitions() map[string]hsm.TransitionFunc[*Shared] { return u.tr }
func (u *testUnit) Initialize(ctx context.Context, a *hsm.Automaton[*Shared]) error {
	if u.init != nil {
		return u.init(ctx, a)
	}
	return nil
}

func logHandler(shared *Shared, label string, retval hsm.Retval) hsm.HandlerFunc[*Shared] {
	return func(ctx context.Context, a *hsm.Automaton[*Shared], args ...any) (hsm.Retval, error) {
		shared.log(label)
		return retval, nil
	}
}

func TestRunOrderingPrePrimaryPost(t *testing.T) {
	shared := &Shared{}
	unit2 := &testUnit{
		name: "u",
		do: map[string]hsm.HandlerFunc[*Shared]{
			"INITIAL_STATE": logHandler(shared, "do", hsm.ChangeState("DONE")),
			"DONE": func(ctx context.Context, a *hsm.Automaton[*Shared], args ...any) (hsm.Retval, error) {
				return hsm.Retval{}, &hsm.Finished{RetVal: "ok"}
			},
		},
		pre: map[string]hsm.HandlerFunc[*Shared]{
			"INITIAL_STATE": logHandler(shared, "pre", hsm.NoChange()),
		},
		post: map[string]hsm.HandlerFunc[*Shared]{
			"INITIAL_STATE": logHandler(shared, "post", hsm.NoChange()),
		},
	}

	a := hsm.NewAutomaton(shared, hsm.WithBase[*Shared](unit2))
	result, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, []string{"pre", "do", "post"}, shared.calls)
}

func TestRunPreRestartsOnStateChange(t *testing.T) {
	shared := &Shared{}
	unit := &testUnit{
		name: "u",
		pre: map[string]hsm.HandlerFunc[*Shared]{
			"INITIAL_STATE": func(ctx context.Context, a *hsm.Automaton[*Shared], args ...any) (hsm.Retval, error) {
				shared.log("pre-initial")
				return hsm.ChangeState("MIDDLE"), nil
			},
			"MIDDLE": logHandler(shared, "pre-middle", hsm.NoChange()),
		},
		do: map[string]hsm.HandlerFunc[*Shared]{
			"INITIAL_STATE": logHandler(shared, "do-initial-SHOULD-NOT-RUN", hsm.NoChange()),
			"MIDDLE": func(ctx context.Context, a *hsm.Automaton[*Shared], args ...any) (hsm.Retval, error) {
				shared.log("do-middle")
				return hsm.Retval{}, &hsm.Finished{RetVal: nil}
			},
		},
	}
	a := hsm.NewAutomaton(shared, hsm.WithBase[*Shared](unit))
	_, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"pre-initial", "pre-middle", "do-middle"}, shared.calls)
}

func TestRunNonFatalDivertsToUnknown(t *testing.T) {
	shared := &Shared{}
	boom := errors.New("boom")
	unit := &testUnit{
		name: "u",
		do: map[string]hsm.HandlerFunc[*Shared]{
			"INITIAL_STATE": func(ctx context.Context, a *hsm.Automaton[*Shared], args ...any) (hsm.Retval, error) {
				return hsm.Retval{}, &hsm.NonFatal{Err: boom}
			},
			"INITIAL_STATE__UNKNOWN": func(ctx context.Context, a *hsm.Automaton[*Shared], args ...any) (hsm.Retval, error) {
				return hsm.Retval{}, &hsm.Finished{RetVal: "recovered"}
			},
		},
	}
	a := hsm.NewAutomaton(shared, hsm.WithBase[*Shared](unit))
	result, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "recovered", result)
}

func TestRunFatalFaultSetsInvalidAndResetsStack(t *testing.T) {
	shared := &Shared{}
	boom := errors.New("boom")
	unit := &testUnit{
		name: "u",
		do: map[string]hsm.HandlerFunc[*Shared]{
			"INITIAL_STATE": func(ctx context.Context, a *hsm.Automaton[*Shared], args ...any) (hsm.Retval, error) {
				a.Push("PUSHED", nil)
				return hsm.Retval{}, boom
			},
		},
	}
	a := hsm.NewAutomaton(shared, hsm.WithBase[*Shared](unit))
	_, err := a.Run(context.Background())
	require.ErrorIs(t, err, boom)
	state, _ := a.State()
	assert.Equal(t, hsm.StateName("INVALID"), state)
	assert.Equal(t, hsm.StateName(""), a.Peek())
}

func TestLaterCompositionOverridesEarlier(t *testing.T) {
	shared := &Shared{}
	base := &testUnit{
		name: "base",
		do: map[string]hsm.HandlerFunc[*Shared]{
			"INITIAL_STATE": logHandler(shared, "base-handler", hsm.Retval{}),
		},
	}
	override := &testUnit{
		name: "override",
		do: map[string]hsm.HandlerFunc[*Shared]{
			"INITIAL_STATE": func(ctx context.Context, a *hsm.Automaton[*Shared], args ...any) (hsm.Retval, error) {
				shared.log("override-handler")
				return hsm.Retval{}, &hsm.Finished{RetVal: nil}
			},
		},
	}
	a := hsm.NewAutomaton(shared, hsm.WithBase[*Shared](base))
	require.NoError(t, a.Compose(context.Background(), override))
	_, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"override-handler"}, shared.calls)
}

func TestTransitionToExactModeRequiresSubstateOfTarget(t *testing.T) {
	shared := &Shared{}
	unit := &testUnit{
		name: "u",
		tr: map[string]hsm.TransitionFunc[*Shared]{
			"default__to__ELSEWHERE": func(ctx context.Context, a *hsm.Automaton[*Shared], args ...any) (hsm.Retval, error) {
				a.SetState("SOMEWHERE__ELSE", nil)
				return hsm.NoChange(), nil
			},
		},
	}
	a := hsm.NewAutomaton(shared, hsm.WithBase[*Shared](unit))
	_, err := a.TransitionTo(context.Background(), "ELSEWHERE", true)
	var missed *hsm.TransitionMissedExactError
	require.ErrorAs(t, err, &missed)
}

func TestTransitionToNonExactAcceptsAnyHandledState(t *testing.T) {
	shared := &Shared{}
	unit := &testUnit{
		name: "u",
		do: map[string]hsm.HandlerFunc[*Shared]{
			"ANYWHERE": logHandler(shared, "anywhere", hsm.NoChange()),
		},
		tr: map[string]hsm.TransitionFunc[*Shared]{
			"default__to__TARGET": func(ctx context.Context, a *hsm.Automaton[*Shared], args ...any) (hsm.Retval, error) {
				a.SetState("ANYWHERE", nil)
				return hsm.NoChange(), nil
			},
		},
	}
	a := hsm.NewAutomaton(shared, hsm.WithBase[*Shared](unit))
	_, err := a.TransitionTo(context.Background(), "TARGET", false)
	require.NoError(t, err)
}
