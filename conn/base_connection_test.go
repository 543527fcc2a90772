package conn_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charles-dyfis-net/isg-state-machine-framework/conn"
	"github.com/charles-dyfis-net/isg-state-machine-framework/hsm"
)

func TestBaseConnectionInitialToDisconnected(t *testing.T) {
	unit := conn.New()
	handlers := unit.DoHandlers()
	h, ok := handlers["INITIAL_STATE"]
	require.True(t, ok)

	retval, err := h(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, hsm.ChangeState(conn.StateDisconnected), retval)
}

func TestBaseConnectionDefaultTeardownTransition(t *testing.T) {
	env := conn.NewEnv(nil, 24, 80, nil)
	a := hsm.NewAutomaton(env, hsm.WithBase[*conn.Env](conn.New()))

	a.Push(hsm.MustStateName("SOME__NESTED__STATE"), nil)

	_, err := a.TransitionTo(context.Background(), conn.StateDisconnected, false)
	require.NoError(t, err)

	state, _ := a.State()
	assert.Equal(t, conn.StateDisconnected, state)
	assert.Equal(t, hsm.StateName(""), a.Peek())
}
