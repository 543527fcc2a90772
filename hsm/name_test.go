package hsm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charles-dyfis-net/isg-state-machine-framework/hsm"
)

func TestNewStateNameGrammar(t *testing.T) {
	_, err := hsm.NewStateName("AA__BB__CC")
	require.NoError(t, err)

	_, err = hsm.NewStateName("lowercase")
	var invalid *hsm.InvalidStateNameError
	require.ErrorAs(t, err, &invalid)

	_, err = hsm.NewStateName("")
	require.Error(t, err)

	_, err = hsm.NewStateName("A")
	require.ErrorAs(t, err, &invalid)

	_, err = hsm.NewStateName("A__BB")
	require.ErrorAs(t, err, &invalid)
}

func TestIsSubstateOf(t *testing.T) {
	assert.True(t, hsm.IsSubstateOf(hsm.MustStateName("AA"), hsm.MustStateName("AA")))
	assert.True(t, hsm.IsSubstateOf(hsm.MustStateName("AA"), hsm.MustStateName("AA__BB")))
	assert.True(t, hsm.IsSubstateOf(hsm.MustStateName("AA__BB"), hsm.MustStateName("AA__BB__CC")))
	assert.False(t, hsm.IsSubstateOf(hsm.MustStateName("AA__BB"), hsm.MustStateName("AA")))
	assert.False(t, hsm.IsSubstateOf(hsm.MustStateName("AA"), hsm.MustStateName("AABB")))
}

func TestCandidateHandlerNamesOrder(t *testing.T) {
	names, err := hsm.CandidateHandlerNames(hsm.MustStateName("AA__BB__CC"), hsm.KindDo)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"do__AA__BB__CC",
		"do__AA__BB__default",
		"do__AA__default",
		"do__default",
	}, names)
}

func TestCandidateTransitionNamesOrder(t *testing.T) {
	names, err := hsm.CandidateTransitionNames(hsm.MustStateName("AA__BB"), hsm.MustStateName("XX"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"transition__AA__BB__to__XX",
		"transition__AA__default__to__XX",
		"transition__default__to__XX",
	}, names)
}
