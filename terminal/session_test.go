package terminal_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charles-dyfis-net/isg-state-machine-framework/config"
	"github.com/charles-dyfis-net/isg-state-machine-framework/terminal"
)

func spawnEcho(t *testing.T, spawnString string) *terminal.Session {
	t.Helper()
	cfg, err := config.LoadString(`
Connect:
  spawnString: ` + spawnString + `
General:
  term: ANSI
os:
  endline: "\\r\\n"
`)
	require.NoError(t, err)
	session, err := terminal.Spawn(context.Background(), cfg, 24, 80, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Disconnect() })
	return session
}

func TestSpawnAndReadOutput(t *testing.T) {
	session := spawnEcho(t, `"printf hello"`)
	err := session.ExpectLineMatching(context.Background(), "hello", 0, 5*time.Second)
	require.NoError(t, err)
}

func TestSendlineUsesConfiguredEndline(t *testing.T) {
	session := spawnEcho(t, `"cat"`)
	require.NoError(t, session.Sendline("ping"))
	err := session.ExpectLineMatching(context.Background(), "ping", 0, 5*time.Second)
	require.NoError(t, err)
}

func TestSendKeyUnknownKeyFails(t *testing.T) {
	session := spawnEcho(t, `"cat"`)
	err := session.SendKey("NOT_A_REAL_KEY")
	assert.Error(t, err)
	var unknown *terminal.UnknownKeyError
	assert.ErrorAs(t, err, &unknown)
}

func TestSendKeyBuiltinTable(t *testing.T) {
	session := spawnEcho(t, `"cat"`)
	require.NoError(t, session.SendKey("F1"))
}

func TestExpectDelaySettlesAfterOutputStops(t *testing.T) {
	session := spawnEcho(t, `"printf quiet"`)
	err := session.ExpectDelay(context.Background(), 100*time.Millisecond, 5*time.Second, 20*time.Millisecond, 0)
	require.NoError(t, err)
}
