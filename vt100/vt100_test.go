package vt100_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charles-dyfis-net/isg-state-machine-framework/vt100"
)

func TestWritePlainTextAdvancesCursor(t *testing.T) {
	term := vt100.New(5, 10)
	n, err := term.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello     ", term.DumpRow(0))
	assert.Equal(t, 0, term.CursorRow())
	assert.Equal(t, 5, term.CursorCol())
}

func TestCarriageReturnAndLineFeed(t *testing.T) {
	term := vt100.New(3, 10)
	term.Write([]byte("ab\r\ncd"))
	assert.Equal(t, "ab        ", term.DumpRow(0))
	assert.Equal(t, "cd        ", term.DumpRow(1))
	assert.Equal(t, 1, term.CursorRow())
	assert.Equal(t, 2, term.CursorCol())
}

func TestCursorPositioningCSI(t *testing.T) {
	term := vt100.New(10, 20)
	term.Write([]byte("\x1b[5;3Hx"))
	assert.Equal(t, 4, term.CursorRow())
	assert.Equal(t, 3, term.CursorCol())
	assert.Equal(t, byte('x'), term.DumpRow(4)[2])
}

func TestEraseLine(t *testing.T) {
	term := vt100.New(2, 10)
	term.Write([]byte("abcdefghij"))
	term.Write([]byte("\x1b[1;5H\x1b[K"))
	assert.Equal(t, "abcd      ", term.DumpRow(0))
}

func TestGetRegion(t *testing.T) {
	term := vt100.New(3, 10)
	term.Write([]byte("0123456789"))
	region := term.GetRegion(0, 2, 0, 5)
	require.Len(t, region, 1)
	assert.Equal(t, "234", region[0])
}

func TestScrollOnLineFeedAtLastRow(t *testing.T) {
	term := vt100.New(2, 5)
	term.Write([]byte("one\r\ntwo\r\nthree"))
	assert.Equal(t, "two  ", term.DumpRow(0))
	assert.Equal(t, "three", term.DumpRow(1))
}

func TestStringIncludesCursorPositionFooter(t *testing.T) {
	term := vt100.New(2, 10)
	out := term.String()
	assert.Contains(t, out, "Cursor pos: (0,0)")
}
