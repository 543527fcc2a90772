package screen_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charles-dyfis-net/isg-state-machine-framework/config"
	"github.com/charles-dyfis-net/isg-state-machine-framework/hsm"
	"github.com/charles-dyfis-net/isg-state-machine-framework/screen"
)

// fakeTerminal is a minimal in-memory stand-in for terminal.Session,
// driven by a fixed grid of rows.
type fakeTerminal struct {
	rows             []string
	delayCalls       int
	lineMatchResults map[string]bool
}

func (f *fakeTerminal) ExpectDelay(ctx context.Context, delay, timeout, resolution time.Duration, requireInput int) error {
	f.delayCalls++
	return nil
}

func (f *fakeTerminal) ExpectLineMatching(ctx context.Context, pattern string, lineno int, timeout time.Duration) error {
	return nil
}

func (f *fakeTerminal) ScreenDump(sink io.Writer) error {
	_, err := io.WriteString(sink, "dump")
	return err
}

func (f *fakeTerminal) GetRegion(r1, c1, r2, c2 int) []string {
	if r1 < 0 || r1 >= len(f.rows) {
		return nil
	}
	row := f.rows[r1]
	if c2 > len(row) {
		c2 = len(row)
	}
	if c1 > len(row) {
		c1 = len(row)
	}
	return []string{row[c1:c2]}
}

func newPipeline(t *testing.T, yamlText string, term screen.Terminal) *screen.Pipeline {
	t.Helper()
	cfg, err := config.LoadString(yamlText)
	require.NoError(t, err)
	return &screen.Pipeline{
		Term:     term,
		Config:   cfg,
		Captures: screen.NewCaptures(),
	}
}

func TestImageCapturesFixedpos(t *testing.T) {
	term := &fakeTerminal{rows: []string{"0123456789", "  hello   "}}
	p := newPipeline(t, `
screens:
  UnitX:
    MENU:
      default:
        data__msg: ["fixedpos", 1, 0, 10, true]
`, term)

	err := p.Image(context.Background(), "UnitX", hsm.MustStateName("MENU"), "default", false, nil)
	require.NoError(t, err)

	v, ok := p.Captures.Get("UnitX", "msg")
	require.True(t, ok)
	assert.Equal(t, "hello", v)
	assert.Equal(t, 1, term.delayCalls)
}

func TestImageRedirectRegexRecursesAndCaptures(t *testing.T) {
	term := &fakeTerminal{rows: []string{"xx", "xx", "xx", "xxxxxERROR: boom"}}
	p := newPipeline(t, `
screens:
  UnitX:
    MENU:
      default:
        redirect_1: ["regex", 3, 5, 10, "ERROR.*", "error_page"]
      error_page:
        data__msg: ["fixedpos", 3, 0, 80, true]
`, term)

	err := p.Image(context.Background(), "UnitX", hsm.MustStateName("MENU"), "default", false, nil)
	require.NoError(t, err)

	v, ok := p.Captures.Get("UnitX", "msg")
	require.True(t, ok)
	assert.Equal(t, "xxxxxERROR: boom", v)
}

func TestImageRedirectErrorFaults(t *testing.T) {
	term := &fakeTerminal{rows: []string{"x"}}
	p := newPipeline(t, `
screens:
  UnitX:
    MENU:
      default:
        redirect_1: ["error", "went wrong"]
`, term)

	err := p.Image(context.Background(), "UnitX", hsm.MustStateName("MENU"), "default", false, nil)
	var redirected *screen.RedirectedToError
	require.ErrorAs(t, err, &redirected)
	assert.Equal(t, []any{"went wrong"}, redirected.Args)
}

func TestImageInheritFromChainsCapture(t *testing.T) {
	term := &fakeTerminal{rows: []string{"foo-value "}}
	p := newPipeline(t, `
screens:
  UnitX:
    ST:
      default:
        inherit_from: other
    other:
      default:
        data__foo: ["fixedpos", 0, 0, 10, true]
`, term)

	err := p.Image(context.Background(), "UnitX", hsm.MustStateName("ST"), "default", false, nil)
	require.NoError(t, err)

	v, ok := p.Captures.Get("UnitX", "foo")
	require.True(t, ok)
	assert.Equal(t, "foo-value", v)
}

func TestImageUnknownRedirectKindFaults(t *testing.T) {
	term := &fakeTerminal{rows: []string{"x"}}
	p := newPipeline(t, `
screens:
  UnitX:
    MENU:
      default:
        redirect_1: ["bogus"]
`, term)

	err := p.Image(context.Background(), "UnitX", hsm.MustStateName("MENU"), "default", false, nil)
	var unknown *screen.UnknownRedirectKindError
	require.ErrorAs(t, err, &unknown)
}
