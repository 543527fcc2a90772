// Package vt100 implements a small cursor-tracking terminal emulator:
// a row buffer fed with raw bytes from a child process, tracking
// cursor position and supporting the subset of VT100/ANSI control
// sequences needed to read back rows and regions of screen state. It
// replaces the narrow surface the original implementation borrowed
// from a third-party ANSI emulator (cur_r, cur_c, cols, dump_row(s),
// get_region), reimplemented directly since no such emulator exists in
// the wider retrieval pack.
package vt100

import (
	"strconv"
	"strings"
)

// Terminal is a fixed-size character grid with cursor tracking. It is
// not safe for concurrent use; callers serialize access (the terminal
// façade owns the single Terminal fed by one child process).
type Terminal struct {
	rows, cols int
	grid       [][]rune
	curR, curC int // 0-indexed internally; exported accessors are 0-indexed too

	params []int
	inEsc  bool
	inCSI  bool
}

// New creates a blank terminal of the given size.
func New(rows, cols int) *Terminal {
	t := &Terminal{rows: rows, cols: cols}
	t.grid = make([][]rune, rows)
	for i := range t.grid {
		t.grid[i] = blankRow(cols)
	}
	return t
}

func blankRow(cols int) []rune {
	row := make([]rune, cols)
	for i := range row {
		row[i] = ' '
	}
	return row
}

// Rows reports the terminal's row count.
func (t *Terminal) Rows() int { return t.rows }

// Cols reports the terminal's column count.
func (t *Terminal) Cols() int { return t.cols }

// CursorRow returns the cursor's current row, 0-indexed.
func (t *Terminal) CursorRow() int { return t.curR }

// CursorCol returns the cursor's current column, 0-indexed.
func (t *Terminal) CursorCol() int { return t.curC }

// Write feeds raw bytes from the child into the emulator, implementing
// io.Writer so a Terminal can be chained directly onto a read pipe.
func (t *Terminal) Write(p []byte) (int, error) {
	for _, b := range p {
		t.feed(rune(b))
	}
	return len(p), nil
}

func (t *Terminal) feed(c rune) {
	switch {
	case t.inCSI:
		t.feedCSI(c)
	case t.inEsc:
		t.feedEsc(c)
	case c == 0x1b:
		t.inEsc = true
	case c == '\r':
		t.curC = 0
	case c == '\n':
		t.lineFeed()
	case c == '\b':
		if t.curC > 0 {
			t.curC--
		}
	default:
		t.put(c)
	}
}

func (t *Terminal) feedEsc(c rune) {
	t.inEsc = false
	switch c {
	case '[':
		t.inCSI = true
		t.params = nil
	case 'M':
		t.reverseLineFeed()
	default:
		// unsupported escape, ignored
	}
}

func (t *Terminal) feedCSI(c rune) {
	switch {
	case c >= '0' && c <= '9':
		if len(t.params) == 0 {
			t.params = append(t.params, 0)
		}
		last := len(t.params) - 1
		t.params[last] = t.params[last]*10 + int(c-'0')
		return
	case c == ';':
		t.params = append(t.params, 0)
		return
	}
	t.inCSI = false
	t.applyCSI(c, t.params)
	t.params = nil
}

func (t *Terminal) param(params []int, idx, def int) int {
	if idx >= len(params) || params[idx] == 0 {
		return def
	}
	return params[idx]
}

func (t *Terminal) applyCSI(final rune, params []int) {
	switch final {
	case 'A': // cursor up
		t.curR = clamp(t.curR-t.param(params, 0, 1), 0, t.rows-1)
	case 'B': // cursor down
		t.curR = clamp(t.curR+t.param(params, 0, 1), 0, t.rows-1)
	case 'C': // cursor forward
		t.curC = clamp(t.curC+t.param(params, 0, 1), 0, t.cols-1)
	case 'D': // cursor back
		t.curC = clamp(t.curC-t.param(params, 0, 1), 0, t.cols-1)
	case 'H', 'f': // cursor position (1-indexed row;col)
		row := t.param(params, 0, 1) - 1
		col := t.param(params, 1, 1) - 1
		t.curR = clamp(row, 0, t.rows-1)
		t.curC = clamp(col, 0, t.cols-1)
	case 'J': // erase in display
		t.eraseDisplay(t.param(params, 0, 0))
	case 'K': // erase in line
		t.eraseLine(t.param(params, 0, 0))
	case 'm':
		// SGR (colors/attributes): rows are dumped as plain text, so
		// attributes are parsed (to keep the CSI parser correct) and
		// discarded.
	default:
		// unsupported final byte, ignored
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (t *Terminal) put(c rune) {
	if t.curR < 0 || t.curR >= t.rows {
		return
	}
	if t.curC >= t.cols {
		t.lineFeed()
	}
	t.grid[t.curR][t.curC] = c
	t.curC++
}

func (t *Terminal) lineFeed() {
	t.curC = 0
	if t.curR == t.rows-1 {
		copy(t.grid, t.grid[1:])
		t.grid[t.rows-1] = blankRow(t.cols)
		return
	}
	t.curR++
}

func (t *Terminal) reverseLineFeed() {
	if t.curR == 0 {
		copy(t.grid[1:], t.grid[:t.rows-1])
		t.grid[0] = blankRow(t.cols)
		return
	}
	t.curR--
}

func (t *Terminal) eraseLine(mode int) {
	row := t.grid[t.curR]
	switch mode {
	case 0:
		for c := t.curC; c < t.cols; c++ {
			row[c] = ' '
		}
	case 1:
		for c := 0; c <= t.curC && c < t.cols; c++ {
			row[c] = ' '
		}
	case 2:
		for c := range row {
			row[c] = ' '
		}
	}
}

func (t *Terminal) eraseDisplay(mode int) {
	switch mode {
	case 0:
		t.eraseLine(0)
		for r := t.curR + 1; r < t.rows; r++ {
			t.grid[r] = blankRow(t.cols)
		}
	case 1:
		t.eraseLine(1)
		for r := 0; r < t.curR; r++ {
			t.grid[r] = blankRow(t.cols)
		}
	case 2:
		for r := range t.grid {
			t.grid[r] = blankRow(t.cols)
		}
	}
}

// DumpRow returns row lineno (0-indexed) as a plain string, right-padded
// to the terminal's width.
func (t *Terminal) DumpRow(lineno int) string {
	if lineno < 0 || lineno >= t.rows {
		return ""
	}
	return string(t.grid[lineno])
}

// DumpRows returns every row, top to bottom.
func (t *Terminal) DumpRows() []string {
	out := make([]string, t.rows)
	for i := range t.grid {
		out[i] = string(t.grid[i])
	}
	return out
}

// GetRegion reads the rectangular region [r1,c1]..[r2,c2] (0-indexed,
// inclusive of r1/c1, exclusive of c2 on each row spanned) and returns
// one string per row spanned.
func (t *Terminal) GetRegion(r1, c1, r2, c2 int) []string {
	if r2 < r1 {
		r1, r2 = r2, r1
	}
	out := make([]string, 0, r2-r1+1)
	for r := r1; r <= r2; r++ {
		if r < 0 || r >= t.rows {
			out = append(out, "")
			continue
		}
		lo, hi := clamp(c1, 0, t.cols), clamp(c2, 0, t.cols)
		if hi < lo {
			lo, hi = hi, lo
		}
		out = append(out, string(t.grid[r][lo:hi]))
	}
	return out
}

// String renders a ruler-prefixed, line-numbered dump of the terminal
// state ending with a cursor-position line, matching the original
// screen_dump layout.
func (t *Terminal) String() string {
	var b strings.Builder
	b.WriteString("   ")
	for n := 0; n*10 < t.cols; n++ {
		b.WriteString(padLeft(strconv.Itoa(n+1), 10))
	}
	b.WriteString("\n   ")
	ruler := strings.Repeat("1234567890", t.cols/10+1)
	b.WriteString(ruler[:t.cols])
	b.WriteString("\n   ")
	b.WriteString(strings.Repeat("=", t.cols))
	b.WriteString("\n")
	for i, row := range t.grid {
		rownum := i + 1
		if rownum%10 == 0 {
			b.WriteString(strconv.Itoa((rownum / 10) % 10))
		} else {
			b.WriteString(" ")
		}
		b.WriteString(strconv.Itoa(rownum % 10))
		b.WriteString("|")
		b.WriteString(string(row))
		b.WriteString("\n")
	}
	b.WriteString("Cursor pos: (")
	b.WriteString(strconv.Itoa(t.curR))
	b.WriteString(",")
	b.WriteString(strconv.Itoa(t.curC))
	b.WriteString(")\n")
	return b.String()
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return strings.Repeat(" ", width-len(s)) + s
}
