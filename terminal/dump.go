package terminal

import "io"

// ScreenDump writes a ruler-prefixed, line-numbered dump of the
// terminal state to sink, ending with a cursor-position line.
func (s *Session) ScreenDump(sink io.Writer) error {
	s.mu.Lock()
	dump := s.term.String()
	s.mu.Unlock()
	_, err := io.WriteString(sink, dump)
	return err
}

// RowCount returns the terminal's row count.
func (s *Session) RowCount() int { return s.term.Rows() }

// ColCount returns the terminal's column count.
func (s *Session) ColCount() int { return s.term.Cols() }

// DumpRow returns row lineno (0-indexed) as plain text.
func (s *Session) DumpRow(lineno int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term.DumpRow(lineno)
}

// DumpRows returns every row, top to bottom.
func (s *Session) DumpRows() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term.DumpRows()
}

// GetRegion reads the rectangular region [r1,c1]..[r2,c2] (0-indexed).
func (s *Session) GetRegion(r1, c1, r2, c2 int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term.GetRegion(r1, c1, r2, c2)
}

// CursorRow returns the cursor's current row, 0-indexed.
func (s *Session) CursorRow() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term.CursorRow()
}

// CursorCol returns the cursor's current column, 0-indexed.
func (s *Session) CursorCol() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term.CursorCol()
}
