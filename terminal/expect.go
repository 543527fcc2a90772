package terminal

import (
	"context"
	"regexp"
	"time"
)

// ExpectDelay blocks until no input has arrived from the child for at
// least delay, bounded by timeout, polling at resolution intervals. If
// requireInput > 0, it first blocks until at least that many bytes
// have been read in total.
func (s *Session) ExpectDelay(ctx context.Context, delay, timeout, resolution time.Duration, requireInput int) error {
	deadline := time.Now().Add(timeout)

	if requireInput > 0 {
		for {
			bytesRead, _, eof := s.snapshot()
			if bytesRead >= int64(requireInput) {
				break
			}
			if eof {
				return &EOFError{}
			}
			if time.Now().After(deadline) {
				return &TimeoutError{Op: "expect_delay(require_input)", Timeout: timeout.String()}
			}
			if err := sleepOrDone(ctx, resolution); err != nil {
				return err
			}
		}
	}

	for {
		_, lastActivity, eof := s.snapshot()
		if eof {
			return &EOFError{}
		}
		if time.Since(lastActivity) >= delay {
			return nil
		}
		if time.Now().After(deadline) {
			return &TimeoutError{Op: "expect_delay", Timeout: timeout.String()}
		}
		if err := sleepOrDone(ctx, resolution); err != nil {
			return err
		}
	}
}

// ExpectLineMatching blocks until some row of the terminal matches
// pattern. If lineno > 0, only that row (1-indexed) is checked;
// otherwise any row is a winner. It polls every 20ms and fails with
// TimeoutError or EOFError as appropriate.
func (s *Session) ExpectLineMatching(ctx context.Context, pattern string, lineno int, timeout time.Duration) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	deadline := time.Now().Add(timeout)
	const resolution = 20 * time.Millisecond
	for {
		s.mu.Lock()
		eof := s.eof
		var matched bool
		if lineno > 0 {
			matched = re.MatchString(s.term.DumpRow(lineno - 1))
		} else {
			for _, row := range s.term.DumpRows() {
				if re.MatchString(row) {
					matched = true
					break
				}
			}
		}
		s.mu.Unlock()
		if matched {
			return nil
		}
		if eof {
			return &EOFError{}
		}
		if time.Now().After(deadline) {
			return &TimeoutError{Op: "expect_line_matching", Timeout: timeout.String()}
		}
		if err := sleepOrDone(ctx, resolution); err != nil {
			return err
		}
	}
}

// ExpectCursorPosition blocks until the cursor is at the stated row
// and/or column; a nil component acts as a wildcard.
func (s *Session) ExpectCursorPosition(ctx context.Context, row, column *int, timeout, resolution time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		s.mu.Lock()
		curR, curC, eof := s.term.CursorRow(), s.term.CursorCol(), s.eof
		s.mu.Unlock()
		if (row == nil || curR == *row) && (column == nil || curC == *column) {
			return nil
		}
		if eof {
			return &EOFError{}
		}
		if time.Now().After(deadline) {
			return &TimeoutError{Op: "expect_cursor_position", Timeout: timeout.String()}
		}
		if err := sleepOrDone(ctx, resolution); err != nil {
			return err
		}
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
