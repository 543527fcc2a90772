package terminal

import "fmt"

// TimeoutError is returned by any expect_* operation that exceeds its
// deadline before the condition it is waiting for is satisfied.
type TimeoutError struct {
	Op      string
	Timeout string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("terminal: %s timed out after %s", e.Op, e.Timeout)
}

// EOFError is returned when the child process's output stream closes
// while an expect_* operation is still waiting.
type EOFError struct{}

func (e *EOFError) Error() string { return "terminal: child closed (EOF)" }

// UnknownKeyError is returned by SendKey when a key name is neither in
// the built-in key table nor overridden by os.term_key_<NAME>.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("terminal: key %q not defined", e.Key)
}
