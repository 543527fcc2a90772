package hsm

import (
	"regexp"
	"strings"
)

// stateSegmentPattern matches a single UPPERCASE_SEGMENT: a letter
// followed by letters, digits, or underscores.
var stateSegmentPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]+$`)

// StateName is a validated, structured state identifier: a non-empty
// sequence of UPPERCASE_SEGMENTS joined by "__". It is a value type;
// the zero value is not a valid state name.
type StateName string

// NewStateName validates s against the state-name grammar and returns it
// as a StateName, or InvalidStateNameError if the grammar is violated.
func NewStateName(s string) (StateName, error) {
	if !isValidStateName(s) {
		return "", &InvalidStateNameError{Name: s}
	}
	return StateName(s), nil
}

// MustStateName is like NewStateName but panics on an invalid name. It
// exists for package-level state name literals declared at init time,
// where an invalid grammar is a programming error, not a runtime fault.
func MustStateName(s string) StateName {
	n, err := NewStateName(s)
	if err != nil {
		panic(err)
	}
	return n
}

func isValidStateName(s string) bool {
	if s == "" {
		return false
	}
	for _, segment := range strings.Split(s, "__") {
		if !stateSegmentPattern.MatchString(segment) {
			return false
		}
	}
	return true
}

// String returns the flat string form of the state name.
func (n StateName) String() string { return string(n) }

// Segments splits the state name into its "__"-delimited components.
func (n StateName) Segments() []string {
	return strings.Split(string(n), "__")
}

// IsSubstateOf reports whether child is parent or a substate of
// parent. It is true iff child == parent or child begins with
// parent + "__".
func IsSubstateOf(parent, child StateName) bool {
	if parent == "" || child == "" {
		return false
	}
	if parent == child {
		return true
	}
	p, c := string(parent), string(child)
	if len(c) <= len(p) {
		return false
	}
	return c[:len(p)+2] == p+"__"
}

// Kind identifies which of the three handler prefixes a name resolves
// against: "do", "pre", or "post".
type Kind string

const (
	KindDo   Kind = "do"
	KindPre  Kind = "pre"
	KindPost Kind = "post"
)

// CandidateHandlerNames produces, in priority order, the sequence of
// handler names that would handle state under the given kind:
//
//  1. kind__<state>
//  2. for each proper prefix P of state's segments (longest first):
//     kind__P__default
//  3. kind__default
//
// It fails with InvalidStateNameError if state does not satisfy the
// state-name grammar.
func CandidateHandlerNames(state StateName, kind Kind) ([]string, error) {
	if !isValidStateName(string(state)) {
		return nil, &InvalidStateNameError{Name: string(state)}
	}
	segments := state.Segments()
	names := make([]string, 0, len(segments)+2)
	names = append(names, string(kind)+"__"+string(state))
	for n := len(segments) - 1; n >= 1; n-- {
		prefix := strings.Join(segments[:n], "__")
		names = append(names, string(kind)+"__"+prefix+"__default")
	}
	names = append(names, string(kind)+"__default")
	return names, nil
}

// CandidateTransitionNames produces, in priority order, the sequence of
// transition handler names that would handle a transition between from
// and to:
//
//  1. transition__<from>__to__<to>
//  2. for each proper prefix P of from's segments (longest first):
//     transition__P__default__to__<to>
//  3. transition__default__to__<to>
//
// It fails with InvalidStateNameError if either argument does not
// satisfy the state-name grammar.
func CandidateTransitionNames(from, to StateName) ([]string, error) {
	if !isValidStateName(string(from)) {
		return nil, &InvalidStateNameError{Name: string(from)}
	}
	if !isValidStateName(string(to)) {
		return nil, &InvalidStateNameError{Name: string(to)}
	}
	segments := from.Segments()
	names := make([]string, 0, len(segments)+2)
	names = append(names, "transition__"+string(from)+"__to__"+string(to))
	for n := len(segments) - 1; n >= 1; n-- {
		prefix := strings.Join(segments[:n], "__")
		names = append(names, "transition__"+prefix+"__default__to__"+string(to))
	}
	names = append(names, "transition__default__to__"+string(to))
	return names, nil
}
