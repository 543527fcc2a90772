// Package hsm implements a hierarchical state machine runtime keyed by
// structured state names.
//
// A state name is a sequence of UPPERCASE_SEGMENTS joined by "__"; the
// sequence encodes a substate path, so "A__B__C" is a substate of "A__B"
// and of "A". Handlers are resolved against a state name by a
// longest-prefix fallback search (see CandidateHandlerNames), and an
// Automaton may compose several BehaviorUnit values into one live
// handler chain whose effective behavior can change at runtime.
//
// The package is deliberately agnostic of what a handler actually does;
// it only resolves names, applies returned state changes, and enforces
// the run-loop and transition invariants described in the design.
package hsm
