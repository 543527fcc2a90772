package hsm

// registry is the rebuilt-on-composition index from (kind, name) and
// transition name to the handler that should run, together with the
// identity of the unit that declared it. It implements C2: given C1's
// candidate name lists, walk the chain from most-recently-composed unit
// backwards and take the first match (I6: later composition wins).
type registry[T any] struct {
	do           map[string]originHandler[T]
	pre          map[string]originHandler[T]
	post         map[string]originHandler[T]
	transitions  map[string]originTransition[T]
	handledState map[StateName]bool
}

// buildRegistry indexes chain in composition order; later units in the
// slice override earlier ones for identical names, matching I6.
func buildRegistry[T any](chain []BehaviorUnit[T]) *registry[T] {
	reg := &registry[T]{
		do:           make(map[string]originHandler[T]),
		pre:          make(map[string]originHandler[T]),
		post:         make(map[string]originHandler[T]),
		transitions:  make(map[string]originTransition[T]),
		handledState: make(map[StateName]bool),
	}
	for _, unit := range chain {
		name := unit.Name()
		for frag, h := range unit.DoHandlers() {
			reg.do["do__"+frag] = originHandler[T]{unit: name, handler: h}
			if state, err := NewStateName(frag); err == nil {
				reg.handledState[state] = true
			}
		}
		for frag, h := range unit.PreHandlers() {
			reg.pre["pre__"+frag] = originHandler[T]{unit: name, handler: h}
		}
		for frag, h := range unit.PostHandlers() {
			reg.post["post__"+frag] = originHandler[T]{unit: name, handler: h}
		}
		for frag, t := range unit.Transitions() {
			reg.transitions["transition__"+frag] = originTransition[T]{unit: name, handler: t}
		}
	}
	return reg
}

func (r *registry[T]) byKind(kind Kind) map[string]originHandler[T] {
	switch kind {
	case KindPre:
		return r.pre
	case KindPost:
		return r.post
	default:
		return r.do
	}
}

// findHandler applies CandidateHandlerNames in order and returns the
// first match. If allowMissing is true and nothing matches, the null
// handler is returned instead of an error (used for pre/post per C4).
func (r *registry[T]) findHandler(state StateName, kind Kind, allowMissing bool) (HandlerFunc[T], string, error) {
	candidates, err := CandidateHandlerNames(state, kind)
	if err != nil {
		return nil, "", err
	}
	bucket := r.byKind(kind)
	for _, name := range candidates {
		if h, ok := bucket[name]; ok {
			return h.handler, h.unit, nil
		}
	}
	if allowMissing {
		return nullHandler[T], "", nil
	}
	return nil, "", &NoHandlerError{State: state, Kind: string(kind)}
}

// findTransition applies CandidateTransitionNames in order and returns
// the first match. NoHandlerError is always fatal here (transitions
// never allow missing).
func (r *registry[T]) findTransition(from, to StateName) (TransitionFunc[T], string, error) {
	candidates, err := CandidateTransitionNames(from, to)
	if err != nil {
		return nil, "", err
	}
	for _, name := range candidates {
		if t, ok := r.transitions[name]; ok {
			return t.handler, t.unit, nil
		}
	}
	return nil, "", &NoHandlerError{State: from, Kind: "transition"}
}

// handledStates returns the set of exact state names declared by any
// do__ handler in the chain (fallback handlers ending in __default are
// not exact state declarations).
func (r *registry[T]) handledStates() map[StateName]bool {
	return r.handledState
}

// haveHandlerFor reports whether any do handler (exact or fallback)
// would resolve for state — used by TransitionTo's non-exact
// post-condition.
func (r *registry[T]) haveHandlerFor(state StateName) bool {
	_, _, err := r.findHandler(state, KindDo, false)
	return err == nil
}
