package evaluator

import "sort"

// Scope is one frame of the scope chain.
type Scope struct {
	store map[string]Value
	outer *Scope
}

// NewScope creates a root (global) scope.
func NewScope() *Scope {
	return &Scope{store: make(map[string]Value)}
}

// NewNestedScope creates a frame for a block, loop body, catch body or
// comprehension body.
func NewNestedScope(outer *Scope) *Scope {
	return &Scope{store: make(map[string]Value), outer: outer}
}

// NewFunctionScope creates the frame for a function call. Its parent is the
// global scope, so function bodies cannot see their caller's locals.
func NewFunctionScope(global *Scope) *Scope {
	return NewNestedScope(global.Global())
}

// Get resolves name along the chain.
func (s *Scope) Get(name string) (Value, bool) {
	for frame := s; frame != nil; frame = frame.outer {
		if v, ok := frame.store[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set binds name in this frame.
func (s *Scope) Set(name string, v Value) {
	s.store[name] = v
}

// Assign updates the nearest frame that binds name, or binds it in this
// frame if no frame does.
func (s *Scope) Assign(name string, v Value) {
	for frame := s; frame != nil; frame = frame.outer {
		if _, ok := frame.store[name]; ok {
			frame.store[name] = v
			return
		}
	}
	s.store[name] = v
}

// Global returns the outermost frame.
func (s *Scope) Global() *Scope {
	frame := s
	for frame.outer != nil {
		frame = frame.outer
	}
	return frame
}

// Names returns every name visible from this frame, sorted.
func (s *Scope) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for frame := s; frame != nil; frame = frame.outer {
		for name := range frame.store {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// withNestedScope runs fn in a fresh nested frame and restores the previous
// frame on every exit path.
func (in *Interpreter) withNestedScope(fn func(scope *Scope) Value) Value {
	saved := in.scope
	in.scope = NewNestedScope(saved)
	defer func() { in.scope = saved }()
	return fn(in.scope)
}

// withFunctionScope runs fn in a fresh function frame.
func (in *Interpreter) withFunctionScope(fn func(scope *Scope) Value) Value {
	saved := in.scope
	in.scope = NewFunctionScope(in.Globals)
	defer func() { in.scope = saved }()
	return fn(in.scope)
}
