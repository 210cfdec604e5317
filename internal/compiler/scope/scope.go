// Package scope tracks which stack slot each in-scope variable name refers
// to during lowering. Scopes nest: function parameters sit in the outermost
// scope and every var..in or for expression pushes a child that shadows
// outward.
package scope

import "github.com/llir/llvm/ir/value"

type Scope struct {
	slots map[string]value.Value
	outer *Scope
}

// New returns a scope nested inside outer. Pass nil for a function's root
// scope.
func New(outer *Scope) *Scope {
	return &Scope{slots: make(map[string]value.Value), outer: outer}
}

// Define binds name to its stack slot in this scope, shadowing any binding
// of the same name in an enclosing scope.
func (s *Scope) Define(name string, slot value.Value) {
	s.slots[name] = slot
}

// Outer returns the enclosing scope, nil for a function's root scope.
func (s *Scope) Outer() *Scope { return s.outer }

// Resolve finds the slot for name, walking outward through enclosing scopes.
func (s *Scope) Resolve(name string) (value.Value, bool) {
	for sc := s; sc != nil; sc = sc.outer {
		if slot, ok := sc.slots[name]; ok {
			return slot, true
		}
	}
	return nil, false
}
