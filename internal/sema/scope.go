package sema

import "rosella/internal/ast"

// scopeStack implements lexical scoping as an explicit stack of frames rather
// than parent-linked scope objects: frame lifetime is tied to the walk's call
// depth, and popping a frame destroys every binding the block introduced.
type scopeStack struct {
	frames []map[string]ast.Type
}

func newScopeStack() *scopeStack {
	return &scopeStack{frames: []map[string]ast.Type{{}}}
}

// push enters a new lexical scope (block, fn body, loop or branch body).
func (s *scopeStack) push() {
	s.frames = append(s.frames, map[string]ast.Type{})
}

// pop leaves the current scope; its bindings become unreachable.
func (s *scopeStack) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

// define binds a name in the top frame. Rebinding an existing name is legal:
// a second let of the same name shadows the earlier binding without touching
// any outer frame.
func (s *scopeStack) define(name string, t ast.Type) {
	s.frames[len(s.frames)-1][name] = t
}

// lookup resolves a name against the innermost frame that binds it.
func (s *scopeStack) lookup(name string) (ast.Type, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if t, ok := s.frames[i][name]; ok {
			return t, true
		}
	}
	return ast.TypeUnknown, false
}
