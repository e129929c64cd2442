package lineform

import "fmt"

// binder builds the output value tree for one run. Scopes form a stack: the
// root scope at the bottom plus one open scope per in-progress repeat
// iteration. All writes go to the innermost scope; a completed iteration
// scope is popped and attached to its parent's array, after which it is
// never written again.
type binder struct {
	scopes []map[string]any
}

func newBinder() *binder {
	return &binder{scopes: []map[string]any{{}}}
}

// root returns the outermost scope, which becomes the output value.
func (b *binder) root() map[string]any {
	return b.scopes[0]
}

func (b *binder) active() map[string]any {
	return b.scopes[len(b.scopes)-1]
}

// pushScope opens a fresh innermost scope.
func (b *binder) pushScope() {
	b.scopes = append(b.scopes, map[string]any{})
}

// popScope closes the innermost scope and returns it for attachment.
func (b *binder) popScope() map[string]any {
	s := b.active()
	b.scopes = b.scopes[:len(b.scopes)-1]
	return s
}

// discardScope closes the innermost scope and drops its contents.
func (b *binder) discardScope() {
	b.scopes = b.scopes[:len(b.scopes)-1]
}

// writeProperty stores a captured value in the active scope. Writing a name
// that is already present is an error; bindings never overwrite.
func (b *binder) writeProperty(name, value string) error {
	s := b.active()
	if _, exists := s[name]; exists {
		return fmt.Errorf("property %q is already bound in this scope", name)
	}
	s[name] = value
	return nil
}

// appendToArray attaches a completed child scope to the named array in the
// active scope, creating the array on first use. Sibling repeats naming the
// same array accumulate into it; a non-array value under the name is an
// error.
func (b *binder) appendToArray(name string, child map[string]any) error {
	s := b.active()
	existing, ok := s[name]
	if !ok {
		s[name] = []any{child}
		return nil
	}
	arr, ok := existing.([]any)
	if !ok {
		return fmt.Errorf("property %q is already bound to a non-array value", name)
	}
	s[name] = append(arr, child)
	return nil
}

// snapshotKey records the value under name in the active scope so a failed
// repeat can undo its appends. existed distinguishes an absent key from a
// present nil.
func (b *binder) snapshotKey(name string) (value any, existed bool) {
	v, ok := b.active()[name]
	return v, ok
}

// restoreKey puts a key back to its snapshotKey state.
func (b *binder) restoreKey(name string, value any, existed bool) {
	if existed {
		b.active()[name] = value
	} else {
		delete(b.active(), name)
	}
}

// snapshotScope copies the active scope so a failed or-alternative can be
// rolled back. The copy is shallow, which is sound: attached child scopes
// are never mutated again, and a rolled-back array append only swaps the
// slice header back.
func (b *binder) snapshotScope() map[string]any {
	s := b.active()
	snap := make(map[string]any, len(s))
	for k, v := range s {
		snap[k] = v
	}
	return snap
}

// restoreScope replaces the active scope with a snapshot taken by
// snapshotScope. The snapshot must not be used again afterwards.
func (b *binder) restoreScope(snap map[string]any) {
	b.scopes[len(b.scopes)-1] = snap
}

// depth returns the number of open scopes, including the root.
func (b *binder) depth() int {
	return len(b.scopes)
}
