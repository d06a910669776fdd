package loaders

import (
	"fmt"
	"sync"
)

// SpriteHandle is an opaque reference to an acquired sprite resource.
type SpriteHandle struct {
	Name string
	Ref  uint32
}

// SpriteResolver produces sprite handles for the names referenced by
// configurations. It stands in for the atlas/texture collaborator; a
// name it cannot produce is a resource-acquisition failure for the
// referencing category.
type SpriteResolver interface {
	Acquire(name string) (SpriteHandle, error)
}

// StaticSprites resolves against a fixed name set, assigning handles in
// acquisition order. Used by tests and by dry validation runs where no
// atlas exists. Safe for concurrent use; loaders in different categories
// share one resolver within a tick.
type StaticSprites struct {
	mu      sync.Mutex
	allowed map[string]bool
	handles map[string]SpriteHandle
	next    uint32
}

// NewStaticSprites builds a resolver that can produce exactly the given
// names. An empty list means every non-empty name resolves.
func NewStaticSprites(names ...string) *StaticSprites {
	s := &StaticSprites{
		handles: make(map[string]SpriteHandle),
	}
	if len(names) > 0 {
		s.allowed = make(map[string]bool, len(names))
		for _, n := range names {
			s.allowed[n] = true
		}
	}
	return s
}

// Acquire returns a stable handle per name, creating one on first use.
func (s *StaticSprites) Acquire(name string) (SpriteHandle, error) {
	if name == "" {
		return SpriteHandle{}, fmt.Errorf("loaders: empty sprite name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.allowed != nil && !s.allowed[name] {
		return SpriteHandle{}, fmt.Errorf("loaders: sprite %q not available", name)
	}
	if h, ok := s.handles[name]; ok {
		return h, nil
	}
	s.next++
	h := SpriteHandle{Name: name, Ref: s.next}
	s.handles[name] = h
	return h, nil
}
