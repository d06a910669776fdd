package catalog

import (
	"fmt"
	"sort"
	"sync"
)

// slot is one arena cell. gen counts how many times the cell has been
// (re)occupied; a live slot's gen matches the AssetID handed out for it.
type slot struct {
	slug Slug
	kind Kind
	gen  uint32
	live bool
}

// Catalog owns the identity tables: a slot arena with generation counters
// and the slug index. Registration is idempotent per slug; retiring an id
// bumps the generation so stale handles stop resolving even after the
// slot is reused.
//
// The catalog is safe for concurrent use. It is the only shared-write
// structure in the pipeline (discovery registers, the coordinator
// retires); everything else is single-writer.
type Catalog struct {
	mu     sync.RWMutex
	slots  []slot
	free   []uint32
	bySlug map[Slug]uint32
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		bySlug: make(map[Slug]uint32),
	}
}

// Register returns the id for slug, allocating a fresh generational id if
// the slug is unknown. Registering an already-known slug with the same
// kind returns the existing id; a conflicting kind is rejected with
// ErrDuplicateSlug.
func (c *Catalog) Register(slug Slug, kind Kind) (AssetID, error) {
	if kind == KindInvalid {
		return AssetID{}, fmt.Errorf("catalog: cannot register %q: %w", slug, ErrInvalidKind)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if idx, ok := c.bySlug[slug]; ok {
		s := &c.slots[idx]
		if s.kind != kind {
			return AssetID{}, fmt.Errorf("catalog: slug %q already registered as %s, not %s: %w",
				slug, s.kind, kind, ErrDuplicateSlug)
		}
		return AssetID{Slot: idx, Gen: s.gen}, nil
	}

	var idx uint32
	if n := len(c.free); n > 0 {
		idx = c.free[n-1]
		c.free = c.free[:n-1]
		s := &c.slots[idx]
		s.slug = slug
		s.kind = kind
		s.live = true
	} else {
		idx = uint32(len(c.slots))
		c.slots = append(c.slots, slot{slug: slug, kind: kind, gen: 1, live: true})
	}

	c.bySlug[slug] = idx
	return AssetID{Slot: idx, Gen: c.slots[idx].gen}, nil
}

// Resolve looks up the live id for a slug.
func (c *Catalog) Resolve(slug Slug) (AssetID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx, ok := c.bySlug[slug]
	if !ok {
		return AssetID{}, false
	}
	return AssetID{Slot: idx, Gen: c.slots[idx].gen}, true
}

// SlugOf returns the slug for a live id. A retired or stale id yields
// no slug.
func (c *Catalog) SlugOf(id AssetID) (Slug, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.aliveLocked(id) {
		return "", false
	}
	return c.slots[id.Slot].slug, true
}

// KindOf returns the kind for a live id.
func (c *Catalog) KindOf(id AssetID) (Kind, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.aliveLocked(id) {
		return KindInvalid, false
	}
	return c.slots[id.Slot].kind, true
}

// Lookup returns the slug and kind for id in one read. A retired or
// stale id yields ErrStaleID, which distinguishes "gone" from "never
// existed" for callers that held the id across a retirement.
func (c *Catalog) Lookup(id AssetID) (Slug, Kind, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.aliveLocked(id) {
		return "", KindInvalid, fmt.Errorf("catalog: lookup %s: %w", id, ErrStaleID)
	}
	s := &c.slots[id.Slot]
	return s.slug, s.kind, nil
}

// Alive reports whether id refers to a live asset: the slot must be
// occupied and the generation must match.
func (c *Catalog) Alive(id AssetID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.aliveLocked(id)
}

func (c *Catalog) aliveLocked(id AssetID) bool {
	if int(id.Slot) >= len(c.slots) {
		return false
	}
	s := &c.slots[id.Slot]
	return s.live && s.gen == id.Gen
}

// Retire invalidates id, bumps the slot generation, and frees the slot
// for reuse. Retiring an already-retired or stale id is a no-op and
// reports false. Purging the asset's tracker entries and aggregates is
// the coordinator's job, not the catalog's.
func (c *Catalog) Retire(id AssetID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.aliveLocked(id) {
		return false
	}

	s := &c.slots[id.Slot]
	delete(c.bySlug, s.slug)
	s.slug = ""
	s.kind = KindInvalid
	s.live = false
	s.gen++
	c.free = append(c.free, id.Slot)
	return true
}

// Live returns the ids of all live assets sorted by slug, for
// deterministic iteration.
func (c *Catalog) Live() []AssetID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]AssetID, 0, len(c.bySlug))
	for _, idx := range c.bySlug {
		ids = append(ids, AssetID{Slot: idx, Gen: c.slots[idx].gen})
	}
	sort.Slice(ids, func(i, j int) bool {
		return c.slots[ids[i].Slot].slug < c.slots[ids[j].Slot].slug
	})
	return ids
}

// Len reports the number of live assets.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bySlug)
}
