// Package catalog assigns stable identities to discovered assets and
// owns the slug-to-identity tables. It is the only component allowed to
// mint or retire an AssetID; everything downstream treats identities as
// opaque values.
package catalog

import (
	"fmt"
	"strings"
)

// AssetID identifies one asset for the lifetime of a session. It combines
// a dense slot number with a generation counter so that a retired slot can
// be reused without stale references aliasing the new occupant. Equality
// requires both fields to match.
type AssetID struct {
	Slot uint32
	Gen  uint32
}

// String renders the id as "slot@gen" for logs and error messages.
func (id AssetID) String() string {
	return fmt.Sprintf("%d@%d", id.Slot, id.Gen)
}

// Slug is a stable, human-readable asset identifier of the form
// "namespace/name". Authors use slugs to cross-reference assets in
// configuration files; the catalog translates between slugs and ids.
type Slug string

// ParseSlug validates the namespace/name shape of a slug.
// Both parts must be non-empty and contain no further slashes.
func ParseSlug(s string) (Slug, error) {
	ns, name, ok := strings.Cut(s, "/")
	if !ok || ns == "" || name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("catalog: malformed slug %q (want namespace/name)", s)
	}
	return Slug(s), nil
}

// Namespace returns the part before the slash.
func (s Slug) Namespace() string {
	ns, _, _ := strings.Cut(string(s), "/")
	return ns
}

// Name returns the part after the slash.
func (s Slug) Name() string {
	_, name, _ := strings.Cut(string(s), "/")
	return name
}

func (s Slug) String() string { return string(s) }
