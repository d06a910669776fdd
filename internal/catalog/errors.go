package catalog

import "errors"

var (
	// ErrDuplicateSlug is returned when a slug is re-registered with a
	// kind that conflicts with its existing registration.
	ErrDuplicateSlug = errors.New("duplicate slug with conflicting kind")

	// ErrInvalidKind is returned when registering with KindInvalid.
	ErrInvalidKind = errors.New("invalid asset kind")

	// ErrStaleID is returned for lookups with an id whose generation no
	// longer matches the live slot.
	ErrStaleID = errors.New("stale asset id")
)
