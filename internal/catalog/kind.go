package catalog

import "fmt"

// Kind classifies an asset and determines which categories must complete
// before the asset as a whole is ready.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindMap
	KindCharacter
	KindEnergy
	KindBackground
	KindUI
)

var kindNames = map[Kind]string{
	KindMap:        "map",
	KindCharacter:  "character",
	KindEnergy:     "energy",
	KindBackground: "background",
	KindUI:         "ui",
}

// ParseKind maps the kind string used in asset files to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("catalog: unknown asset kind %q", s)
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// Category is an independent asset-processing domain. Each category has
// its own loader, its own slice of the stage tracker, and its own
// aggregate table; categories never write into each other's state.
type Category uint8

const (
	CategoryMap Category = iota
	CategoryBackground
	CategorySequence
	CategorySpawn
	CategoryCharacter
	CategoryEnergy
	CategoryUI

	categoryCount
)

var categoryNames = [categoryCount]string{
	CategoryMap:        "map",
	CategoryBackground: "background",
	CategorySequence:   "sequence",
	CategorySpawn:      "spawn",
	CategoryCharacter:  "object/character",
	CategoryEnergy:     "object/energy",
	CategoryUI:         "ui",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// Categories lists every category in declaration order.
func Categories() []Category {
	out := make([]Category, categoryCount)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// RequiredCategories returns the base category set a kind needs before it
// can be reported ready. The set is fixed per kind; discovery may extend a
// map asset with CategorySpawn when its file declares a spawn table.
func RequiredCategories(k Kind) []Category {
	switch k {
	case KindMap:
		return []Category{CategoryMap, CategoryBackground}
	case KindCharacter:
		return []Category{CategoryCharacter, CategorySequence}
	case KindEnergy:
		return []Category{CategoryEnergy, CategorySequence}
	case KindBackground:
		return []Category{CategoryBackground}
	case KindUI:
		return []Category{CategoryUI}
	default:
		return nil
	}
}
