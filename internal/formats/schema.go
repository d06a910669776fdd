// Package formats defines the declarative schema for asset files and the
// two interchangeable textual encodings they ship in, YAML and JSON. The
// same document shape decodes from either; files are routed to a decoder
// by extension.
//
// This package is syntax only. Semantic validation (reference resolution,
// range checks, required sub-fields) belongs to the category loaders.
package formats

// Document is the top-level envelope of one asset file. Every asset names
// its slug and kind; the category sections present depend on the kind.
type Document struct {
	Slug string `yaml:"slug" json:"slug"`
	Kind string `yaml:"kind" json:"kind"`

	Map        *MapSection        `yaml:"map,omitempty" json:"map,omitempty"`
	Background *BackgroundSection `yaml:"background,omitempty" json:"background,omitempty"`
	Sequence   *SequenceSection   `yaml:"sequence,omitempty" json:"sequence,omitempty"`
	Spawn      *SpawnSection      `yaml:"spawn,omitempty" json:"spawn,omitempty"`
	Object     *ObjectSection     `yaml:"object,omitempty" json:"object,omitempty"`
	UI         *UISection         `yaml:"ui,omitempty" json:"ui,omitempty"`

	Metadata map[string]string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Size holds grid dimensions.
type Size struct {
	W int `yaml:"w" json:"w"`
	H int `yaml:"h" json:"h"`
}

// MapSection describes tile geometry and the background this map uses.
type MapSection struct {
	Size       Size     `yaml:"size" json:"size"`
	Tiles      []string `yaml:"tiles" json:"tiles"`           // one string per row, one rune per tile
	Background string   `yaml:"background" json:"background"` // slug of a background asset
}

// BackgroundSection describes parallax layers, near to far.
type BackgroundSection struct {
	Layers []BackgroundLayer `yaml:"layers" json:"layers"`
}

// BackgroundLayer is one scrolling layer.
type BackgroundLayer struct {
	Image    string  `yaml:"image" json:"image"`
	Parallax float64 `yaml:"parallax" json:"parallax"` // scroll factor, 0..1
}

// SequenceSection describes named animation sequences.
type SequenceSection struct {
	// CopyFrom optionally reuses another asset's sequences as a base;
	// local sequences override by name.
	CopyFrom  string         `yaml:"copy_from,omitempty" json:"copy_from,omitempty"`
	Sequences []SequenceSpec `yaml:"sequences" json:"sequences"`
}

// SequenceSpec is one named animation.
type SequenceSpec struct {
	Name   string      `yaml:"name" json:"name"`
	Loop   bool        `yaml:"loop,omitempty" json:"loop,omitempty"`
	Frames []FrameSpec `yaml:"frames" json:"frames"`
}

// FrameSpec is one frame of an animation.
type FrameSpec struct {
	Sprite     string `yaml:"sprite" json:"sprite"`
	DurationMS int    `yaml:"duration_ms" json:"duration_ms"`
}

// SpawnSection lists placements on the owning map.
type SpawnSection struct {
	Entries []SpawnEntry `yaml:"entries" json:"entries"`
}

// SpawnEntry places count instances of the subject asset at an offset
// inside the owning map's bounds.
type SpawnEntry struct {
	Subject string `yaml:"subject" json:"subject"` // slug of a character or energy asset
	X       int    `yaml:"x" json:"x"`
	Y       int    `yaml:"y" json:"y"`
	Count   int    `yaml:"count,omitempty" json:"count,omitempty"` // default 1
}

// ObjectSection describes the runtime stats of a character or energy
// asset. Character assets use Health/Speed; energy assets use
// Amount/Radius. Sequences lists the animation names the object expects
// from its own sequence section.
type ObjectSection struct {
	DisplayName string   `yaml:"display_name" json:"display_name"`
	Health      int      `yaml:"health,omitempty" json:"health,omitempty"`
	Speed       float64  `yaml:"speed,omitempty" json:"speed,omitempty"`
	Amount      int      `yaml:"amount,omitempty" json:"amount,omitempty"`
	Radius      float64  `yaml:"radius,omitempty" json:"radius,omitempty"`
	Sequences   []string `yaml:"sequences" json:"sequences"`
}

// UISection describes a layout as a widget tree.
type UISection struct {
	Widgets []WidgetSpec `yaml:"widgets" json:"widgets"`
}

// WidgetSpec is one node of a UI layout.
type WidgetSpec struct {
	ID       string       `yaml:"id" json:"id"`
	Anchor   string       `yaml:"anchor" json:"anchor"` // e.g. "top-left", "center"
	W        int          `yaml:"w" json:"w"`
	H        int          `yaml:"h" json:"h"`
	Children []WidgetSpec `yaml:"children,omitempty" json:"children,omitempty"`
}
