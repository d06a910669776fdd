package loaders

// Set is the full complement of category loaders sharing one Deps. The
// coordinator holds one Set and iterates All without caring about
// concrete types; typed fields remain for downstream aggregate reads.
type Set struct {
	Map        *MapLoader
	Background *BackgroundLoader
	Sequence   *SequenceLoader
	Spawn      *SpawnLoader
	Character  *ObjectLoader
	Energy     *ObjectLoader
	UI         *UILoader
}

// NewSet constructs one loader per category.
func NewSet(deps *Deps) *Set {
	return &Set{
		Map:        NewMapLoader(deps),
		Background: NewBackgroundLoader(deps),
		Sequence:   NewSequenceLoader(deps),
		Spawn:      NewSpawnLoader(deps),
		Character:  NewCharacterLoader(deps),
		Energy:     NewEnergyLoader(deps),
		UI:         NewUILoader(deps),
	}
}

// All returns every loader in category order.
func (s *Set) All() []Loader {
	return []Loader{s.Map, s.Background, s.Sequence, s.Spawn, s.Character, s.Energy, s.UI}
}

// Purge drops every category's aggregate stored in a retired asset's
// slot.
func (s *Set) Purge(slot uint32) {
	s.Map.Purge(slot)
	s.Background.Purge(slot)
	s.Sequence.Purge(slot)
	s.Spawn.Purge(slot)
	s.Character.Purge(slot)
	s.Energy.Purge(slot)
	s.UI.Purge(slot)
}
