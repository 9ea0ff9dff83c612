package masonry

// store is an identity-keyed map that remembers first-insertion order.
// Identity is Go equality on K: with pointer keys two structurally equal
// items are distinct entries. The zero value is ready to use.
type store[K comparable, V any] struct {
	entries map[K]V
	order   []K
}

// Get returns the entry for key and whether it exists.
func (s *store[K, V]) Get(key K) (V, bool) {
	v, ok := s.entries[key]
	return v, ok
}

// Has reports whether key has an entry.
func (s *store[K, V]) Has(key K) bool {
	_, ok := s.entries[key]
	return ok
}

// Set stores v under key, overwriting any previous entry. Overwriting does
// not change the key's position in Keys.
func (s *store[K, V]) Set(key K, v V) {
	if s.entries == nil {
		s.entries = make(map[K]V)
	}
	if _, ok := s.entries[key]; !ok {
		s.order = append(s.order, key)
	}
	s.entries[key] = v
}

// Len returns the number of entries.
func (s *store[K, V]) Len() int { return len(s.entries) }

// Keys returns the keys in first-insertion order.
func (s *store[K, V]) Keys() []K {
	out := make([]K, len(s.order))
	copy(out, s.order)
	return out
}

// Reset removes every entry.
func (s *store[K, V]) Reset() {
	s.entries = nil
	s.order = nil
}

// MeasurementStore maps an item to its measured content height in pixels.
// It is a pure cache: entries are never evicted and only change when the
// caller re-measures an item.
type MeasurementStore[T comparable] struct {
	store[T, float64]
}

// NewMeasurementStore creates an empty MeasurementStore.
func NewMeasurementStore[T comparable]() *MeasurementStore[T] {
	return &MeasurementStore[T]{}
}

// PositionCache maps an item to its finalized rectangle.
//
// Only the engine (and snapshot restore) writes to it; callers may read it
// between layout calls. Entries are relative to the grid's left edge:
// [Engine.Layout] adds the justification inset to Left when it returns them.
// Once an item has an entry, the entry never changes, and with start
// justification neither does the position Layout returns for it. Keys reports items in the order the engine placed
// them, which can differ from input order when modules are deferred.
type PositionCache[T comparable] struct {
	store[T, Position]
}

// NewPositionCache creates an empty PositionCache.
func NewPositionCache[T comparable]() *PositionCache[T] {
	return &PositionCache[T]{}
}

// Position is the rectangle assigned to an item.
type Position struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bottom returns the y coordinate just below the item.
func (p Position) Bottom() float64 { return p.Top + p.Height }

// Right returns the x coordinate just right of the item.
func (p Position) Right() float64 { return p.Left + p.Width }

// Overlaps reports whether p and o share any area. Touching edges do not
// overlap.
func (p Position) Overlaps(o Position) bool {
	return p.Left < o.Right() && o.Left < p.Right() &&
		p.Top < o.Bottom() && o.Top < p.Bottom()
}
