// Package omap implements a minimal insertion-ordered map, used wherever
// spec.md calls out "ordered mapping" (class fields, type parameters,
// method tables, generic argument lists). It is plain data-structure
// plumbing with no ambient concern (logging, config, I/O) behind it, so it
// is implemented directly rather than reached for in a library.
package omap

// Map is an insertion-ordered map from K to V. The zero value is ready to
// use. Not safe for concurrent use without external synchronization.
type Map[K comparable, V any] struct {
	order []K
	vals  map[K]V
}

// New constructs an empty ordered map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{vals: make(map[K]V)}
}

// Set inserts or updates the value for k. Insertion order is preserved on
// update: re-setting an existing key does not move it.
func (m *Map[K, V]) Set(k K, v V) {
	if m.vals == nil {
		m.vals = make(map[K]V)
	}
	if _, ok := m.vals[k]; !ok {
		m.order = append(m.order, k)
	}
	m.vals[k] = v
}

// Get returns the value for k and whether it was present.
func (m *Map[K, V]) Get(k K) (V, bool) {
	v, ok := m.vals[k]
	return v, ok
}

// Has reports whether k is present.
func (m *Map[K, V]) Has(k K) bool {
	_, ok := m.vals[k]
	return ok
}

// Len reports the number of entries.
func (m *Map[K, V]) Len() int { return len(m.order) }

// Keys returns the keys in insertion order. The returned slice must not
// be mutated by the caller.
func (m *Map[K, V]) Keys() []K { return m.order }

// Values returns the values in insertion (key) order.
func (m *Map[K, V]) Values() []V {
	out := make([]V, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, m.vals[k])
	}
	return out
}

// Each calls fn for every entry in insertion order, stopping early if fn
// returns false.
func (m *Map[K, V]) Each(fn func(K, V) bool) {
	for _, k := range m.order {
		if !fn(k, m.vals[k]) {
			return
		}
	}
}

// Clone returns a shallow copy: same keys/values, independent ordering
// and membership storage. Used when generic instantiation clones a
// field map, and by Method.MakeGeneric for its type-variable map.
func (m *Map[K, V]) Clone() *Map[K, V] {
	out := New[K, V]()
	out.order = append([]K(nil), m.order...)
	out.vals = make(map[K]V, len(m.vals))
	for k, v := range m.vals {
		out.vals[k] = v
	}
	return out
}
