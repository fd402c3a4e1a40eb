package snippet

// Meta is a string map that remembers insertion order so that encoding a
// decoded header reproduces the original line order.
type Meta struct {
	values map[string]string
	keys   []string
}

// NewMeta creates an empty Meta.
func NewMeta() *Meta {
	return &Meta{values: make(map[string]string)}
}

// MetaFromPairs builds a Meta from alternating key, value arguments.
// A trailing key without value is ignored.
func MetaFromPairs(kv ...string) *Meta {
	m := NewMeta()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i], kv[i+1])
	}
	return m
}

// Set stores value under key. An existing key keeps its position.
func (m *Meta) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key.
func (m *Meta) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Delete removes key if present.
func (m *Meta) Delete(key string) {
	if m == nil {
		return
	}
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *Meta) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *Meta) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Clone returns a deep copy. Cloning nil yields an empty Meta.
func (m *Meta) Clone() *Meta {
	c := NewMeta()
	if m == nil {
		return c
	}
	for _, k := range m.keys {
		c.Set(k, m.values[k])
	}
	return c
}

// Equal reports whether both metas hold the same entries in the same order.
func (m *Meta) Equal(other *Meta) bool {
	if m.Len() != other.Len() {
		return false
	}
	for i, k := range m.Keys() {
		if other.keys[i] != k || other.values[k] != m.values[k] {
			return false
		}
	}
	return true
}
