package models

import "strings"

// SpecMap is an ordered mapping from specification label to value.
// Keys keep their first-insertion position; setting an existing key
// overwrites the value in place (last writer wins, order preserved).
type SpecMap struct {
	keys   []string
	values map[string]string
}

// NewSpecMap creates an empty SpecMap.
func NewSpecMap() *SpecMap {
	return &SpecMap{values: make(map[string]string)}
}

// Set inserts or overwrites a key. Empty keys are ignored.
func (m *SpecMap) Set(key, value string) {
	if key == "" {
		return
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it is present.
func (m *SpecMap) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of entries.
func (m *SpecMap) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *SpecMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Render serializes the map as "key: value" pairs joined by " | ",
// in insertion order. An empty map renders as "".
func (m *SpecMap) Render() string {
	if len(m.keys) == 0 {
		return ""
	}
	var b strings.Builder
	for i, k := range m.keys {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(m.values[k])
	}
	return b.String()
}
