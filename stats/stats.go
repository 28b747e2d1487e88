// Package stats provides the atomic counters the comm package keeps
// per Communicator, snapshottable into a printable Values map.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Values is a snapshot of a Map's counters at a point in time.
type Values map[string]int64

// String renders the snapshot sorted by key, e.g. "drains:3 sent:41".
func (v Values) String() string {
	keys := make([]string, 0, len(v))
	for key := range v {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = fmt.Sprintf("%s:%d", key, v[key])
	}
	return strings.Join(parts, " ")
}

// A Map is a set of named counters, safe for concurrent use.
type Map struct {
	mu     sync.Mutex
	values map[string]*Int
}

// NewMap returns a fresh, empty Map.
func NewMap() *Map {
	return &Map{values: make(map[string]*Int)}
}

// Int returns the counter named name, creating it if necessary.
func (m *Map) Int(name string) *Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.values[name]
	if v == nil {
		v = new(Int)
		m.values[name] = v
	}
	return v
}

// Snapshot returns the current value of every counter in the map.
func (m *Map) Snapshot() Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	vals := make(Values, len(m.values))
	for k, v := range m.values {
		vals[k] = v.Get()
	}
	return vals
}

// An Int is an atomically-updated integer counter. The zero value and
// a nil *Int are both usable and read as zero.
type Int struct {
	val int64
}

// Add increments the counter by delta, which may be negative.
func (v *Int) Add(delta int64) {
	if v == nil {
		return
	}
	atomic.AddInt64(&v.val, delta)
}

// Get returns the counter's current value.
func (v *Int) Get() int64 {
	if v == nil {
		return 0
	}
	return atomic.LoadInt64(&v.val)
}
