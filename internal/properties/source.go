// Package properties provides jasypt.PropertySource implementations: in-memory
// maps, layered chains, the process environment, property files and the
// detection and decryption of encrypted values.
package properties

import (
	"sort"

	"jasypt-go/internal/jasypt"
)

// Enumerable is a PropertySource that can list its keys.
type Enumerable interface {
	jasypt.PropertySource
	Keys() []string
}

// Map is an in-memory property source.
type Map map[string]string

var _ Enumerable = Map(nil)

func (m Map) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Keys returns the keys in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Chain layers sources; the first source containing a key wins.
type Chain []jasypt.PropertySource

var _ Enumerable = Chain(nil)

func (c Chain) Lookup(key string) (string, bool) {
	for _, src := range c {
		if src == nil {
			continue
		}
		if v, ok := src.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

// Keys returns the sorted union of the keys of all enumerable members.
// Non-enumerable members such as Env contribute nothing.
func (c Chain) Keys() []string {
	seen := make(map[string]struct{})
	for _, src := range c {
		e, ok := src.(Enumerable)
		if !ok {
			continue
		}
		for _, k := range e.Keys() {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
