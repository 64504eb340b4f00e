package command

import (
	"fmt"

	"annogen/internal/diag"
	"annogen/internal/source"
)

// NameHash is the running sum of the character codes of the alphanumeric
// characters of text; everything else is ignored.
func NameHash(text string) int {
	sum := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			sum += int(c)
		}
	}
	return sum
}

// CheckCollisions compares the hashes of names pairwise and fails on the
// first pair that collides, naming both indices.
func CheckCollisions(names []string) error {
	hashes := make([]int, len(names))
	for i, n := range names {
		hashes[i] = NameHash(n)
	}
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if hashes[i] == hashes[j] {
				return diag.Errorf(diag.SelfHashCollision, source.Pos{},
					"command hash collision between index %d (%q) and index %d (%q): both hash to %d",
					i, names[i], j, names[j], hashes[i])
			}
		}
	}
	return nil
}

// Dispatcher maps command names to kinds. The name map is authoritative; the
// hash map is the fast path and is only trusted after CheckCollisions passed.
type Dispatcher struct {
	names  []string
	byName map[string]Kind
	byHash map[int]Kind
}

// NewDispatcher builds a dispatcher over names, where names[i] maps to Kind(i+1).
func NewDispatcher(names []string) (*Dispatcher, error) {
	if err := CheckCollisions(names); err != nil {
		return nil, err
	}
	d := &Dispatcher{
		names:  append([]string(nil), names...),
		byName: make(map[string]Kind, len(names)),
		byHash: make(map[int]Kind, len(names)),
	}
	for i, n := range names {
		k := Kind(i + 1)
		d.byName[n] = k
		d.byHash[NameHash(n)] = k
	}
	return d, nil
}

var defaultDispatcher = mustDispatcher(Builtin)

func mustDispatcher(names []string) *Dispatcher {
	d, err := NewDispatcher(names)
	if err != nil {
		panic(fmt.Errorf("command table self-check: %w", err))
	}
	return d
}

// Default returns the dispatcher over the built-in commands.
func Default() *Dispatcher {
	return defaultDispatcher
}

// Lookup resolves name. The hash narrows the candidate, the name confirms it.
func (d *Dispatcher) Lookup(name string) (Kind, bool) {
	return d.LookupHashed(NameHash(name), name)
}

// LookupHashed is Lookup for callers that accumulated the hash while reading
// the name.
func (d *Dispatcher) LookupHashed(hash int, name string) (Kind, bool) {
	k, ok := d.byHash[hash]
	if !ok {
		return KindNone, false
	}
	if d.names[k-1] != name {
		return KindNone, false
	}
	return k, true
}

// Names returns the registered command names in kind order.
func (d *Dispatcher) Names() []string {
	return append([]string(nil), d.names...)
}
