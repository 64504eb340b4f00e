package store

import (
	"strconv"
	"strings"

	"annogen/internal/source"
)

// Invocation asks for template Name to be rendered with Args at Pos.
type Invocation struct {
	Name string     `msgpack:"n"`
	Pos  source.Pos `msgpack:"p"`
	Args []string   `msgpack:"a"`
}

// Key is the identity of the invocation: every field, value-equal.
func (inv Invocation) Key() string {
	var b strings.Builder
	b.WriteString(inv.Name)
	b.WriteByte(0)
	b.WriteString(inv.Pos.File)
	b.WriteByte(0)
	b.WriteString(strconv.Itoa(inv.Pos.Line))
	for _, a := range inv.Args {
		b.WriteByte(0)
		b.WriteString(strconv.Itoa(len(a)))
		b.WriteByte(':')
		b.WriteString(a)
	}
	return b.String()
}

// Invocations is the invocation store.
type Invocations struct {
	items []Invocation
	seen  map[string]struct{}
}

// NewInvocations creates an empty invocation store.
func NewInvocations() *Invocations {
	return &Invocations{seen: make(map[string]struct{})}
}

// Add records inv unless an identical invocation is already present.
func (s *Invocations) Add(inv Invocation) bool {
	k := inv.Key()
	if _, ok := s.seen[k]; ok {
		return false
	}
	s.seen[k] = struct{}{}
	inv.Args = append([]string(nil), inv.Args...)
	s.items = append(s.items, inv)
	return true
}

// All returns the invocations in insertion order.
func (s *Invocations) All() []Invocation {
	return s.items
}

// At returns the i-th invocation.
func (s *Invocations) At(i int) Invocation {
	return s.items[i]
}

// Len returns the number of invocations.
func (s *Invocations) Len() int {
	return len(s.items)
}
