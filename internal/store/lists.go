package store

import "annogen/internal/source"

// Item is one list value and the location that first contributed it.
type Item struct {
	Value string     `msgpack:"v"`
	Pos   source.Pos `msgpack:"p"`
}

// List is a named, ordered sequence of unique values.
type List struct {
	Name  string `msgpack:"n"`
	Items []Item `msgpack:"i"`
	index map[string]int
}

// Add appends value unless it is already present. The first writer keeps its
// location; a duplicate is dropped and Add reports false.
func (l *List) Add(value string, pos source.Pos) bool {
	if l.index == nil {
		l.reindex()
	}
	if _, ok := l.index[value]; ok {
		return false
	}
	l.index[value] = len(l.Items)
	l.Items = append(l.Items, Item{Value: value, Pos: pos})
	return true
}

// Contains reports whether value is in the list.
func (l *List) Contains(value string) bool {
	if l.index == nil {
		l.reindex()
	}
	_, ok := l.index[value]
	return ok
}

// Contributors returns the distinct files of the items in first-seen order.
func (l *List) Contributors() []string {
	seen := make(map[string]struct{}, len(l.Items))
	out := make([]string, 0, 4)
	for _, it := range l.Items {
		if _, ok := seen[it.Pos.File]; ok {
			continue
		}
		seen[it.Pos.File] = struct{}{}
		out = append(out, it.Pos.File)
	}
	return out
}

func (l *List) reindex() {
	l.index = make(map[string]int, len(l.Items))
	for i, it := range l.Items {
		l.index[it.Value] = i
	}
}

// Lists is the list store.
type Lists struct {
	order  []*List
	byName map[string]*List
}

// NewLists creates an empty list store.
func NewLists() *Lists {
	return &Lists{byName: make(map[string]*List)}
}

// Get returns the list called name, creating it on first reference.
func (s *Lists) Get(name string) *List {
	if l, ok := s.byName[name]; ok {
		return l
	}
	l := &List{Name: name}
	s.byName[name] = l
	s.order = append(s.order, l)
	return l
}

// Lookup returns an existing list without creating it.
func (s *Lists) Lookup(name string) (*List, bool) {
	l, ok := s.byName[name]
	return l, ok
}

// All returns the lists in creation order.
func (s *Lists) All() []*List {
	return s.order
}

// Len returns the number of lists.
func (s *Lists) Len() int {
	return len(s.order)
}
