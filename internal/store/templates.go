package store

// Positional binds a parameter letter to a 1-based argument position.
type Positional struct {
	Letter   byte `msgpack:"l"`
	Position int  `msgpack:"p"`
}

// Template is a parameterised macro skeleton. Also, OutputName and Body are
// stored raw; substitution happens once per invocation at render time.
type Template struct {
	Name        string       `msgpack:"n"`
	Positionals []Positional `msgpack:"a"`
	Also        []string     `msgpack:"s"`
	OutputName  string       `msgpack:"o"`
	Body        []string     `msgpack:"b"`
}

// AddPositional registers letter at the next free position. Re-declaring a
// known letter is a no-op.
func (t *Template) AddPositional(letter byte) {
	if _, ok := t.PositionOf(letter); ok {
		return
	}
	t.Positionals = append(t.Positionals, Positional{Letter: letter, Position: len(t.Positionals) + 1})
}

// PositionOf returns the 1-based position of letter.
func (t *Template) PositionOf(letter byte) (int, bool) {
	for _, p := range t.Positionals {
		if p.Letter == letter {
			return p.Position, true
		}
	}
	return 0, false
}

// MaxPosition is the highest argument position any parameter refers to.
func (t *Template) MaxPosition() int {
	m := 0
	for _, p := range t.Positionals {
		if p.Position > m {
			m = p.Position
		}
	}
	return m
}

// Templates is the alias template store.
type Templates struct {
	order  []*Template
	byName map[string]*Template
}

// NewTemplates creates an empty template store.
func NewTemplates() *Templates {
	return &Templates{byName: make(map[string]*Template)}
}

// Declare returns the template called name, creating it if needed. An existing
// template loses its also-lines, output name and body; positionals survive.
func (s *Templates) Declare(name string) *Template {
	if t, ok := s.byName[name]; ok {
		t.Also = nil
		t.OutputName = ""
		t.Body = nil
		return t
	}
	t := &Template{Name: name}
	s.byName[name] = t
	s.order = append(s.order, t)
	return t
}

// Lookup returns the template called name.
func (s *Templates) Lookup(name string) (*Template, bool) {
	t, ok := s.byName[name]
	return t, ok
}

// Has reports whether a template called name exists.
func (s *Templates) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// All returns the templates in declaration order.
func (s *Templates) All() []*Template {
	return s.order
}

// Len returns the number of templates.
func (s *Templates) Len() int {
	return len(s.order)
}
