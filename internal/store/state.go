package store

// State bundles the three stores of one run.
type State struct {
	Lists       *Lists
	Templates   *Templates
	Invocations *Invocations
}

// NewState creates an empty state.
func NewState() *State {
	return &State{
		Lists:       NewLists(),
		Templates:   NewTemplates(),
		Invocations: NewInvocations(),
	}
}

// Counts summarises the size of a state.
type Counts struct {
	Lists       int
	Items       int
	Templates   int
	Invocations int
}

// Counts reports how much the state holds.
func (s *State) Counts() Counts {
	c := Counts{
		Lists:       s.Lists.Len(),
		Templates:   s.Templates.Len(),
		Invocations: s.Invocations.Len(),
	}
	for _, l := range s.Lists.All() {
		c.Items += len(l.Items)
	}
	return c
}

// Image is the plain serialisable form of a State.
type Image struct {
	Lists       []List       `msgpack:"lists"`
	Templates   []Template   `msgpack:"templates"`
	Invocations []Invocation `msgpack:"invocations"`
}

// Image copies the state into its serialisable form.
func (s *State) Image() Image {
	img := Image{
		Lists:       make([]List, 0, s.Lists.Len()),
		Templates:   make([]Template, 0, s.Templates.Len()),
		Invocations: append([]Invocation(nil), s.Invocations.All()...),
	}
	for _, l := range s.Lists.All() {
		img.Lists = append(img.Lists, List{Name: l.Name, Items: append([]Item(nil), l.Items...)})
	}
	for _, t := range s.Templates.All() {
		cp := *t
		cp.Positionals = append([]Positional(nil), t.Positionals...)
		cp.Also = append([]string(nil), t.Also...)
		cp.Body = append([]string(nil), t.Body...)
		img.Templates = append(img.Templates, cp)
	}
	return img
}

// FromImage rebuilds a State, re-applying the store rules so a corrupt image
// cannot smuggle in duplicates.
func FromImage(img Image) *State {
	s := NewState()
	for _, l := range img.Lists {
		dst := s.Lists.Get(l.Name)
		for _, it := range l.Items {
			dst.Add(it.Value, it.Pos)
		}
	}
	for _, t := range img.Templates {
		dst := s.Templates.Declare(t.Name)
		for _, p := range t.Positionals {
			dst.AddPositional(p.Letter)
		}
		dst.Also = append([]string(nil), t.Also...)
		dst.OutputName = t.OutputName
		dst.Body = append([]string(nil), t.Body...)
	}
	for _, inv := range img.Invocations {
		s.Invocations.Add(inv)
	}
	return s
}
