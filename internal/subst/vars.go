package subst

// Vars is the variable binding table: one slot per byte value.
// It is scoped to whatever alias is currently being rendered.
type Vars struct {
	slots [256]string
}

// Set binds letter to value.
func (v *Vars) Set(letter byte, value string) {
	v.slots[letter] = value
}

// Get returns the current binding for letter ("" when unbound).
func (v *Vars) Get(letter byte) string {
	if v == nil {
		return ""
	}
	return v.slots[letter]
}

// Clear drops every binding.
func (v *Vars) Clear() {
	v.slots = [256]string{}
}

// IsVarLetter reports whether b may follow '$' as a variable name.
func IsVarLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
