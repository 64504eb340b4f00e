package cstr

import "testing"

func TestEscape(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want string
	}{
		{"plain", []byte("hello world"), "hello world"},
		{"controls", []byte("a\r\n\tb"), `a\r\n\tb`},
		{"nul", []byte{'x', 0, 'y'}, `x\0y`},
		{"quote and backslash", []byte(`say "hi" \o/`), `say \"hi\" \\o/`},
		{"octal", []byte{0x01, 0x7f, 0xff}, `\001\177\377`},
		{"octal before digit", []byte{0x1b, '1'}, `\0331`},
		{"empty", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Escape(tc.in); got != tc.want {
				t.Fatalf("Escape(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestQuote(t *testing.T) {
	if got := Quote("a\"b"); got != `"a\"b"` {
		t.Fatalf("Quote = %s", got)
	}
}
