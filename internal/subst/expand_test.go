package subst

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"annogen/internal/source"
)

func TestExpand(t *testing.T) {
	var vars Vars
	vars.Set('x', "FOO")
	pos := source.Pos{File: "mod.c", Line: 42}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"all tokens", "@_#_$x", "MOD_C_42_FOO"},
		{"unbound var stays literal", "a $y b", "a $y b"},
		{"hash at position zero", "#define X_#", "#define X_42"},
		{"dollar at end", "cost$", "cost$"},
		{"dollar before digit", "$1", "$1"},
		{"no tokens", "plain text", "plain text"},
		{"adjacent vars", "$x$x", "FOOFOO"},
		{"no rescan of values", "$z", "@"},
	}
	vars.Set('z', "@")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ov := Expand(tt.in, pos, &vars)
			if got != tt.want {
				t.Errorf("Expand(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if ov.OK {
				t.Errorf("unexpected override %+v", ov)
			}
		})
	}
}

func TestExpandOverride(t *testing.T) {
	var vars Vars
	pos := source.Pos{File: "outer.c", Line: 1}

	got, ov := Expand("@inner/x.c:7$N_@_#", pos, &vars)
	if got != "N_INNER_X_C_7" {
		t.Errorf("got %q", got)
	}
	if !ov.OK || ov.Pos != (source.Pos{File: "inner/x.c", Line: 7}) {
		t.Errorf("override = %+v", ov)
	}

	// The override is scoped to that one call.
	got, _ = Expand("@", pos, &vars)
	if got != "OUTER_C" {
		t.Errorf("override leaked: %q", got)
	}
}

func TestExpandEmptyBindingIsLiteral(t *testing.T) {
	var vars Vars
	vars.Set('x', "")
	if got, _ := Expand("v=$x", source.Pos{}, &vars); got != "v=$x" {
		t.Errorf("got %q", got)
	}
	vars.Set('x', "1")
	vars.Clear()
	if got := ExpandVars("$x", &vars); got != "$x" {
		t.Errorf("Clear kept binding: %q", got)
	}
}

func TestExpandVarsLeavesMarkers(t *testing.T) {
	var vars Vars
	vars.Set('n', "world")
	if got := ExpandVars("@ # $n", &vars); got != "@ # world" {
		t.Errorf("got %q", got)
	}
}

func TestParseOverride(t *testing.T) {
	tests := []struct {
		in   string
		pos  source.Pos
		rest string
		ok   bool
	}{
		{"@a.c:3$foo", source.Pos{File: "a.c", Line: 3}, "foo", true},
		{"@b.c:10$", source.Pos{File: "b.c", Line: 10}, "", true},
		{"@C:/w/x.c:5$v", source.Pos{File: "C:/w/x.c", Line: 5}, "v", true},
		{"@_#_$x", source.Pos{}, "@_#_$x", false},
		{"@a.c:$x", source.Pos{}, "@a.c:$x", false},
		{"@:3$x", source.Pos{}, "@:3$x", false},
		{"@my mod.c:4$uart", source.Pos{File: "my mod.c", Line: 4}, "uart", true},
		{"@a$b.c:2$v", source.Pos{File: "a$b.c", Line: 2}, "v", true},
		{"@a.c:3$x:4$y", source.Pos{File: "a.c", Line: 3}, "x:4$y", true},
		{"@a.c:3x$y", source.Pos{}, "@a.c:3x$y", false},
		{"a.c:3$", source.Pos{}, "a.c:3$", false},
	}
	for _, tt := range tests {
		pos, rest, ok := ParseOverride(tt.in)
		if ok != tt.ok || pos != tt.pos || rest != tt.rest {
			t.Errorf("ParseOverride(%q) = %+v,%q,%v want %+v,%q,%v", tt.in, pos, rest, ok, tt.pos, tt.rest, tt.ok)
		}
	}
	for _, p := range []source.Pos{
		{File: "dir/m.c", Line: 12},
		{File: "my mod.c", Line: 4},
		{File: "C:/w/x y.c", Line: 1},
	} {
		got, rest, ok := ParseOverride(FormatOverride(p) + "x")
		if !ok || got != p || rest != "x" {
			t.Errorf("FormatOverride round trip of %+v = %+v,%q,%v", p, got, rest, ok)
		}
	}
}

func TestMangleFile(t *testing.T) {
	cases := map[string]string{
		"mod.c":       "MOD_C",
		"src/a-b.h":   "SRC_A_B_H",
		"ÿ.c":         "__C",
		"":            "",
		"Already_UP1": "ALREADY_UP1",
	}
	for in, want := range cases {
		if got := MangleFile(in); got != want {
			t.Errorf("MangleFile(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a, b", []string{"a", "b"}},
		{"a b\tc", []string{"a", "b", "c"}},
		{` "hello world" , x `, []string{"hello world", "x"}},
		{`"say \"hi\"" "a\\b"`, []string{`say "hi"`, `a\b`}},
		{`"" ,`, []string{""}},
		{`"a\nb"`, []string{`a\nb`}},
		{"a,,b", []string{"a", "b"}},
	}
	for _, tt := range tests {
		got, err := SplitArgs(tt.in)
		if err != nil {
			t.Errorf("SplitArgs(%q): %v", tt.in, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("SplitArgs(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
	if _, err := SplitArgs(`"open`); err != ErrUnterminatedQuote {
		t.Errorf("expected ErrUnterminatedQuote, got %v", err)
	}
}

func TestQuoteRoundTrip(t *testing.T) {
	for _, s := range []string{"", " padded ", `"quoted"`, `back\slash`, "a, b", "plain"} {
		line := s
		if NeedsQuote(s) {
			line = Quote(s)
		}
		got, err := UnquoteLine(line)
		if err != nil {
			t.Fatalf("UnquoteLine(%q): %v", line, err)
		}
		if got != s {
			t.Errorf("round trip of %q via %q gave %q", s, line, got)
		}
	}
	if got, _ := UnquoteLine(`  "a" b `); got != `"a" b` {
		t.Errorf("non-canonical quoted line altered: %q", got)
	}
}
