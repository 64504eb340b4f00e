package command

import (
	"strings"
	"testing"

	"annogen/internal/diag"
)

func TestBuiltinHashesAreDistinct(t *testing.T) {
	seen := make(map[int]string)
	for _, n := range Builtin {
		h := NameHash(n)
		if prev, ok := seen[h]; ok {
			t.Fatalf("%q and %q share hash %d", prev, n, h)
		}
		seen[h] = n
	}
	if err := CheckCollisions(Builtin); err != nil {
		t.Fatalf("self-check failed on builtin table: %v", err)
	}
}

func TestCollisionIsFatal(t *testing.T) {
	names := append(append([]string(nil), Builtin...), "LIST_TO_ADD")
	err := CheckCollisions(names)
	if err == nil {
		t.Fatal("expected a collision between ADD_TO_LIST and LIST_TO_ADD")
	}
	d, ok := diag.AsDiagnostic(err)
	if !ok || d.Code != diag.SelfHashCollision {
		t.Fatalf("unexpected error %v", err)
	}
	if !strings.Contains(d.Message, "index 0") || !strings.Contains(d.Message, "index 3") {
		t.Errorf("message does not name both indices: %q", d.Message)
	}
	if _, err := NewDispatcher(names); err == nil {
		t.Error("NewDispatcher accepted a colliding table")
	}
}

func TestNameHashIgnoresPunctuation(t *testing.T) {
	if NameHash("ADD_TO_LIST") != NameHash("ADDTOLIST") {
		t.Error("underscores must not contribute to the hash")
	}
	if NameHash("") != 0 || NameHash("__") != 0 {
		t.Error("empty names hash to zero")
	}
	if got := NameHash("a1"); got != int('a')+int('1') {
		t.Errorf("NameHash(a1) = %d", got)
	}
}

func TestLookup(t *testing.T) {
	d := Default()
	tests := []struct {
		name string
		want Kind
		ok   bool
	}{
		{"ADD_TO_LIST", KindAddToList, true},
		{"ALIAS_PLUS", KindAliasPlus, true},
		{"INVOKE_ALIAS_PLUS", KindInvokeAliasPlus, true},
		{"LIST_TO_ADD", KindNone, false},
		{"ADDTOLIST", KindNone, false},
		{"add_to_list", KindNone, false},
		{"", KindNone, false},
	}
	for _, tt := range tests {
		got, ok := d.Lookup(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Lookup(%q) = %v,%v want %v,%v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
	if KindAliasPlus.String() != "ALIAS_PLUS" || KindNone.String() != "NONE" {
		t.Error("Kind.String mismatch")
	}
}
