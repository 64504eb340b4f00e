package diag

import (
	"errors"
	"fmt"
	"testing"

	"annogen/internal/source"
)

func TestFormatShort(t *testing.T) {
	diags := []Diagnostic{
		NewError(ScanUnknownCommand, source.Pos{File: "mod.c", Line: 12}, "unknown command\n\"FOO\"").
			WithNote(source.Pos{File: "mod.c", Line: 10}, "block opened here"),
		New(SevWarning, CmdBadCount, source.Pos{File: "b.c", Line: 1}, "odd"),
	}
	want := "error SCN1001 mod.c:12 unknown command \"FOO\"\n" +
		"note SCN1001 mod.c:10 block opened here\n" +
		"warning CMD2003 b.c:1 odd"
	if got := FormatShort(diags); got != want {
		t.Fatalf("unexpected output:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestErrorSurvivesWrapping(t *testing.T) {
	base := Errorf(RenderArgCountMismatch, source.Pos{File: "a.c", Line: 3}, "expected %d, got %d", 2, 1)
	wrapped := fmt.Errorf("render: %w", base)

	d, ok := AsDiagnostic(wrapped)
	if !ok {
		t.Fatal("AsDiagnostic lost the diagnostic")
	}
	if d.Code != RenderArgCountMismatch || d.Message != "expected 2, got 1" {
		t.Errorf("unexpected diagnostic %+v", d)
	}
	if got := base.Error(); got != "a.c:3: RND3002 expected 2, got 1" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrapKeepsExistingDiagnostic(t *testing.T) {
	inner := Errorf(ScanLineTooLong, source.Pos{File: "x.c", Line: 9}, "too long")
	if got := Wrap(IOLoadFileError, source.Pos{}, inner); got != error(inner) {
		t.Errorf("Wrap replaced an existing diagnostic: %v", got)
	}
	plain := errors.New("boom")
	d, ok := AsDiagnostic(Wrap(IOLoadFileError, source.Pos{File: "y.c"}, plain))
	if !ok || d.Code != IOLoadFileError || d.Message != "boom" {
		t.Errorf("Wrap(plain) = %+v, %v", d, ok)
	}
	if Wrap(IOLoadFileError, source.Pos{}, nil) != nil {
		t.Error("Wrap(nil) must be nil")
	}
}

func TestBagLimitAndSort(t *testing.T) {
	bag := NewBag(2)
	r := BagReporter{Bag: bag}
	r.Report(CmdBadCount, SevWarning, source.Pos{File: "b.c", Line: 2}, "w", nil)
	ReportInfo(r, CmdInfo, source.Pos{File: "a.c", Line: 5}, "i").Emit()
	if bag.Add(NewError(UnknownCode, source.Pos{}, "dropped")) {
		t.Fatal("bag accepted a diagnostic over its limit")
	}
	bag.Sort()
	items := bag.Items()
	if items[0].Primary.File != "a.c" || items[1].Primary.File != "b.c" {
		t.Errorf("unexpected order: %+v", items)
	}
	if !bag.HasWarnings() || bag.HasErrors() {
		t.Error("HasWarnings/HasErrors mismatch")
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		ScanUnknownCommand:     "SCN1001",
		CmdArgCountMismatch:    "CMD2004",
		RenderArgCountMismatch: "RND3002",
		IOLockError:            "IO4003",
		SelfHashCollision:      "SLF5001",
		UnknownCode:            "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
}
