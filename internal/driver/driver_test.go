package driver

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"annogen/internal/config"
	"annogen/internal/diag"
	"annogen/internal/pipeline"
	"annogen/internal/render"
	"annogen/internal/snapshot"
	"annogen/internal/source"
)

var firstRun = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

const listA = `/*#
#macro ADD_TO_LIST
MODULES
uart
spi
#*/
`

const listB = `/*#
#macro ADD_TO_LIST
MODULES
spi
i2c
#*/
`

const greetTemplate = `/*#
#macro ALIAS_PLUS
greet($n)
1
ADD_TO_LIST GREETED $n
GREETING_@
hello $n
#*/
`

// greetCall invokes greet inline on line 10.
const greetCall = "int a;\n\n\n\n\n\n\n\n\ngreet(world);\n"

type fixture struct {
	t   *testing.T
	dir string
	out string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	return &fixture{t: t, dir: dir, out: filepath.Join(dir, "annotations.h")}
}

func (f *fixture) source(name, content string) string {
	f.t.Helper()
	p := filepath.Join(f.dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		f.t.Fatal(err)
	}
	return p
}

func (f *fixture) request(sources ...string) Request {
	return Request{
		Output:  f.out,
		Sources: sources,
		Config:  config.Default(),
		Now:     func() time.Time { return firstRun },
	}
}

func (f *fixture) run(sources ...string) Result {
	f.t.Helper()
	res, err := Run(f.ctx(), f.request(sources...))
	if err != nil {
		f.t.Fatalf("run %v: %v", sources, err)
	}
	return res
}

func (f *fixture) ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	f.t.Cleanup(cancel)
	return ctx
}

func (f *fixture) output() string {
	f.t.Helper()
	data, err := os.ReadFile(f.out)
	if err != nil {
		f.t.Fatal(err)
	}
	return string(data)
}

func TestListsMergeAcrossRuns(t *testing.T) {
	f := newFixture(t)
	a := f.source("a.c", listA)
	b := f.source("b.c", listB)
	f.run(a)
	f.run(b)

	out := f.output()
	wantDefine := "#define MODULES \\\n" +
		"\tuart, /* a.c:4 */ \\\n" +
		"\tspi, /* a.c:5 */ \\\n" +
		"\ti2c, /* b.c:5 */\n"
	if !strings.Contains(out, wantDefine) {
		t.Errorf("MODULES define missing, got:\n%s", out)
	}
	if !strings.Contains(out, " * contributed by: a.c, b.c\n") {
		t.Errorf("contributors missing, got:\n%s", out)
	}
	if n := strings.Count(out, "#define MODULES"); n != 1 {
		t.Errorf("MODULES defined %d times", n)
	}
}

func TestRerunIsByteIdentical(t *testing.T) {
	f := newFixture(t)
	a := f.source("a.c", listA+greetTemplate)
	b := f.source("b.c", listB+greetCall)
	f.run(a)
	f.run(b)
	first := f.output()

	for i := 0; i < 2; i++ {
		for _, src := range []string{a, b} {
			if res := f.run(src); res.Written {
				t.Errorf("pass %d over %s rewrote an unchanged output", i, filepath.Base(src))
			}
		}
	}
	if got := f.output(); got != first {
		t.Errorf("output changed on rerun:\n--- first\n%s\n--- now\n%s", first, got)
	}
}

func TestRerunWithSpacedSourceName(t *testing.T) {
	f := newFixture(t)
	src := f.source("my mod.c", listA)
	f.run(src)
	first := f.output()
	if !strings.Contains(first, "@my mod.c:4$uart\n") {
		t.Fatalf("override line missing, got:\n%s", first)
	}

	if res := f.run(src); res.Written {
		t.Error("rerun rewrote an unchanged output")
	}
	if got := f.output(); got != first {
		t.Errorf("output changed on rerun:\n--- first\n%s\n--- now\n%s", first, got)
	}
}

func TestTokenCharactersInBoundValuesSurviveReplay(t *testing.T) {
	f := newFixture(t)
	tpl := f.source("t.c", greetTemplate)
	call := f.source("c.c", "greet(\"u@h\");\ngreet(\"n#1\");\n")
	f.run(tpl)
	f.run(call)
	first := f.output()
	want := "#define GREETED \\\n\tu@h, /* c.c:1 */ \\\n\tn#1, /* c.c:2 */\n"
	if !strings.Contains(first, want) {
		t.Fatalf("GREETED define missing, got:\n%s", first)
	}

	for _, src := range []string{tpl, call} {
		if res := f.run(src); res.Written {
			t.Errorf("rerun of %s rewrote an unchanged output", filepath.Base(src))
		}
	}
	if got := f.output(); got != first {
		t.Errorf("output changed on rerun:\n--- first\n%s\n--- now\n%s", first, got)
	}
}

func TestBatchMatchesSerialRuns(t *testing.T) {
	serial := newFixture(t)
	a := serial.source("a.c", listA+greetTemplate)
	b := serial.source("b.c", listB+greetCall)
	serial.run(a)
	serial.run(b)

	batch := newFixture(t)
	ba := batch.source("a.c", listA+greetTemplate)
	bb := batch.source("b.c", listB+greetCall)
	batch.run(ba, bb)

	if serial.output() != batch.output() {
		t.Errorf("batch output differs from serial runs:\n--- serial\n%s\n--- batch\n%s", serial.output(), batch.output())
	}
}

func TestTemplateInvocation(t *testing.T) {
	f := newFixture(t)
	a := f.source("a.c", greetTemplate)
	b := f.source("b.c", greetCall)
	f.run(a)
	res := f.run(b)

	out := f.output()
	if !strings.Contains(out, "#define GREETING_B_C \\\n\thello world\n") {
		t.Errorf("expanded invocation missing, got:\n%s", out)
	}
	if !strings.Contains(out, "#define GREETED \\\n\tworld, /* b.c:10 */\n") {
		t.Errorf("also-line list entry missing, got:\n%s", out)
	}
	if res.Counts.Invocations != 1 || res.Counts.Templates != 1 {
		t.Errorf("counts = %+v", res.Counts)
	}
}

func TestInvocationBlockWithOverride(t *testing.T) {
	f := newFixture(t)
	a := f.source("a.c", greetTemplate)
	c := f.source("c.c", "/*#\n#macro INVOKE_ALIAS_PLUS\ngreet\n@b.c:10$\n1\nworld\n#*/\n")
	f.run(a, c)
	// Same identity as the inline call on b.c:10, so it collapses.
	b := f.source("b.c", greetCall)
	f.run(b)

	out := f.output()
	if n := strings.Count(out, "#define GREETING_B_C"); n != 1 {
		t.Errorf("GREETING_B_C defined %d times, want 1:\n%s", n, out)
	}
}

func TestArgumentShortfallKeepsOutput(t *testing.T) {
	f := newFixture(t)
	a := f.source("a.c", greetTemplate)
	f.run(a)
	before := f.output()

	bad := f.source("bad.c", "/*#\n#macro INVOKE_ALIAS_PLUS\ngreet\n0\n#*/\n")
	_, err := Run(f.ctx(), f.request(bad))
	d, ok := diag.AsDiagnostic(err)
	if !ok || d.Code != diag.RenderArgCountMismatch {
		t.Fatalf("err = %v, want %s", err, diag.RenderArgCountMismatch.ID())
	}
	if d.Primary != (source.Pos{File: "bad.c", Line: 2}) {
		t.Errorf("diagnostic at %s", d.Primary)
	}
	if got := f.output(); got != before {
		t.Errorf("failed run touched the output")
	}

	// The lock was released: the next run goes through.
	f.run(a)
}

func TestTwoPositionalTemplateWithOneArgument(t *testing.T) {
	f := newFixture(t)
	pair := f.source("pair.c", "/*#\n#macro ALIAS_PLUS\npair($a, $b)\n0\nPAIR_@\n$a $b\n#*/\n")
	f.run(pair)
	before := f.output()

	call := f.source("call.c", "int x;\npair(left);\n")
	_, err := Run(f.ctx(), f.request(call))
	d, ok := diag.AsDiagnostic(err)
	if !ok || d.Code != diag.RenderArgCountMismatch {
		t.Fatalf("err = %v, want %s", err, diag.RenderArgCountMismatch.ID())
	}
	if d.Primary != (source.Pos{File: "call.c", Line: 2}) {
		t.Errorf("diagnostic at %s", d.Primary)
	}
	got := f.output()
	if got != before {
		t.Errorf("failed run touched the output")
	}
	if strings.Contains(got, "#define PAIR_CALL_C") {
		t.Errorf("macro emitted for a short invocation:\n%s", got)
	}
}

func TestHeaderSurvivesReruns(t *testing.T) {
	f := newFixture(t)
	a := f.source("a.c", listA)
	f.run(a)

	req := f.request(f.source("b.c", listB))
	req.Now = func() time.Time { return firstRun.Add(48 * time.Hour) }
	if _, err := Run(f.ctx(), req); err != nil {
		t.Fatal(err)
	}
	header, ok := render.ExtractHeader([]byte(f.output()))
	if !ok {
		t.Fatal("header missing")
	}
	if got := render.Timestamp(header); got != "2024-03-01T12:00:00Z" {
		t.Errorf("timestamp = %q", got)
	}
}

func TestMissingSource(t *testing.T) {
	f := newFixture(t)
	_, err := Run(f.ctx(), f.request(filepath.Join(f.dir, "nope.c")))
	d, ok := diag.AsDiagnostic(err)
	if !ok || d.Code != diag.IOLoadFileError {
		t.Fatalf("err = %v", err)
	}
	if _, err := os.Stat(f.out); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("output created by a failed run: %v", err)
	}
}

func TestUnknownCommandIsFatal(t *testing.T) {
	f := newFixture(t)
	bad := f.source("bad.c", "/*#\n#macro LIST_TO_ADD\nX\n#*/\n")
	_, err := Run(f.ctx(), f.request(bad))
	if d, ok := diag.AsDiagnostic(err); !ok || d.Code != diag.ScanUnknownCommand {
		t.Fatalf("err = %v", err)
	}
}

func TestSnapshotCacheHit(t *testing.T) {
	f := newFixture(t)
	cache, err := snapshot.Open(filepath.Join(f.dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	a := f.source("a.c", listA+greetTemplate)
	b := f.source("b.c", greetCall)

	req := f.request(a)
	req.Cache = cache
	if _, err := Run(f.ctx(), req); err != nil {
		t.Fatal(err)
	}
	req = f.request(b)
	req.Cache = cache
	res, err := Run(f.ctx(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !res.CacheHit {
		t.Error("second run missed the snapshot written by the first")
	}
	withCache := f.output()

	plain := newFixture(t)
	plain.run(plain.source("a.c", listA+greetTemplate))
	plain.run(plain.source("b.c", greetCall))
	if plain.output() != withCache {
		t.Errorf("cached run differs from a replayed run:\n--- replay\n%s\n--- cache\n%s", plain.output(), withCache)
	}
}

func TestProgressEvents(t *testing.T) {
	f := newFixture(t)
	a := f.source("a.c", listA)
	b := f.source("b.c", listB)

	var mu sync.Mutex
	seen := map[string][]pipeline.Stage{}
	req := f.request(a, b)
	req.Sink = pipeline.FuncSink(func(evt pipeline.Event) {
		if evt.Status != pipeline.StatusDone {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		seen[evt.File] = append(seen[evt.File], evt.Stage)
	})
	if _, err := Run(f.ctx(), req); err != nil {
		t.Fatal(err)
	}
	for _, src := range []string{a, b} {
		got := seen[src]
		if len(got) != 2 || got[0] != pipeline.StageLoad || got[1] != pipeline.StageScan {
			t.Errorf("%s stages = %v", filepath.Base(src), got)
		}
	}
	run := seen[""]
	if len(run) == 0 || run[len(run)-1] != pipeline.StageWrite {
		t.Errorf("run stages = %v", run)
	}
}

func TestLoadState(t *testing.T) {
	f := newFixture(t)
	f.run(f.source("a.c", listA+greetTemplate), f.source("b.c", greetCall))

	st, err := LoadState(f.ctx(), f.out, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	c := st.Counts()
	if c.Lists != 2 || c.Templates != 1 || c.Invocations != 1 {
		t.Errorf("counts = %+v", c)
	}

	empty, err := LoadState(f.ctx(), filepath.Join(f.dir, "missing.h"), config.Default())
	if err != nil || empty.Counts().Lists != 0 {
		t.Errorf("missing output: %v %+v", err, empty)
	}
}

func TestWriteAtomicKeepsMode(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out.h")
	if err := writeAtomic(p, []byte("one"), 0o640); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(p)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Errorf("mode = %v", info.Mode().Perm())
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
	if data, _ := os.ReadFile(p); !bytes.Equal(data, []byte("one")) {
		t.Errorf("content = %q", data)
	}
}

func TestForeignOutputGetsHeader(t *testing.T) {
	f := newFixture(t)
	if err := os.WriteFile(f.out, []byte("/* hand written */\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	bag := diag.NewBag(10)
	req := f.request(f.source("a.c", listA))
	req.Reporter = diag.BagReporter{Bag: bag}
	if _, err := Run(f.ctx(), req); err != nil {
		t.Fatal(err)
	}
	if !bag.HasWarnings() || bag.Items()[0].Code != diag.RenderInfo {
		t.Fatalf("warnings = %+v", bag.Items())
	}
	if !strings.HasPrefix(f.output(), render.Banner+"\n") {
		t.Errorf("output does not start with the banner:\n%s", f.output())
	}
}

func TestPreviousOutputJoinsFileSet(t *testing.T) {
	f := newFixture(t)
	a := f.source("a.c", listA)
	f.run(a)

	files := source.NewFileSet()
	req := f.request(a)
	req.FileSet = files
	if _, err := Run(f.ctx(), req); err != nil {
		t.Fatal(err)
	}
	id, ok := files.GetLatest(f.out)
	if !ok || files.Get(id).Flags&source.FileGenerated == 0 {
		t.Fatalf("previous output missing from the file set")
	}
	if _, ok := files.GetLatest("a.c"); !ok {
		t.Error("source missing from the file set")
	}
}
