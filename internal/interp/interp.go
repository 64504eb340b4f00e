package interp

import (
	"context"

	"annogen/internal/command"
	"annogen/internal/source"
	"annogen/internal/store"
	"annogen/internal/subst"
	"annogen/internal/trace"
)

const (
	DefaultMaxName    = 255
	DefaultMaxReplays = 100000
)

// Line is one line of a block body.
type Line struct {
	Text string
	Pos  source.Pos
	// Literal marks text that is already a final token (from a replayed
	// also-line) and must not be unquoted again.
	Literal bool
	// Verbatim marks a line read back from generated output. Its values were
	// expanded when first recorded, so only the override prefix is parsed.
	Verbatim bool
}

// Handler consumes the lines of one block.
type Handler interface {
	Kind() command.Kind
	Feed(line Line) error
	Finish(end source.Pos) error
}

// Options tunes an Interp. Zero values select the defaults.
type Options struct {
	MaxName    int
	MaxReplays int
	Dispatcher *command.Dispatcher
}

// Interp applies commands to a State.
type Interp struct {
	state   *store.State
	opts    Options
	noVars  subst.Vars
	drained int
	replays int
}

// New creates an interpreter over st.
func New(st *store.State, opts Options) *Interp {
	if opts.MaxName <= 0 {
		opts.MaxName = DefaultMaxName
	}
	if opts.MaxReplays <= 0 {
		opts.MaxReplays = DefaultMaxReplays
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = command.Default()
	}
	return &Interp{state: st, opts: opts}
}

// State returns the state being built.
func (in *Interp) State() *store.State { return in.state }

// Dispatcher returns the command table in use.
func (in *Interp) Dispatcher() *command.Dispatcher { return in.opts.Dispatcher }

// Replays returns the number of also-lines replayed so far.
func (in *Interp) Replays() int { return in.replays }

// Begin starts a block of the given kind opened at pos. Variables are unbound
// while scanning.
func (in *Interp) Begin(kind command.Kind, pos source.Pos) Handler {
	in.noVars.Clear()
	return in.begin(kind, pos, &in.noVars)
}

func (in *Interp) begin(kind command.Kind, pos source.Pos, vars *subst.Vars) Handler {
	switch kind {
	case command.KindAddToList:
		return &addToList{in: in, vars: vars}
	case command.KindAliasPlus:
		return &aliasPlus{in: in}
	case command.KindInvokeAliasPlus:
		return &invokeAlias{in: in, vars: vars, pos: pos}
	default:
		return nil
	}
}

// HasTemplate reports whether name is a declared template.
func (in *Interp) HasTemplate(name string) bool {
	return in.state.Templates.Has(name)
}

// Invoke records an invocation. Duplicates are absorbed.
func (in *Interp) Invoke(inv store.Invocation) bool {
	return in.state.Invocations.Add(inv)
}

// Drain replays the also-lines of every invocation not drained yet, until no
// replay produces a new invocation.
func (in *Interp) Drain(ctx context.Context) error {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "drain", trace.Parent(ctx))
	defer func() { span.End("") }()

	var vars subst.Vars
	for in.drained < in.state.Invocations.Len() {
		if err := ctx.Err(); err != nil {
			return err
		}
		inv := in.state.Invocations.At(in.drained)
		in.drained++
		tpl, err := in.bind(inv, &vars)
		if err != nil {
			return err
		}
		for _, also := range tpl.Also {
			in.replays++
			if in.replays > in.opts.MaxReplays {
				return errReplayLimit(inv, in.opts.MaxReplays)
			}
			if err := in.replay(also, inv.Pos, &vars); err != nil {
				return err
			}
		}
	}
	span.WithExtra("invocations", itoa(in.drained))
	span.WithExtra("replays", itoa(in.replays))
	return nil
}

func (in *Interp) bind(inv store.Invocation, vars *subst.Vars) (*store.Template, error) {
	return Bind(in.state, inv, vars)
}

// Bind looks up the template of inv, checks that enough arguments were
// supplied and loads them into vars by position.
func Bind(st *store.State, inv store.Invocation, vars *subst.Vars) (*store.Template, error) {
	tpl, ok := st.Templates.Lookup(inv.Name)
	if !ok {
		return nil, errUnknownTemplate(inv)
	}
	if want := tpl.MaxPosition(); len(inv.Args) < want {
		return nil, errTooFewArgs(inv, want)
	}
	vars.Clear()
	for _, p := range tpl.Positionals {
		vars.Set(p.Letter, inv.Args[p.Position-1])
	}
	return tpl, nil
}

// replay runs one also-line: "<COMMAND> tok tok ..." with each token fed as a
// block line at pos.
func (in *Interp) replay(raw string, pos source.Pos, vars *subst.Vars) error {
	toks, err := subst.SplitArgs(raw)
	if err != nil {
		return errBadAlso(pos, raw, err.Error())
	}
	if len(toks) == 0 {
		return errBadAlso(pos, raw, "empty command")
	}
	kind, ok := in.opts.Dispatcher.Lookup(toks[0])
	if !ok {
		return errBadAlso(pos, raw, "unknown command "+toks[0])
	}
	h := in.begin(kind, pos, vars)
	for _, tok := range toks[1:] {
		if err := h.Feed(Line{Text: tok, Pos: pos, Literal: true}); err != nil {
			return err
		}
	}
	return h.Finish(pos)
}
