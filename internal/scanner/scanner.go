package scanner

import (
	"bytes"
	"context"
	"strings"

	"annogen/internal/command"
	"annogen/internal/diag"
	"annogen/internal/interp"
	"annogen/internal/source"
	"annogen/internal/trace"
)

// Mode selects what a scan does besides replaying blocks.
type Mode uint8

const (
	// ModeFull replays blocks and records inline invocations.
	ModeFull Mode = iota
	// ModeReplay only rebuilds state from blocks.
	ModeReplay
)

func (m Mode) String() string {
	if m == ModeReplay {
		return "replay"
	}
	return "full"
}

// DefaultMaxLine is the longest accepted annotation line in bytes.
const DefaultMaxLine = 4096

// Options tunes a scan.
type Options struct {
	Mode    Mode
	MaxLine int
	// Observe, when set, sees every block line and inline call.
	Observe func(Event)
}

// EventKind classifies an observed Event.
type EventKind uint8

const (
	EventBlock EventKind = iota + 1
	EventCommand
	EventLine
	EventInline
)

func (k EventKind) String() string {
	switch k {
	case EventBlock:
		return "block"
	case EventCommand:
		return "command"
	case EventLine:
		return "line"
	case EventInline:
		return "inline"
	default:
		return "unknown"
	}
}

// Event is one observation made during a scan.
type Event struct {
	Kind    EventKind
	Pos     source.Pos
	Command command.Kind
	Text    string
	Args    []string
}

// Stats counts what a scan saw.
type Stats struct {
	Lines  int
	Blocks int
	Inline int
}

type lexMode uint8

const (
	lexCode lexMode = iota
	lexLineComment
	lexBlockComment
	lexAnnotation
)

type block struct {
	open    source.Pos
	lineNo  int
	buf     []byte
	cmd     cmdMatcher
	handler interp.Handler
	blanks  []interp.Line
	span    *trace.Span
}

type scanner struct {
	ctx    context.Context
	tracer trace.Tracer
	in     *interp.Interp
	opts   Options
	file   string
	src    []byte

	mode        lexMode
	line        int
	inPreproc   bool
	inString    bool
	inChar      bool
	escape      bool
	atLineStart bool
	prev        byte

	code        []byte
	codeLine    int
	codePreproc bool

	blk   block
	stats Stats
}

// Scan walks src, recorded under the name file, and applies every annotation
// block to in. The first fatal condition stops the scan.
func Scan(ctx context.Context, in *interp.Interp, file string, src []byte, opts Options) (Stats, error) {
	if opts.MaxLine <= 0 {
		opts.MaxLine = DefaultMaxLine
	}
	s := &scanner{
		ctx:         ctx,
		tracer:      trace.FromContext(ctx),
		in:          in,
		opts:        opts,
		file:        file,
		src:         src,
		line:        1,
		atLineStart: true,
		codeLine:    1,
	}
	err := s.run()
	s.stats.Lines = s.line
	if len(src) == 0 || src[len(src)-1] == '\n' || src[len(src)-1] == '\r' {
		s.stats.Lines--
	}
	return s.stats, err
}

func (s *scanner) run() error {
	src := s.src
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c == '\r' || c == '\n' {
			if c == '\r' && i+1 < len(src) && src[i+1] == '\n' {
				i++
			}
			if err := s.newline(); err != nil {
				return err
			}
			continue
		}
		var err error
		switch s.mode {
		case lexCode:
			i, err = s.codeByte(i)
		case lexLineComment:
			s.prev = c
		case lexBlockComment:
			if c == '*' && s.peek(i+1) == '/' {
				s.mode = lexCode
				i++
			}
		case lexAnnotation:
			i, err = s.annotationByte(i)
		}
		if err != nil {
			return err
		}
	}
	return s.eof()
}

func (s *scanner) peek(i int) byte {
	if i < len(s.src) {
		return s.src[i]
	}
	return 0
}

func (s *scanner) pos(line int) source.Pos {
	return source.Pos{File: s.file, Line: line}
}

func (s *scanner) observe(ev Event) {
	if s.opts.Observe != nil {
		s.opts.Observe(ev)
	}
}

// codeByte handles one byte in code context and returns the index of the last
// byte it consumed.
func (s *scanner) codeByte(i int) (int, error) {
	c := s.src[i]
	if s.inString || s.inChar {
		s.code = append(s.code, c)
		quote := byte('"')
		if s.inChar {
			quote = '\''
		}
		switch {
		case s.escape:
			s.escape = false
		case c == '\\':
			s.escape = true
		case c == quote:
			s.inString, s.inChar = false, false
		}
		s.prev = c
		return i, nil
	}
	switch {
	case c == '/' && s.peek(i+1) == '/':
		s.mode = lexLineComment
		s.prev = 0
		return i + 1, nil
	case c == '/' && s.peek(i+1) == '*' && s.peek(i+2) == '#' && s.peek(i+3) != '#' && s.peek(i+3) != '*':
		return i + 2, s.openBlock()
	case c == '/' && s.peek(i+1) == '*':
		s.mode = lexBlockComment
		s.code = append(s.code, ' ')
		return i + 1, nil
	case c == '#' && s.atLineStart && s.macroLine(i):
		if err := s.openBlock(); err != nil {
			return i, err
		}
		return s.annotationByte(i)
	case c == '"':
		s.inString = true
		s.atLineStart = false
	case c == '\'':
		s.inChar = true
		s.atLineStart = false
	case c == '#' && s.atLineStart:
		s.inPreproc = true
		s.codePreproc = true
		s.atLineStart = false
	case isBlank(c):
	default:
		s.atLineStart = false
	}
	s.code = append(s.code, c)
	s.prev = c
	return i, nil
}

// macroLine reports whether the preprocessor line starting at i is
// "#macro <COMMAND>", which opens a block without a "/*#" tag.
func (s *scanner) macroLine(i int) bool {
	rest := s.src[i:]
	return bytes.HasPrefix(rest, []byte(keyword)) && len(rest) > len(keyword) && isBlank(rest[len(keyword)])
}

func (s *scanner) newline() error {
	continued := false
	switch s.mode {
	case lexAnnotation:
		if err := s.blockLine(false); err != nil {
			return err
		}
	case lexCode:
		if s.inString || s.inChar {
			continued = s.escape
		} else {
			continued = s.prev == '\\'
		}
	case lexLineComment:
		continued = s.prev == '\\'
		if !continued {
			s.mode = lexCode
		}
	}
	s.line++
	s.prev = 0
	s.escape = false

	if s.mode == lexAnnotation {
		s.blk.lineNo = s.line
		return nil
	}
	if continued {
		if n := len(s.code); n > 0 && s.code[n-1] == '\\' {
			s.code = s.code[:n-1]
		}
		return nil
	}
	s.inPreproc, s.inString, s.inChar = false, false, false
	s.atLineStart = true
	err := s.flushCode()
	s.codeLine = s.line
	s.codePreproc = false
	return err
}

// flushCode hands the code collected since the last flush to inline
// detection.
func (s *scanner) flushCode() error {
	code := s.code
	s.code = s.code[:0]
	if s.opts.Mode != ModeFull || s.codePreproc || len(code) == 0 {
		return nil
	}
	return s.detectInline(string(code), s.codeLine)
}

func (s *scanner) openBlock() error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	if err := s.flushCode(); err != nil {
		return err
	}
	s.codePreproc = s.inPreproc
	s.mode = lexAnnotation
	open := s.pos(s.line)
	s.blk = block{
		open:   open,
		lineNo: s.line,
		buf:    s.blk.buf[:0],
		span:   trace.BeginAt(s.tracer, trace.ScopeBlock, "block", open.String(), trace.Parent(s.ctx)),
	}
	s.stats.Blocks++
	s.observe(Event{Kind: EventBlock, Pos: s.blk.open})
	return nil
}

func (s *scanner) annotationByte(i int) (int, error) {
	c := s.src[i]
	if c == '#' && s.peek(i+1) == '*' && s.peek(i+2) == '/' {
		return i + 2, s.closeBlock()
	}
	if s.blk.handler == nil {
		s.blk.cmd.feed(c)
	}
	s.blk.buf = append(s.blk.buf, c)
	if len(s.blk.buf) > s.opts.MaxLine {
		return i, diag.Errorf(diag.ScanLineTooLong, s.pos(s.blk.lineNo),
			"annotation line longer than %d bytes", s.opts.MaxLine)
	}
	return i, nil
}

// blockLine completes one annotation line. Blank lines are held back until a
// non-blank line follows, so trailing blank lines never reach a handler.
func (s *scanner) blockLine(closing bool) error {
	text := string(s.blk.buf)
	s.blk.buf = s.blk.buf[:0]
	pos := s.pos(s.blk.lineNo)

	if s.blk.handler == nil {
		if s.blk.cmd.blank() {
			s.blk.cmd.reset()
			return nil
		}
		kind, err := s.blk.cmd.resolve(s.in.Dispatcher(), pos, strings.TrimSpace(text))
		if err != nil {
			return err
		}
		s.blk.cmd.reset()
		s.blk.handler = s.in.Begin(kind, pos)
		s.blk.span.WithExtra("command", kind.String())
		s.observe(Event{Kind: EventCommand, Pos: pos, Command: kind, Text: kind.String()})
		return nil
	}

	line := interp.Line{Text: text, Pos: pos, Verbatim: s.opts.Mode == ModeReplay}
	if strings.TrimSpace(text) == "" {
		if !closing {
			s.blk.blanks = append(s.blk.blanks, line)
		}
		return nil
	}
	for _, b := range s.blk.blanks {
		if err := s.feed(b); err != nil {
			return err
		}
	}
	s.blk.blanks = s.blk.blanks[:0]
	return s.feed(line)
}

func (s *scanner) feed(line interp.Line) error {
	s.observe(Event{Kind: EventLine, Pos: line.Pos, Command: s.blk.handler.Kind(), Text: line.Text})
	return s.blk.handler.Feed(line)
}

func (s *scanner) closeBlock() error {
	if err := s.blockLine(true); err != nil {
		return err
	}
	if s.blk.handler == nil {
		return diag.Errorf(diag.ScanMissingCommand, s.blk.open, "annotation block has no %s command line", keyword)
	}
	if err := s.blk.handler.Finish(s.pos(s.line)); err != nil {
		return err
	}
	s.blk.span.End("")
	s.blk.handler = nil
	s.blk.blanks = nil
	s.mode = lexCode
	s.atLineStart = false
	s.prev = 0
	s.codeLine = s.line
	return nil
}

func (s *scanner) eof() error {
	if s.mode == lexAnnotation {
		return diag.Errorf(diag.ScanUnterminatedBlock, s.blk.open, "annotation block is never closed with \"#*/\"")
	}
	return s.flushCode()
}
