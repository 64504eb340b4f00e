package scanner

import (
	"annogen/internal/command"
	"annogen/internal/diag"
	"annogen/internal/source"
)

const keyword = "#macro"

type cmdState uint8

const (
	cmdKeyword cmdState = iota // matching '#','m','a','c','r','o'
	cmdNeedGap                 // keyword matched, whitespace required
	cmdGap
	cmdName
	cmdTail
	cmdNotKeyword
	cmdStray
)

// cmdMatcher recognises "#macro NAME" or a bare "NAME" one byte at a time and
// hashes NAME while it is read.
type cmdMatcher struct {
	state cmdState
	step  int
	seen  bool
	bare  bool
	hash  int
	name  []byte
}

func (m *cmdMatcher) reset() {
	*m = cmdMatcher{name: m.name[:0]}
}

func (m *cmdMatcher) feed(c byte) {
	switch m.state {
	case cmdKeyword:
		if m.step == 0 && isBlank(c) {
			return
		}
		m.seen = true
		if m.step == 0 && c != keyword[0] {
			m.bare = true
			m.state = cmdName
			m.take(c)
			return
		}
		if c != keyword[m.step] {
			m.state = cmdNotKeyword
			return
		}
		m.step++
		if m.step == len(keyword) {
			m.state = cmdNeedGap
		}
	case cmdNeedGap:
		if isBlank(c) {
			m.state = cmdGap
			return
		}
		m.state = cmdNotKeyword
	case cmdGap:
		if isBlank(c) {
			return
		}
		m.state = cmdName
		m.take(c)
	case cmdName:
		if isBlank(c) {
			m.state = cmdTail
			return
		}
		m.take(c)
	case cmdTail:
		if !isBlank(c) {
			m.state = cmdStray
		}
	}
}

func (m *cmdMatcher) take(c byte) {
	if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
		m.hash += int(c)
	}
	m.name = append(m.name, c)
}

// blank reports whether the current line had only whitespace.
func (m *cmdMatcher) blank() bool { return !m.seen }

// resolve finishes the command line and maps it to a command kind.
func (m *cmdMatcher) resolve(d *command.Dispatcher, pos source.Pos, text string) (command.Kind, error) {
	switch m.state {
	case cmdKeyword, cmdNotKeyword:
		return command.KindNone, errNoCommand(pos, text)
	case cmdNeedGap, cmdGap:
		return command.KindNone, diag.Errorf(diag.ScanMissingCommand, pos, "%s without a command name", keyword)
	case cmdStray:
		if m.bare {
			return command.KindNone, errNoCommand(pos, text)
		}
		return command.KindNone, diag.Errorf(diag.ScanStrayText, pos,
			"unexpected text after command %q", string(m.name))
	}
	kind, ok := d.LookupHashed(m.hash, string(m.name))
	if !ok {
		return command.KindNone, diag.Errorf(diag.ScanUnknownCommand, pos,
			"unknown command %q (known: %v)", string(m.name), d.Names())
	}
	return kind, nil
}

func errNoCommand(pos source.Pos, text string) error {
	return diag.Errorf(diag.ScanMissingCommand, pos,
		"annotation block must start with a command name or %q, got %q", keyword+" <COMMAND>", text)
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\f' || c == '\v'
}
