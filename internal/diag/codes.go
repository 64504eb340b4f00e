package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Сканер: структура блоков и лимиты
	ScanInfo              Code = 1000
	ScanUnknownCommand    Code = 1001
	ScanMissingCommand    Code = 1002
	ScanUnterminatedBlock Code = 1003
	ScanLineTooLong       Code = 1004
	ScanNameTooLong       Code = 1005
	ScanStrayText         Code = 1006

	// Обработчики команд
	CmdInfo             Code = 2000
	CmdEmptyName        Code = 2001
	CmdBadAliasHeader   Code = 2002
	CmdBadCount         Code = 2003
	CmdArgCountMismatch Code = 2004
	CmdBadOverride      Code = 2005
	CmdIncompleteBlock  Code = 2006
	CmdBadAlsoLine      Code = 2007
	CmdBadArgument      Code = 2008

	// Рендер
	RenderInfo             Code = 3000
	RenderUnknownTemplate  Code = 3001
	RenderArgCountMismatch Code = 3002
	RenderReplayLimit      Code = 3003

	// Ошибки I/O
	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002
	IOLockError      Code = 4003
	IOCacheError     Code = 4004

	// Самопроверка
	SelfInfo          Code = 5000
	SelfHashCollision Code = 5001
)

var codeDescription = map[Code]string{
	UnknownCode:            "Unknown error",
	ScanInfo:               "Scanner information",
	ScanUnknownCommand:     "Unknown annotation command",
	ScanMissingCommand:     "Annotation block does not start with a command line",
	ScanUnterminatedBlock:  "Unterminated annotation block",
	ScanLineTooLong:        "Annotation line too long",
	ScanNameTooLong:        "Name too long",
	ScanStrayText:          "Text after block keyword",
	CmdInfo:                "Command information",
	CmdEmptyName:           "Empty name",
	CmdBadAliasHeader:      "Malformed alias header",
	CmdBadCount:            "Malformed count line",
	CmdArgCountMismatch:    "Argument lines do not match declared count",
	CmdBadOverride:         "Malformed location override",
	CmdIncompleteBlock:     "Block ended before all required lines",
	CmdBadAlsoLine:         "Malformed also line",
	CmdBadArgument:         "Malformed invocation argument",
	RenderInfo:             "Render information",
	RenderUnknownTemplate:  "Invocation of unknown alias template",
	RenderArgCountMismatch: "Too few arguments for alias template",
	RenderReplayLimit:      "Also-line replay limit exceeded",
	IOLoadFileError:        "Cannot read file",
	IOWriteFileError:       "Cannot write output",
	IOLockError:            "Cannot acquire output lock",
	IOCacheError:           "Snapshot cache failure",
	SelfInfo:               "Self-check information",
	SelfHashCollision:      "Command name hash collision",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SCN%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("CMD%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RND%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("SLF%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
