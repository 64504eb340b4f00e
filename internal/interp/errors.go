package interp

import (
	"strconv"

	"annogen/internal/diag"
	"annogen/internal/source"
	"annogen/internal/store"
)

func itoa(n int) string { return strconv.Itoa(n) }

func errUnknownTemplate(inv store.Invocation) error {
	return diag.Errorf(diag.RenderUnknownTemplate, inv.Pos,
		"invocation of unknown alias template %q", inv.Name)
}

func errTooFewArgs(inv store.Invocation, want int) error {
	return diag.Errorf(diag.RenderArgCountMismatch, inv.Pos,
		"alias template %q invoked at %s expects %d argument(s), got %d",
		inv.Name, inv.Pos, want, len(inv.Args))
}

func errReplayLimit(inv store.Invocation, limit int) error {
	return diag.Errorf(diag.RenderReplayLimit, inv.Pos,
		"more than %d also-line replays while rendering %q; templates probably invoke each other without end",
		limit, inv.Name)
}

func errBadAlso(pos source.Pos, raw, why string) error {
	return diag.Errorf(diag.CmdBadAlsoLine, pos, "bad also-line %q: %s", raw, why)
}

func errNameTooLong(pos source.Pos, what string, n, limit int) error {
	return diag.Errorf(diag.ScanNameTooLong, pos, "%s is %d bytes long, limit is %d", what, n, limit)
}

func errIncomplete(pos source.Pos, cmd, missing string) error {
	return diag.Errorf(diag.CmdIncompleteBlock, pos, "%s block ends before its %s", cmd, missing)
}

func errBadCount(pos source.Pos, what, text string) error {
	return diag.Errorf(diag.CmdBadCount, pos, "%s must be a non-negative integer, got %q", what, text)
}
