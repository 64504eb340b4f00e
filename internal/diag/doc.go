// Package diag defines the diagnostic model shared by the scanner, the command
// handlers, the renderer and the merge driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – short, actionable text naming expected vs. actual values.
//   - Primary – the source.Pos (file:line) the finding belongs to. Positions may
//     come from @file:line$ overrides and so may name files that were never read.
//   - Notes – optional secondary positions with extra context.
//
// # Fatal errors
//
// Every error condition of a run is fatal. Producers return *Error (built with
// Errorf or Wrap); callers propagate it with fmt.Errorf("...: %w", err) and the
// CLI recovers the Diagnostic with AsDiagnostic for printing. Conditions that are
// not errors (duplicate list values, duplicate invocations, re-declared
// positionals) never produce diagnostics at all.
//
// Non-fatal findings go through a Reporter; BagReporter collects them into a Bag.
//
// Package diag performs no IO; rendering lives in internal/diagfmt.
package diag
