// Package interp interprets annotation commands against a store.State.
//
// A block is handled by a Handler created with Interp.Begin: the scanner feeds
// it one Line per block line and calls Finish at the closing tag. Every handler
// is an explicit step machine private to its block, so no counter leaks from
// one block into the next.
//
// Template "also" lines are not run when a template is declared. Drain walks
// the invocation store to a fixed point, binding each invocation's arguments
// and replaying the also-lines of its template; replays may add list values or
// further invocations, which the same walk picks up.
package interp
