// Package store holds the three accumulated stores of a run: named lists,
// alias templates and alias invocations.
//
// All stores keep insertion order. Nothing is ever deleted; a run starts from
// an empty State (or a snapshot) and only grows it.
package store
