// Package views derives the cross-resource shapes the console renders from
// the four flat backend collections.
//
// Every function is pure: no I/O, no hidden state, inputs are never mutated,
// and the same inputs always produce the same output, so the functions can be
// re-run on every refresh tick. Ids are compared in their canonical form as
// produced by the application package at the fetch boundary.
package views
