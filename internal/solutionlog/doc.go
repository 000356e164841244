// Package solutionlog reads the newline-delimited JSON logs an optimizer writes
// while searching a facility-layout problem.
//
// A log holds three kinds of records, one per line:
//   - instance: the static problem (factories, machines, flow and distance matrices)
//   - parameters: the run configuration (agent count and friends)
//   - solution: one sample of the search trajectory
//
// Parsing is line oriented and lazy: Parser yields one Event per non-empty line
// in file order. Load folds an event stream into a Log, which is the only
// mutable state in the package and is always built wholesale; a failed load
// never publishes a partial Log.
//
// Numeric fields that a log schema does not carry are absent, never zero.
// SolutionRecord.Lookup reports presence explicitly, and CreatedSolutions is
// NaN when the field is missing.
package solutionlog
