package solutionlog

// EventKind discriminates the records of a solution log.
type EventKind string

// Event kinds understood by the parser. Lines with any other type are skipped.
// So are instance and parameters lines whose payload is null or not an object.
const (
	KindInstance   EventKind = "instance"
	KindParameters EventKind = "parameters"
	KindSolution   EventKind = "solution"
)

// Event is one parsed log line. Exactly one payload pointer is set, matching Kind.
type Event struct {
	Kind EventKind
	// Line is the 1-based line number the event was read from.
	Line int

	Instance   *Instance
	Parameters *Parameters
	Solution   *SolutionRecord
}
