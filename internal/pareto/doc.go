// Package pareto filters solution sequences by objective quality.
//
// NonDominated extracts the Pareto front of a sequence under two objectives.
// BestSoFar keeps the records that set a new best value for one objective,
// in sequence order.
//
// # Missing values
//
// An accessor reports a missing value with ok=false; NaN is treated the same.
// Missing data never proves dominance: a pair where either element lacks
// either objective is incomparable, so an element with a missing value is
// never dominated and never dominates. BestSoFar never keeps an element
// whose value is missing, and if the first element is missing nothing after
// it can improve on it.
//
// Neither filter reorders its input and neither removes duplicates.
package pareto
