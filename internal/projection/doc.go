// Package projection turns solution records into plot-ready points.
//
// A Pipeline is built once per (x, y) metric pair and runs
//
//	sort -> filter -> project
//
// over a solution sequence. When x is the trajectory index (createdSolutions)
// or names the same objective as y, the pipeline charts progress over time:
// records are ordered by createdSolutions and reduced to the best-so-far
// sequence. Otherwise it charts the trade-off between two objectives: records
// are ordered by x and reduced to their Pareto front.
//
// Sorts are stable, so ties keep arrival order and output is reproducible
// byte for byte.
package projection
