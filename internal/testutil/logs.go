// Package testutil holds fixtures shared by frontier's tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// LogBuilder assembles solution log text line by line.
type LogBuilder struct {
	lines []string
}

// NewLog returns an empty builder.
func NewLog() *LogBuilder {
	return &LogBuilder{}
}

// Instance appends an instance line with n factories and n machines, a flow
// matrix of ones and a distance matrix of |i-j|.
func (b *LogBuilder) Instance(n int) *LogBuilder {
	factories := make([]map[string]any, n)
	machines := make([]map[string]any, n)
	flow := make([][]int, n)
	dist := make([][]int, n)
	for i := 0; i < n; i++ {
		factories[i] = map[string]any{"capacity": 2, "pFailure": 0.1}
		machines[i] = map[string]any{"size": 1}
		flow[i] = make([]int, n)
		dist[i] = make([]int, n)
		for j := 0; j < n; j++ {
			if i != j {
				flow[i][j] = 1
			}
			d := i - j
			if d < 0 {
				d = -d
			}
			dist[i][j] = d
		}
	}
	return b.add(map[string]any{
		"type": "instance",
		"instance": map[string]any{
			"factories":      factories,
			"machines":       machines,
			"flowMatrix":     map[string]any{"matrix": flow},
			"distanceMatrix": map[string]any{"matrix": dist},
		},
	})
}

// Parameters appends a parameters line.
func (b *LogBuilder) Parameters(agents int) *LogBuilder {
	return b.add(map[string]any{
		"type":       "parameters",
		"parameters": map[string]any{"agents": agents},
	})
}

// Solution appends a solution line. objectives go into the nested solution
// object next to an identity permutation of length 2.
func (b *LogBuilder) Solution(created float64, worker int, objectives map[string]float64) *LogBuilder {
	sol := map[string]any{"permutation": [][]int{{0}, {1}}}
	for k, v := range objectives {
		sol[k] = v
	}
	return b.add(map[string]any{
		"type":             "solution",
		"createdSolutions": created,
		"workerId":         worker,
		"solution":         sol,
	})
}

// Raw appends line verbatim.
func (b *LogBuilder) Raw(line string) *LogBuilder {
	b.lines = append(b.lines, line)
	return b
}

// String returns the log text with a trailing newline.
func (b *LogBuilder) String() string {
	if len(b.lines) == 0 {
		return ""
	}
	return strings.Join(b.lines, "\n") + "\n"
}

func (b *LogBuilder) add(v map[string]any) *LogBuilder {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal log line: %v", err))
	}
	b.lines = append(b.lines, string(data))
	return b
}

// Quality returns a builder holding one solution per value, createdSolutions
// 1..n, with the value stored as quality.
func Quality(values ...float64) *LogBuilder {
	b := NewLog()
	for i, v := range values {
		b.Solution(float64(i+1), 0, map[string]float64{"quality": v})
	}
	return b
}
