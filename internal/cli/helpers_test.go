package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/frontier/internal/testutil"
)

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// qualityLog has two agents, three kept solutions and one warm-up record.
func qualityLog(t *testing.T) string {
	t.Helper()
	return writeFile(t, "quality.jsonl", testutil.NewLog().
		Parameters(2).
		Solution(1, 0, map[string]float64{"quality": 5}).
		Solution(2, 0, map[string]float64{"quality": 7}).
		Solution(3, 1, map[string]float64{"quality": 4}).
		Solution(0, 0, map[string]float64{"quality": 1}).
		String())
}

// objectivesLog carries an instance and all three objectives.
func objectivesLog(t *testing.T) string {
	t.Helper()
	return writeFile(t, "objectives.jsonl", testutil.NewLog().
		Instance(2).
		Parameters(4).
		Solution(1, 0, map[string]float64{"quality": 10, "flowDistance": 3, "failureRisk": 4, "singleFactoryFailure": 1}).
		Solution(2, 1, map[string]float64{"quality": 8, "flowDistance": 1, "failureRisk": 5, "singleFactoryFailure": 2}).
		Solution(3, 0, map[string]float64{"quality": 9, "flowDistance": 2, "failureRisk": 3, "singleFactoryFailure": 3}).
		String())
}
