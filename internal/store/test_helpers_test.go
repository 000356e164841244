package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/frontier/internal/logging"
	"github.com/roach88/frontier/internal/solutionlog"
	"github.com/roach88/frontier/internal/testutil"
)

// setupTestStore creates a new store in a temp directory for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testContext() context.Context {
	return logging.NewContext(context.Background(), logging.Discard())
}

// sampleLog is a two-factory run with three solutions, two of them visits of
// the same (worker, permutation) pair.
func sampleLog(t *testing.T) *solutionlog.Log {
	t.Helper()
	text := testutil.NewLog().
		Instance(2).
		Parameters(4).
		Solution(1, 0, map[string]float64{"quality": 10, "flowDistance": 3}).
		Solution(2, 1, map[string]float64{"quality": 8, "failureRisk": 0.5}).
		Solution(3, 0, map[string]float64{"quality": 7}).
		String()
	l, err := solutionlog.Load(testContext(), strings.NewReader(text), solutionlog.IngestOptions{DropWarmup: true})
	require.NoError(t, err)
	return l
}
