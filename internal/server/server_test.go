package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/frontier/internal/config"
	"github.com/roach88/frontier/internal/logging"
	"github.com/roach88/frontier/internal/solutionlog"
	"github.com/roach88/frontier/internal/store"
	"github.com/roach88/frontier/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	ctx := logging.NewContext(context.Background(), logging.Discard())

	s, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	text := testutil.NewLog().
		Instance(2).
		Parameters(2).
		Solution(1, 0, map[string]float64{"quality": 10, "flowDistance": 3, "failureRisk": 4}).
		Solution(2, 1, map[string]float64{"quality": 8, "flowDistance": 1, "failureRisk": 5}).
		Solution(3, 0, map[string]float64{"quality": 9, "flowDistance": 2, "failureRisk": 3}).
		Solution(4, 1, map[string]float64{"quality": 5, "flowDistance": 3, "failureRisk": 4}).
		String()
	l, err := solutionlog.Load(ctx, strings.NewReader(text), solutionlog.IngestOptions{DropWarmup: true})
	require.NoError(t, err)
	require.NoError(t, s.WriteRun(ctx, "run-1", "search.jsonl", l))

	return NewRouter(s, config.Default(), logging.Discard())
}

func get(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

type chartBody struct {
	XTitle string           `json:"xTitle"`
	YTitle string           `json:"yTitle"`
	Mode   string           `json:"mode"`
	Points []map[string]any `json:"points"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func xs(points []map[string]any) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i], _ = p["x"].(float64)
	}
	return out
}

func TestHealth(t *testing.T) {
	w := get(t, setupRouter(t), "/api/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListRuns(t *testing.T) {
	w := get(t, setupRouter(t), "/api/runs")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		Runs []store.RunSummary `json:"runs"`
	}](t, w)
	require.Len(t, body.Runs, 1)
	assert.Equal(t, "run-1", body.Runs[0].ID)
	assert.Equal(t, 4, body.Runs[0].Solutions)
	assert.Equal(t, 2, body.Runs[0].DistinctSolutions)
}

func TestGetRun(t *testing.T) {
	w := get(t, setupRouter(t), "/api/runs/run-1")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		Run      store.RunSummary `json:"run"`
		Instance struct {
			Factories []map[string]any `json:"factories"`
		} `json:"instance"`
		XFactor float64  `json:"xFactor"`
		Fields  []string `json:"fields"`
	}](t, w)
	assert.Equal(t, "search.jsonl", body.Run.Source)
	assert.Len(t, body.Instance.Factories, 2)
	assert.Equal(t, float64(2), body.XFactor)
	assert.Equal(t, []string{"createdSolutions", "failureRisk", "flowDistance", "quality"}, body.Fields)
}

func TestGetRun_NotFound(t *testing.T) {
	r := setupRouter(t)
	for _, path := range []string{"/api/runs/nope", "/api/runs/nope/project?y=quality", "/api/runs/nope/panels"} {
		w := get(t, r, path)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Contains(t, w.Body.String(), "run not found")
	}
}

func TestProject_Front(t *testing.T) {
	w := get(t, setupRouter(t), "/api/runs/run-1/project?x=flowDistance&y=failureRisk")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[chartBody](t, w)
	assert.Equal(t, "front", body.Mode)
	assert.Equal(t, "flowDistance", body.XTitle)
	assert.Equal(t, "failureRisk", body.YTitle)
	assert.Equal(t, []float64{1, 2}, xs(body.Points))
	assert.Equal(t, float64(1), body.Points[0]["workerId"], "numeric worker IDs keep their JSON type")
}

func TestProject_Progress(t *testing.T) {
	r := setupRouter(t)
	tests := []struct {
		query  string
		xTitle string
		want   []float64
	}{
		{"y=quality", "~createdSolutions", []float64{2, 4, 8}},
		{"x=createdSolutions&y=quality&x_factor=3", "~createdSolutions", []float64{3, 6, 12}},
		{"y=quality&index=true", "solution #", []float64{0, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := get(t, r, "/api/runs/run-1/project?"+tt.query)
			require.Equal(t, http.StatusOK, w.Code)

			body := decode[chartBody](t, w)
			assert.Equal(t, "progress", body.Mode)
			assert.Equal(t, tt.xTitle, body.XTitle)
			assert.Equal(t, tt.want, xs(body.Points))
			for _, p := range body.Points {
				assert.Equal(t, float64(1), p["size"])
			}
		})
	}
}

func TestProject_BadRequest(t *testing.T) {
	r := setupRouter(t)
	for _, query := range []string{
		"x=flowDistance",
		"y=quality&index=maybe",
		"y=quality&x_factor=abc",
		"y=quality&x_factor=0",
		"x=a.b&y=quality",
	} {
		w := get(t, r, "/api/runs/run-1/project?"+query)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestPanels(t *testing.T) {
	w := get(t, setupRouter(t), "/api/runs/run-1/panels")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		Groups []struct {
			Y      string      `json:"y"`
			Charts []chartBody `json:"charts"`
		} `json:"groups"`
	}](t, w)
	require.Len(t, body.Groups, 4)
	assert.Equal(t, "quality", body.Groups[0].Y)
	require.Len(t, body.Groups[0].Charts, 1)
	assert.Equal(t, []float64{2, 4, 8}, xs(body.Groups[0].Charts[0].Points))
	assert.Len(t, body.Groups[1].Charts, 3)
}

type failingReader struct{}

func (failingReader) ListRuns(context.Context) ([]store.RunSummary, error) {
	return nil, errors.New("disk on fire")
}

func (failingReader) Summary(context.Context, string) (store.RunSummary, error) {
	return store.RunSummary{}, errors.New("disk on fire")
}

func (failingReader) ReadRun(context.Context, string) (*store.Run, error) {
	return nil, errors.New("disk on fire")
}

func TestInternalError(t *testing.T) {
	r := NewRouter(failingReader{}, config.Default(), logging.Discard())
	for _, path := range []string{"/api/runs", "/api/runs/x", "/api/runs/x/project?y=quality", "/api/runs/x/panels"} {
		w := get(t, r, path)
		assert.Equal(t, http.StatusInternalServerError, w.Code, path)
		assert.JSONEq(t, `{"error":"disk on fire"}`, w.Body.String())
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler(), logging.Discard())
	}()
	cancel()
	assert.NoError(t, <-done)
}
