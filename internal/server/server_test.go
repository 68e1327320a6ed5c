package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gangadharKorrapati/apollo/internal/nlp"
	"github.com/gangadharKorrapati/apollo/internal/store"
)

func newTestServer(t *testing.T, st store.Store) *httptest.Server {
	t.Helper()
	srv := NewServer(":0", st, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postScenario(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/v1/jobs", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateJobRejectsInvalidScenario(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"too few stations", `{"delta_s": 1.0, "corridors": [{"lower":-1,"upper":1}]}`},
		{"zero spacing", `{"delta_s": 0, "corridors": [{"lower":-1,"upper":1},{"lower":-1,"upper":1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postScenario(t, ts, tt.body)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestJobLifecycle(t *testing.T) {
	resultStore, err := store.NewFSStore(t.TempDir())
	require.NoError(t, err)
	ts := newTestServer(t, resultStore)

	body := `{
		"delta_s": 1.0,
		"corridors": [
			{"lower": -1, "upper": 1},
			{"lower": -1, "upper": 1},
			{"lower": -1, "upper": 1}
		]
	}`

	resp := postScenario(t, ts, body)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created Job
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.ID)

	// Poll until the background solve finishes.
	final := waitForJob(t, ts, created.ID, 10*time.Second)
	require.Equal(t, StateCompleted, final.State)
	assert.Equal(t, "converged", final.Status)
	require.Len(t, final.Samples, 3)

	// Symmetric corridors and a zero initial state keep the offsets near 0.
	for _, s := range final.Samples {
		assert.InDelta(t, 0.0, s.D, 1e-3)
	}

	// The result was persisted through the store.
	persisted, err := resultStore.LoadResult(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, persisted.JobID)
	assert.Len(t, persisted.Samples, 3)

	// And shows up in the results listing.
	listResp, err := http.Get(ts.URL + "/api/v1/results")
	require.NoError(t, err)
	defer listResp.Body.Close()
	var infos []store.ResultInfo
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&infos))
	require.Len(t, infos, 1)
	assert.Equal(t, created.ID, infos[0].JobID)
}

// A solver injected at construction must reach the background workers.
func TestServerUsesInjectedSolver(t *testing.T) {
	srv := NewServer(":0", nil, &fixedStatusSolver{status: nlp.IterationLimit})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	body := `{
		"delta_s": 1.0,
		"corridors": [
			{"lower": -1, "upper": 1},
			{"lower": -1, "upper": 1}
		]
	}`
	resp := postScenario(t, ts, body)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created Job
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	final := waitForJob(t, ts, created.ID, 10*time.Second)
	assert.Equal(t, StateFailed, final.State)
	assert.Equal(t, "iteration-limit", final.Status)
}

func TestGetJobNotFound(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/api/v1/jobs/does-not-exist")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListJobs(t *testing.T) {
	ts := newTestServer(t, nil)

	body := `{
		"delta_s": 1.0,
		"corridors": [
			{"lower": -1, "upper": 1},
			{"lower": -1, "upper": 1}
		]
	}`
	resp := postScenario(t, ts, body)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	listResp, err := http.Get(ts.URL + "/api/v1/jobs")
	require.NoError(t, err)
	defer listResp.Body.Close()

	var jobs []Job
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&jobs))
	assert.Len(t, jobs, 1)
}

func waitForJob(t *testing.T, ts *httptest.Server, id string, timeout time.Duration) Job {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(ts.URL + "/api/v1/jobs/" + id)
		require.NoError(t, err)

		var job Job
		err = json.NewDecoder(resp.Body).Decode(&job)
		resp.Body.Close()
		require.NoError(t, err)

		if job.State == StateCompleted || job.State == StateFailed {
			return job
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish within %v", id, timeout)
	return Job{}
}
