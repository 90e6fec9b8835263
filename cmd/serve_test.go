package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/diagnosis-cli/internal/config"
	"github.com/sells-group/diagnosis-cli/internal/model"
	"github.com/sells-group/diagnosis-cli/internal/pipeline"
	"github.com/sells-group/diagnosis-cli/internal/store"
)

func newTestRouter(t *testing.T) (http.Handler, store.Store) {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	testCfg := &config.Config{
		Places: config.PlacesConfig{RadiusMeters: 2414, MaxPeers: 5},
		Batch:  config.BatchConfig{MaxConcurrentLeads: 2},
	}
	p := pipeline.New(testCfg, st, nil, nil, nil)
	return newRouter(p, st), st
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_Diagnose(t *testing.T) {
	router, _ := newTestRouter(t)

	rating := 3.4
	reviews := 6
	lead := model.Lead{Name: "Lakeview Dental", PlaceID: "pl-1", Rating: &rating, ReviewCount: &reviews}
	body, err := json.Marshal(lead)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/diagnose", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var run model.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &run))
	assert.Equal(t, model.RunStatusComplete, run.Status)
	require.NotNil(t, run.Decision)
	assert.NotEmpty(t, run.Decision.RootBottleneck.Bottleneck)
	assert.NotEmpty(t, run.ID)
}

func TestRouter_DiagnoseInvalidBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/diagnose", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRouter_DiagnoseMissingName(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/diagnose", bytes.NewReader([]byte(`{"place_id":"pl-1"}`)))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRouter_ListAndGetRuns(t *testing.T) {
	router, st := newTestRouter(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.Lead{Name: "Lakeview Dental", PlaceID: "pl-1"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/runs?place_id=pl-1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var runs []model.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)

	req = httptest.NewRequest(http.MethodGet, "/runs/"+run.ID, nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got model.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Lakeview Dental", got.Lead.Name)
}

func TestRouter_GetRunNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/runs/nope", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
