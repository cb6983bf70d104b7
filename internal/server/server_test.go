package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/piwi3910/barcut/internal/engine"
	"github.com/piwi3910/barcut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter() *gin.Engine {
	return New(Config{
		Inventory: model.DefaultInventory(),
		Defaults:  model.DefaultAppConfig(),
	})
}

func scenarioAJob() model.Job {
	job := model.NewJob("scenario A")
	job.Stock = model.NewBar("6m", 6000)
	job.Items = []model.DemandItem{
		model.NewDemandItem("A", 3000, 2),
		model.NewDemandItem("B", 2000, 3),
	}
	job.Settings.Algorithm = model.AlgorithmExact
	return job
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOptimize_ConcurrentRequests(t *testing.T) {
	r := newTestRouter()
	body, err := json.Marshal(scenarioAJob())
	require.NoError(t, err)

	var wg sync.WaitGroup
	codes := make(chan int, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/optimize", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			codes <- w.Code
		}()
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}
}

func TestHealthz(t *testing.T) {
	w := doJSON(t, newTestRouter(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestProfilesAndInventory(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodGet, "/api/v1/profiles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profiles []model.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profiles))
	assert.Len(t, profiles, len(model.DefaultProfiles()))

	w = doJSON(t, r, http.MethodGet, "/api/v1/inventory", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var inv model.Inventory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inv))
	assert.NotEmpty(t, inv.Stocks)
}

func TestOptimize_ScenarioA(t *testing.T) {
	w := doJSON(t, newTestRouter(), http.MethodPost, "/api/v1/optimize", scenarioAJob())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp OptimizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Solution.TotalUnits)
	assert.Equal(t, 0, resp.Solution.TotalWaste)
	assert.True(t, resp.Solution.Optimal)
	assert.Equal(t, 2, resp.Estimate.UnitsMin)
	assert.Nil(t, resp.Material)
	assert.Empty(t, resp.Offcuts)
}

func TestOptimize_WithProfile(t *testing.T) {
	job := scenarioAJob()
	job.Profile = "upn 120"

	w := doJSON(t, newTestRouter(), http.MethodPost, "/api/v1/optimize", job)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp OptimizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Material)
	assert.InDelta(t, 17*12.0/10*model.SteelDensity, resp.Material.PurchasedWeight, 1e-6)
	assert.InDelta(t, 0, resp.Material.WasteWeight, 1e-9)
}

func TestOptimize_UnknownProfile(t *testing.T) {
	job := scenarioAJob()
	job.Profile = "IPE999"

	w := doJSON(t, newTestRouter(), http.MethodPost, "/api/v1/optimize", job)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "IPE999")
}

func TestOptimize_DefaultsApplied(t *testing.T) {
	job := scenarioAJob()
	job.Settings = model.Settings{}

	w := doJSON(t, newTestRouter(), http.MethodPost, "/api/v1/optimize", job)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp OptimizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.ObjectiveUnits, resp.Solution.Objective)
	assert.Equal(t, 2, resp.Solution.TotalUnits)
}

func TestOptimize_Unfittable(t *testing.T) {
	job := scenarioAJob()
	job.Items = append(job.Items, model.NewDemandItem("Long", 7000, 1))

	w := doJSON(t, newTestRouter(), http.MethodPost, "/api/v1/optimize", job)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, job.Items[2].ID, body["item"])
}

func TestOptimize_BadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/optimize", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOptimize_NoItems(t *testing.T) {
	job := scenarioAJob()
	job.Items = nil

	w := doJSON(t, newTestRouter(), http.MethodPost, "/api/v1/optimize", job)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestOptimize_Plate(t *testing.T) {
	job := model.NewJob("gussets")
	job.Stock = model.NewPlate("plate", 2000, 1000)
	job.Stock.Thickness = 5
	job.Items = []model.DemandItem{model.NewPlateItem("Gusset", 900, 480, 4)}

	w := doJSON(t, newTestRouter(), http.MethodPost, "/api/v1/optimize", job)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp OptimizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Solution.TotalUnits)
	require.NotNil(t, resp.Material)
	assert.Greater(t, resp.Material.PurchasedWeight, 0.0)
}

func TestCompare(t *testing.T) {
	w := doJSON(t, newTestRouter(), http.MethodPost, "/api/v1/compare", CompareRequest{Job: scenarioAJob()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var results []engine.ComparisonResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 4)
	assert.Equal(t, "Current Settings", results[0].Scenario.Name)
	for _, res := range results {
		assert.Empty(t, res.Error, res.Scenario.Name)
		assert.Equal(t, 2, res.UnitsUsed, res.Scenario.Name)
	}
}

func TestCompare_CustomScenarios(t *testing.T) {
	req := CompareRequest{
		Job: scenarioAJob(),
		Scenarios: []engine.ComparisonScenario{
			{Name: "dcg", Settings: model.Settings{Algorithm: model.AlgorithmDCG}},
		},
	}
	w := doJSON(t, newTestRouter(), http.MethodPost, "/api/v1/compare", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var results []engine.ComparisonResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, model.AlgorithmDCG, results[0].Solution.Algorithm)
}

func TestChart(t *testing.T) {
	w := doJSON(t, newTestRouter(), http.MethodPost, "/api/v1/chart", scenarioAJob())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "echarts")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: boom", engine.ErrSolverTimeout), http.StatusGatewayTimeout},
		{&engine.UnfittableItemError{Label: "x", Length: 9000}, http.StatusUnprocessableEntity},
		{engine.ErrInfeasible, http.StatusUnprocessableEntity},
		{engine.ErrTooManyPatterns, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: bad", engine.ErrInvalidInput), http.StatusUnprocessableEntity},
		{context.Canceled, http.StatusServiceUnavailable},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}
