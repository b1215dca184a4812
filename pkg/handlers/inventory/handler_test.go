package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ft-tools/forest-atlas/pkg/analysis"
	"github.com/ft-tools/forest-atlas/pkg/models/api"
	"github.com/ft-tools/forest-atlas/pkg/models/domain"
	"github.com/ft-tools/forest-atlas/pkg/services/config"
	invsvc "github.com/ft-tools/forest-atlas/pkg/services/inventory"
	"github.com/ft-tools/forest-atlas/pkg/store/session"
)

const sampleCSV = `plot_id,tree_id,species_code,species_name,dbh,height,crown_ratio,status,expansion_factor,age,defect,plot_size_acres,slope_percent,aspect_degrees,elevation_ft
1,1,DF,Douglas Fir,14.0,90.0,0.5,Live,5.0,,,0.2,,,
1,2,WRC,Western Red Cedar,12.0,80.0,,Live,5.0,45,0.1,0.2,,,
2,1,DF,Douglas Fir,18.0,110.0,0.4,L,5.0,,,0.2,10.0,180.0,1500.0
2,2,DF,Douglas Fir,8.0,,,Dead,5.0,,,0.2,,,
`

const badStatusCSV = `plot_id,tree_id,species_code,species_name,dbh,height,crown_ratio,status,expansion_factor,age,defect,plot_size_acres,slope_percent,aspect_degrees,elevation_ft
1,1,DF,Douglas Fir,14.0,90.0,0.5,Standing,5.0,,,0.2,,,
`

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			MaxUploadBytes:    50 * 1024 * 1024,
			SessionTTLMinutes: 60,
		},
		Analysis: config.AnalysisConfig{Confidence: 0.95, ClassWidth: 2.0},
		Volume:   domain.DefaultVolumeEquation(),
	}
}

func testRouter(store *session.Store) *chi.Mux {
	h := NewHandler(store, testConfig())
	r := chi.NewRouter()
	r.Post("/inventory", h.Upload)
	r.Post("/inventory/validate", h.Validate)
	r.Get("/inventory/{id}", h.Get)
	r.Get("/inventory/{id}/metrics", h.Metrics)
	r.Get("/inventory/{id}/statistics", h.Statistics)
	r.Get("/inventory/{id}/distribution", h.Distribution)
	r.Post("/inventory/{id}/growth", h.Growth)
	r.Get("/inventory/{id}/export", h.Export)
	return r
}

func multipartUpload(t *testing.T, filename, contents string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/inventory", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func uploadSample(t *testing.T, router *chi.Mux) api.UploadResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "stand.csv", sampleCSV))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.HasErrors)
	return resp
}

func TestUploadCleanCSV(t *testing.T) {
	store := session.NewStore(time.Minute)
	router := testRouter(store)

	resp := uploadSample(t, router)
	assert.Equal(t, "stand", resp.Name)
	assert.Equal(t, 2, resp.NumPlots)
	assert.Equal(t, 4, resp.NumTrees)
	assert.Empty(t, resp.Errors)
	assert.Contains(t, resp.Species, "Douglas Fir")

	_, ok := store.Get(resp.ID)
	assert.True(t, ok)
}

func TestUploadWithIssuesStaysPending(t *testing.T) {
	store := session.NewStore(time.Minute)
	router := testRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "bad.csv", badStatusCSV))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.HasErrors)
	require.NotEmpty(t, resp.Errors)
	assert.Equal(t, "status", resp.Errors[0].Field)
	assert.Len(t, resp.Trees, 1)

	_, ok := store.Get(resp.ID)
	assert.False(t, ok, "invalid upload must not become a ready inventory")
	_, ok = store.GetPending(resp.ID)
	assert.True(t, ok)
}

func TestUploadUnsupportedFormat(t *testing.T) {
	router := testRouter(session.NewStore(time.Minute))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "stand.txt", "whatever"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadNoFile(t *testing.T) {
	router := testRouter(session.NewStore(time.Minute))

	req := httptest.NewRequest(http.MethodPost, "/inventory", strings.NewReader(""))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidatePromotesCorrectedRows(t *testing.T) {
	store := session.NewStore(time.Minute)
	router := testRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "bad.csv", badStatusCSV))
	var pending api.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	require.True(t, pending.HasErrors)

	rows := pending.Trees
	rows[0].Status = "Live"
	body, err := json.Marshal(api.ValidateRequest{ID: pending.ID, Rows: rows})
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/inventory/validate", bytes.NewReader(body))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.HasErrors)
	assert.Equal(t, pending.ID, resp.ID)

	inv, ok := store.Get(pending.ID)
	require.True(t, ok)
	assert.Equal(t, 1, inv.NumTrees())
}

func TestValidateUnknownID(t *testing.T) {
	router := testRouter(session.NewStore(time.Minute))

	body, err := json.Marshal(api.ValidateRequest{ID: uuid.New()})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/inventory/validate", bytes.NewReader(body))
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics(t *testing.T) {
	store := session.NewStore(time.Minute)
	router := testRouter(store)
	resp := uploadSample(t, router)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/inventory/%s/metrics", resp.ID), nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var metrics analysis.StandMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
	assert.Equal(t, 2, metrics.NumSpecies)
	assert.Greater(t, metrics.TotalTPA, 0.0)
}

func TestMetricsUnknownInventory(t *testing.T) {
	router := testRouter(session.NewStore(time.Minute))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/inventory/%s/metrics", uuid.New()), nil)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body api.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Not Found", body.Error)
}

func TestMetricsMalformedID(t *testing.T) {
	router := testRouter(session.NewStore(time.Minute))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/inventory/not-a-uuid/metrics", nil)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatistics(t *testing.T) {
	store := session.NewStore(time.Minute)
	router := testRouter(store)
	resp := uploadSample(t, router)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/inventory/%s/statistics?confidence=0.90", resp.ID), nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats analysis.SamplingStatistics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TPA.SampleSize)
	assert.Equal(t, 0.90, stats.TPA.ConfidenceLevel)
}

func TestStatisticsSinglePlotUnprocessable(t *testing.T) {
	store := session.NewStore(time.Minute)
	router := testRouter(store)

	singlePlot := `plot_id,tree_id,species_code,species_name,dbh,height,crown_ratio,status,expansion_factor,age,defect,plot_size_acres,slope_percent,aspect_degrees,elevation_ft
1,1,DF,Douglas Fir,14.0,90.0,0.5,Live,5.0,,,0.2,,,
`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "one.csv", singlePlot))
	var resp api.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/inventory/%s/statistics", resp.ID), nil)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestStatisticsInvalidConfidence(t *testing.T) {
	store := session.NewStore(time.Minute)
	router := testRouter(store)
	resp := uploadSample(t, router)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/inventory/%s/statistics?confidence=1.5", resp.ID), nil)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDistribution(t *testing.T) {
	store := session.NewStore(time.Minute)
	router := testRouter(store)
	resp := uploadSample(t, router)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/inventory/%s/distribution?class_width=4.0", resp.ID), nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var dist analysis.DiameterDistribution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dist))
	assert.Equal(t, 4.0, dist.ClassWidth)
	assert.NotEmpty(t, dist.Classes)
}

func TestDistributionBadClassWidth(t *testing.T) {
	store := session.NewStore(time.Minute)
	router := testRouter(store)
	resp := uploadSample(t, router)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/inventory/%s/distribution?class_width=-1", resp.ID), nil)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGrowth(t *testing.T) {
	store := session.NewStore(time.Minute)
	router := testRouter(store)
	resp := uploadSample(t, router)

	body, err := json.Marshal(api.GrowthRequest{
		Model:    "logistic",
		Years:    10,
		Rate:     0.05,
		Capacity: 300.0,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/inventory/%s/growth", resp.ID), bytes.NewReader(body))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var projections []analysis.GrowthProjection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &projections))
	require.Len(t, projections, 11)
	assert.Equal(t, 0, projections[0].Year)
}

func TestGrowthShortModelName(t *testing.T) {
	store := session.NewStore(time.Minute)
	router := testRouter(store)
	resp := uploadSample(t, router)

	body, err := json.Marshal(api.GrowthRequest{Model: "exp", Years: 5, Rate: 0.03})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/inventory/%s/growth", resp.ID), bytes.NewReader(body))
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGrowthUnknownModel(t *testing.T) {
	store := session.NewStore(time.Minute)
	router := testRouter(store)
	resp := uploadSample(t, router)

	body, err := json.Marshal(api.GrowthRequest{Model: "quadratic", Years: 5})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/inventory/%s/growth", resp.ID), bytes.NewReader(body))
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGrowthNegativeYears(t *testing.T) {
	store := session.NewStore(time.Minute)
	router := testRouter(store)
	resp := uploadSample(t, router)

	body, err := json.Marshal(api.GrowthRequest{Model: "linear", Years: -1, Increment: 1.0})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/inventory/%s/growth", resp.ID), bytes.NewReader(body))
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportCSV(t *testing.T) {
	store := session.NewStore(time.Minute)
	router := testRouter(store)
	resp := uploadSample(t, router)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/inventory/%s/export", resp.ID), nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="stand.csv"`)

	rows, issues, err := invsvc.ParseCSVLenient(rec.Body)
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Len(t, rows, 4)
}

func TestExportJSON(t *testing.T) {
	store := session.NewStore(time.Minute)
	router := testRouter(store)
	resp := uploadSample(t, router)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/inventory/%s/export?format=json", resp.ID), nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var inv domain.ForestInventory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inv))
	assert.Equal(t, "stand", inv.Name)
	assert.Equal(t, 2, inv.NumPlots())
}

func TestExportUnsupportedFormat(t *testing.T) {
	store := session.NewStore(time.Minute)
	router := testRouter(store)
	resp := uploadSample(t, router)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/inventory/%s/export?format=pdf", resp.ID), nil)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetInventory(t *testing.T) {
	store := session.NewStore(time.Minute)
	router := testRouter(store)
	resp := uploadSample(t, router)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/inventory/%s", resp.ID), nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var inv domain.ForestInventory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inv))
	assert.Equal(t, 4, inv.NumTrees())
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "stand 2024", sanitizeFilename(`stand/ "2024`))
	assert.Equal(t, "etcpasswd", sanitizeFilename("../../etc/passwd"))
}
