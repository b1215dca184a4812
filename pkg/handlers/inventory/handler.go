package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ft-tools/forest-atlas/pkg/analysis"
	"github.com/ft-tools/forest-atlas/pkg/models/api"
	"github.com/ft-tools/forest-atlas/pkg/models/domain"
	"github.com/ft-tools/forest-atlas/pkg/services/config"
	invsvc "github.com/ft-tools/forest-atlas/pkg/services/inventory"
	"github.com/ft-tools/forest-atlas/pkg/store/session"
)

// Mortality defaults when a growth request leaves mortality unset.
// Linear projections express mortality in trees per acre per year
// rather than as a rate, hence the larger default.
const (
	defaultRateMortality      = 0.005
	defaultIncrementMortality = 0.5
)

type Handler struct {
	store *session.Store
	cfg   *config.Config
}

func NewHandler(store *session.Store, cfg *config.Config) *Handler {
	return &Handler{
		store: store,
		cfg:   cfg,
	}
}

// Upload accepts a multipart CSV/JSON/XLSX file, parses it leniently,
// and stores the result. Clean files become a ready inventory; files
// with validation issues are kept as pending rows for the editor.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Server.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", "no file uploaded")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	name := strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
	if name == "" {
		name = "unknown"
	}

	var (
		rows   []invsvc.EditableRow
		issues []domain.ValidationIssue
	)
	switch ext {
	case ".csv":
		rows, issues, err = invsvc.ParseCSVLenient(file)
	case ".json":
		rows, issues, err = invsvc.ParseJSONLenient(file)
	case ".xlsx", ".xls":
		rows, issues, err = invsvc.ParseXLSXLenient(file)
	default:
		writeError(w, http.StatusBadRequest, "Bad Request",
			fmt.Sprintf("unsupported file format %q: use .csv, .json, or .xlsx", ext))
		return
	}
	if err != nil {
		logger.Warn().Err(err).Str("file", header.Filename).Msg("upload parse failed")
		writeError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	if len(issues) > 0 {
		id := h.store.PutPending(&session.Pending{Name: name, Rows: rows, Issues: issues})
		writeJSON(ctx, w, http.StatusOK, api.UploadResponse{
			ID:        id,
			Name:      name,
			NumPlots:  numPlotsFromRows(rows),
			NumTrees:  len(rows),
			HasErrors: true,
			Errors:    issues,
			Trees:     rows,
			Species:   speciesFromRows(rows),
		})
		return
	}

	inv := invsvc.RowsToInventory(name, rows)
	id := h.store.Put(inv)
	logger.Info().
		Str("inventory", name).
		Int("plots", inv.NumPlots()).
		Int("trees", inv.NumTrees()).
		Msg("inventory uploaded")
	writeJSON(ctx, w, http.StatusOK, uploadResponseFor(id, inv))
}

// Validate resubmits corrected rows for a pending upload. A clean row
// set is promoted to a ready inventory under the same id; otherwise
// the pending rows are updated and the issues returned.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req api.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	pending, ok := h.store.GetPending(req.ID)
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found",
			fmt.Sprintf("no pending upload found for id %s", req.ID))
		return
	}

	name := pending.Name
	if req.Name != "" {
		name = req.Name
	}

	issues := invsvc.ValidateRows(req.Rows)
	if len(issues) > 0 {
		h.store.ReplacePending(req.ID, &session.Pending{Name: name, Rows: req.Rows, Issues: issues})
		writeJSON(ctx, w, http.StatusOK, api.UploadResponse{
			ID:        req.ID,
			Name:      name,
			NumPlots:  numPlotsFromRows(req.Rows),
			NumTrees:  len(req.Rows),
			HasErrors: true,
			Errors:    issues,
			Trees:     req.Rows,
			Species:   speciesFromRows(req.Rows),
		})
		return
	}

	inv := invsvc.RowsToInventory(name, req.Rows)
	h.store.Replace(req.ID, inv)
	logger.Info().Str("inventory", name).Msg("pending upload promoted")
	writeJSON(ctx, w, http.StatusOK, uploadResponseFor(req.ID, inv))
}

// Metrics returns stand-level summary metrics for an inventory.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.inventoryFor(w, r)
	if !ok {
		return
	}
	analyzer := analysis.NewAnalyzerWithEquation(inv, h.cfg.Volume)
	writeJSON(r.Context(), w, http.StatusOK, analyzer.StandMetrics())
}

// Statistics returns plot-based sampling statistics. The confidence
// level is taken from the query string, falling back to the configured
// default.
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.inventoryFor(w, r)
	if !ok {
		return
	}

	confidence := h.cfg.Analysis.Confidence
	if raw := r.URL.Query().Get("confidence"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Bad Request",
				fmt.Sprintf("invalid confidence %q", raw))
			return
		}
		confidence = v
	}

	analyzer := analysis.NewAnalyzerWithEquation(inv, h.cfg.Volume)
	stats, err := analyzer.SamplingStatistics(confidence)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, stats)
}

// Distribution returns the diameter class distribution. The class
// width is taken from the query string, falling back to the configured
// default.
func (h *Handler) Distribution(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.inventoryFor(w, r)
	if !ok {
		return
	}

	classWidth := h.cfg.Analysis.ClassWidth
	if raw := r.URL.Query().Get("class_width"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "Bad Request",
				fmt.Sprintf("invalid class_width %q", raw))
			return
		}
		classWidth = v
	}

	analyzer := analysis.NewAnalyzerWithEquation(inv, h.cfg.Volume)
	writeJSON(r.Context(), w, http.StatusOK, analyzer.DiameterDistribution(classWidth))
}

// Growth projects stand development under the requested model.
func (h *Handler) Growth(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.inventoryFor(w, r)
	if !ok {
		return
	}

	var req api.GrowthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	model, err := growthModelFrom(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	analyzer := analysis.NewAnalyzerWithEquation(inv, h.cfg.Volume)
	projections, err := analyzer.ProjectGrowth(model, req.Years)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, projections)
}

// Export streams the inventory back as a CSV, JSON, or XLSX download.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	inv, ok := h.inventoryFor(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	var (
		buf         bytes.Buffer
		contentType string
		ext         string
		err         error
	)
	switch format {
	case "csv":
		contentType, ext = "text/csv", "csv"
		err = invsvc.WriteCSV(inv, &buf)
	case "json":
		contentType, ext = "application/json", "json"
		err = invsvc.WriteJSON(inv, &buf, true)
	case "xlsx":
		contentType, ext = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"
		err = invsvc.WriteXLSX(inv, &buf)
	default:
		writeError(w, http.StatusBadRequest, "Bad Request",
			fmt.Sprintf("unsupported export format %q: use csv, json, or xlsx", format))
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("format", format).Msg("export failed")
		writeError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", sanitizeFilename(inv.Name)+"."+ext))
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Error().Err(err).Msg("failed to write export body")
	}
}

// Get returns the stored inventory as JSON.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.inventoryFor(w, r)
	if !ok {
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, inv)
}

func (h *Handler) inventoryFor(w http.ResponseWriter, r *http.Request) (*domain.ForestInventory, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("invalid inventory id %q", raw))
		return nil, false
	}
	inv, ok := h.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found", fmt.Sprintf("inventory %s not found", id))
		return nil, false
	}
	return inv, true
}

// growthModelFrom maps a request onto a growth model. Short model
// names (exp, log, lin) are accepted alongside the full ones.
func growthModelFrom(req api.GrowthRequest) (analysis.GrowthModel, error) {
	switch strings.ToLower(req.Model) {
	case "exponential", "exp":
		return analysis.Exponential(req.Rate, mortalityOr(req.Mortality, defaultRateMortality)), nil
	case "logistic", "log":
		return analysis.Logistic(req.Rate, req.Capacity, mortalityOr(req.Mortality, defaultRateMortality)), nil
	case "linear", "lin":
		increment := req.Increment
		if increment == 0 {
			increment = req.Rate
		}
		return analysis.Linear(increment, mortalityOr(req.Mortality, defaultIncrementMortality)), nil
	default:
		return analysis.GrowthModel{}, fmt.Errorf(
			"unknown growth model %q: use exponential, logistic, or linear", req.Model)
	}
}

func mortalityOr(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}

func uploadResponseFor(id uuid.UUID, inv *domain.ForestInventory) api.UploadResponse {
	var species []string
	for _, s := range inv.SpeciesList() {
		species = append(species, s.CommonName)
	}
	return api.UploadResponse{
		ID:       id,
		Name:     inv.Name,
		NumPlots: inv.NumPlots(),
		NumTrees: inv.NumTrees(),
		Errors:   []domain.ValidationIssue{},
		Trees:    []invsvc.EditableRow{},
		Species:  species,
	}
}

func speciesFromRows(rows []invsvc.EditableRow) []string {
	seen := make(map[string]struct{}, len(rows))
	var species []string
	for _, row := range rows {
		if _, ok := seen[row.SpeciesName]; ok {
			continue
		}
		seen[row.SpeciesName] = struct{}{}
		species = append(species, row.SpeciesName)
	}
	return species
}

func numPlotsFromRows(rows []invsvc.EditableRow) int {
	plots := make(map[int]struct{}, len(rows))
	for _, row := range rows {
		plots[row.PlotID] = struct{}{}
	}
	return len(plots)
}

// sanitizeFilename strips characters that could enable header
// injection or path traversal from a Content-Disposition filename.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == '-' || c == '_' || c == '.' || c == ' ':
			b.WriteRune(c)
		}
	}
	return strings.ReplaceAll(b.String(), "..", "")
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, kind, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.ErrorBody{Error: kind, Details: details})
}

// writeAnalysisError maps analysis failures onto HTTP statuses:
// unmet statistical preconditions are 422, bad parameters 400,
// anything else 500.
func writeAnalysisError(w http.ResponseWriter, err error) {
	var insufficient *analysis.InsufficientDataError
	var analysisErr *analysis.AnalysisError
	switch {
	case errors.As(err, &insufficient):
		writeError(w, http.StatusUnprocessableEntity, "Unprocessable Entity", err.Error())
	case errors.As(err, &analysisErr):
		writeError(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
}
