package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/yard-planner/internal/allocation"
	"github.com/iwvelando/yard-planner/internal/inventory"
	"github.com/iwvelando/yard-planner/internal/occupancy"
	"github.com/iwvelando/yard-planner/internal/terminal"
	"github.com/iwvelando/yard-planner/internal/yardmap"
	"github.com/iwvelando/yard-planner/pkg/constants"
	"github.com/iwvelando/yard-planner/pkg/datetime"
	"github.com/iwvelando/yard-planner/pkg/output"
	"github.com/iwvelando/yard-planner/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	terminal      *terminal.Terminal
	tracer        trace.Tracer
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the yard planning API.
func NewHandler(logger *zap.Logger, term *terminal.Terminal, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		terminal:      term,
		tracer:        telemetry.Tracer("yard-planner/server"),
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
	}

	mux := http.NewServeMux()

	// Inventory upload (CSV file or JSON rows) and current snapshot summary
	mux.HandleFunc("/api/inventory", h.handleInventory)

	// Per-block occupancy with status classification
	mux.HandleFunc("/api/occupancy", h.handleOccupancy)

	// Allocation plan for an incoming lot
	mux.HandleFunc("/api/plan", h.handlePlan)

	// Top and profile grids of one block
	mux.HandleFunc("/api/map", h.handleMap)

	// Effective yard configuration as YAML
	mux.HandleFunc("/api/config", h.handleConfigExport)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type snapshotResponse struct {
	ID         string                 `json:"id"`
	Source     string                 `json:"source,omitempty"`
	LoadedAt   string                 `json:"loadedAt"`
	Age        string                 `json:"age"`
	Summary    string                 `json:"summary"`
	Containers int                    `json:"containers"`
	TotalTEU   int                    `json:"totalTEU"`
	Ships      []string               `json:"ships,omitempty"`
	Report     inventory.EnrichReport `json:"report"`
}

func newSnapshotResponse(s *inventory.Snapshot) snapshotResponse {
	return snapshotResponse{
		ID:         s.ID,
		Source:     s.Source,
		LoadedAt:   datetime.FormatSnapshotTime(s.LoadedAt),
		Age:        datetime.Age(s.LoadedAt, time.Now()).String(),
		Summary:    s.Summary(),
		Containers: len(s.Records),
		TotalTEU:   s.TotalTEU(),
		Ships:      s.Ships(),
		Report:     s.Report,
	}
}

type inventoryPayload struct {
	Source string             `json:"source"`
	Rows   []inventory.RawRow `json:"rows"`
}

type occupancyResponse struct {
	output.OccupancyView
	Snapshot string   `json:"snapshot"`
	Summary  string   `json:"summary"`
	Duration string   `json:"duration"`
	Warnings []string `json:"warnings,omitempty"`
}

type planResponse struct {
	allocation.Plan
	Snapshot        string `json:"snapshot"`
	NeedsRelocation bool   `json:"needsRelocation"`
	Duration        string `json:"duration"`
}

type planPayload struct {
	TotalCount    int    `json:"totalCount"`
	TwentyPercent int    `json:"twentyPercent"`
	ReeferCount   int    `json:"reeferCount"`
	Berth         string `json:"berth"`
}

func (h *handler) handleInventory(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleInventory"
	switch r.Method {
	case http.MethodGet:
		snapshot, err := h.terminal.Snapshot()
		if err != nil {
			h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
			return
		}
		h.writeJSON(w, http.StatusOK, newSnapshotResponse(snapshot))
		return
	case http.MethodPost:
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	_, span := h.tracer.Start(r.Context(), op)
	defer span.End()

	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}

	var rows []inventory.RawRow
	var source string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var payload inventoryPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			h.failSpan(span, err)
			h.respondUploadError(w, err, "failed to decode inventory rows", op)
			return
		}
		rows, source = payload.Rows, payload.Source
	} else {
		if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
			h.failSpan(span, err)
			h.respondUploadError(w, err, "failed to parse upload", op)
			return
		}

		file, fileHeader, err := r.FormFile("file")
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, "missing inventory file", op)
			return
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				h.logger.Warn("failed to close uploaded file",
					zap.String("op", op),
					zap.Error(closeErr),
				)
			}
		}()

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, file); err != nil {
			h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read inventory: %v", err), op)
			return
		}
		rows, err = inventory.ReadCSV(&buf)
		if err != nil {
			h.failSpan(span, err)
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		source = fileHeader.Filename
	}

	snapshot := h.terminal.Load(rows, source)
	span.SetAttributes(
		attribute.String("snapshot.id", snapshot.ID),
		attribute.Int("snapshot.containers", len(snapshot.Records)),
		attribute.Int("snapshot.downgraded", snapshot.Report.Downgraded),
	)
	h.writeJSON(w, http.StatusOK, newSnapshotResponse(snapshot))
}

func (h *handler) handleOccupancy(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleOccupancy"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	_, span := h.tracer.Start(r.Context(), op)
	defer span.End()

	start := time.Now()
	report, snapshot, err := h.terminal.Occupancy()
	if err != nil {
		h.failSpan(span, err)
		h.respondTerminalError(w, err, op)
		return
	}

	switch sortKey := r.URL.Query().Get("sort"); sortKey {
	case "", "block":
	case "percent":
		report.Blocks = occupancy.SortByPercent(report.Blocks)
	default:
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("unsupported sort %q: expected block or percent", sortKey), op)
		return
	}

	var warnings []string
	if snapshot.Report.Downgraded > 0 {
		warnings = append(warnings, fmt.Sprintf("%d container positions could not be parsed", snapshot.Report.Downgraded))
	}
	for _, block := range occupancy.UnmappedBlockCodes(report.UnmappedBlocks) {
		warnings = append(warnings, fmt.Sprintf("%d containers in block %s which is not in the yard table", report.UnmappedBlocks[block], block))
	}

	span.SetAttributes(attribute.Float64("yard.percent_full", report.PercentFull))
	h.writeJSON(w, http.StatusOK, occupancyResponse{
		OccupancyView: output.NewOccupancyView(report, h.terminal.Thresholds()),
		Snapshot:      snapshot.ID,
		Summary:       snapshot.Summary(),
		Duration:      time.Since(start).String(),
		Warnings:      warnings,
	})
}

func (h *handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePlan"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	_, span := h.tracer.Start(r.Context(), op)
	defer span.End()

	start := time.Now()
	var payload planPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode plan request: %v", err), op)
		return
	}
	berth, err := allocation.ParseBerth(payload.Berth)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	request := allocation.Request{
		TotalCount:    payload.TotalCount,
		TwentyPercent: payload.TwentyPercent,
		ReeferCount:   payload.ReeferCount,
		Berth:         berth,
	}

	plan, snapshot, err := h.terminal.Plan(request)
	if err != nil {
		h.failSpan(span, err)
		h.respondTerminalError(w, err, op)
		return
	}

	span.SetAttributes(
		attribute.String("plan.id", plan.ID),
		attribute.String("plan.berth", string(berth)),
		attribute.Int("plan.total_count", request.TotalCount),
		attribute.Int("plan.residual", plan.Residual.Total()),
	)
	h.writeJSON(w, http.StatusOK, planResponse{
		Plan:            plan,
		Snapshot:        snapshot.ID,
		NeedsRelocation: plan.NeedsRelocation(),
		Duration:        time.Since(start).String(),
	})
}

func (h *handler) handleMap(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleMap"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	_, span := h.tracer.Start(r.Context(), op)
	defer span.End()

	query := r.URL.Query()
	block := strings.TrimSpace(query.Get("block"))
	if block == "" {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing block parameter", op)
		return
	}

	maps, err := h.terminal.Map(block, yardmap.Options{Ship: query.Get("ship")})
	if err != nil {
		h.failSpan(span, err)
		h.respondTerminalError(w, err, op)
		return
	}
	span.SetAttributes(attribute.String("map.block", maps.Block), attribute.Int("map.placed", maps.Placed))
	h.writeJSON(w, http.StatusOK, maps)
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigExport"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	yamlBytes, err := h.terminal.Config().ExportYAML()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "yaml") {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(yamlBytes)
		return
	}

	configMap, err := decodeYAMLToMap(yamlBytes)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to decode configuration: %v", err), op)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"config":     configMap,
		"configYaml": string(yamlBytes),
		"warnings":   h.terminal.Config().ValidateConfiguration(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// respondTerminalError maps terminal errors onto HTTP statuses.
func (h *handler) respondTerminalError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, terminal.ErrNoSnapshot):
		h.respondErrorWithOp(w, http.StatusConflict, err.Error()+"; upload an inventory first", op)
	case errors.Is(err, yardmap.ErrNoDimensions):
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
	default:
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
	}
}

func (h *handler) respondUploadError(w http.ResponseWriter, err error, msg string, op string) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
		return
	}
	h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("%s: %v", msg, err), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	log := h.logger.Error
	if status < http.StatusInternalServerError {
		log = h.logger.Warn
	}
	log("yard request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

// decodeYAMLToMap parses a YAML document into a generic map; empty input
// yields an empty map.
func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(map[string]interface{})
	}
	return result, nil
}
