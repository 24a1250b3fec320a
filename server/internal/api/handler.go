package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/freshsense/freshsense/pkg/types"
	"github.com/freshsense/freshsense/server/internal/dataset"
	"github.com/freshsense/freshsense/server/internal/spoilage"
)

const (
	// maxBodyBytes caps an analysis request body.
	maxBodyBytes = 1 << 20

	// DeviceHeader optionally names the device a reading set came from.
	DeviceHeader = "X-Device-ID"

	// DefaultDevice is used when DeviceHeader is absent.
	DefaultDevice = "anonymous"

	msgNoData          = "No data provided"
	msgAnalyzeFailed   = "Failed to analyze gas readings"
	msgDatasetFailed   = "Failed to load dataset"
	msgMethodNotAllow  = "method not allowed"
	msgNotFound        = "not found"
	msgDatasetDisabled = "dataset not configured"
)

// Publisher receives every successful analysis. Implemented by ws.Hub.
type Publisher interface {
	Publish(types.Analysis)
}

// Notifier is offered every successful analysis and reports whether an alert
// fired. Implemented by alerts.Engine.
type Notifier interface {
	Notify(types.Analysis) bool
}

// Observer records request and classification metrics. Implemented by
// metrics.Recorder.
type Observer interface {
	ObserveResult(types.Result)
	ObserveRequest(path string, code int, d time.Duration)
}

// Options wires a Handler. Every field is optional.
type Options struct {
	ServiceName    string
	DatasetPath    string
	AllowedOrigins []string

	// Auth guards the analysis and dataset routes.
	Auth func(http.Handler) http.Handler

	Metrics Observer
	Stream  Publisher
	Alerts  Notifier
}

// Handler is the HTTP handler for the analysis API.
type Handler struct {
	service     string
	datasetPath string
	metrics     Observer
	stream      Publisher
	alerts      Notifier

	mux     *http.ServeMux
	routes  map[string]struct{}
	handler http.Handler
	now     func() time.Time
}

// New creates a Handler and registers all routes.
func New(opts Options) *Handler {
	h := &Handler{
		service:     opts.ServiceName,
		datasetPath: opts.DatasetPath,
		metrics:     opts.Metrics,
		stream:      opts.Stream,
		alerts:      opts.Alerts,
		mux:         http.NewServeMux(),
		routes:      make(map[string]struct{}),
		now:         time.Now,
	}

	guard := opts.Auth
	if guard == nil {
		guard = func(next http.Handler) http.Handler { return next }
	}

	h.route("/analyze", guard(http.HandlerFunc(h.analyze)))
	h.route("/api/simulate", guard(http.HandlerFunc(h.simulate)))
	h.route("/api/dataset", guard(http.HandlerFunc(h.dataset)))
	h.route("/health", http.HandlerFunc(h.health))
	h.route("/sensors", http.HandlerFunc(h.sensors))
	h.mux.HandleFunc("/", h.notFound)

	h.handler = withRequestID(h.logRequests(cors(opts.AllowedOrigins, h.mux)))
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

func (h *Handler) route(path string, handler http.Handler) {
	h.routes[path] = struct{}{}
	h.mux.Handle(path, handler)
}

// routeLabel keeps the metrics path label bounded to registered routes.
func (h *Handler) routeLabel(path string) string {
	if _, ok := h.routes[path]; ok {
		return path
	}
	return "other"
}

// --- route handlers ---------------------------------------------------------

// analyze handles POST /analyze.
func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, msgMethodNotAllow)
		return
	}

	res, err := h.classify(w, r)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			jsonErr(w, http.StatusBadRequest, msg)
			return
		}
		slog.Error("analyze failed", "err", err, "request_id", RequestID(r.Context()))
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResp(w, http.StatusOK, res)
}

// simulate handles POST /api/simulate. Same contract as /analyze except for
// the shape of the 500 body.
func (h *Handler) simulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, msgMethodNotAllow)
		return
	}

	res, err := h.classify(w, r)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			jsonErr(w, http.StatusBadRequest, msg)
			return
		}
		slog.Error("simulate failed", "err", err, "request_id", RequestID(r.Context()))
		jsonResp(w, http.StatusInternalServerError, types.ErrorResponse{
			Error:   msgAnalyzeFailed,
			Message: err.Error(),
		})
		return
	}
	jsonResp(w, http.StatusOK, res)
}

// health handles GET /health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, msgMethodNotAllow)
		return
	}
	jsonResp(w, http.StatusOK, types.HealthResponse{
		Status:     "OK",
		Service:    h.service,
		Thresholds: spoilage.Thresholds(),
	})
}

// sensors handles GET /sensors.
func (h *Handler) sensors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, msgMethodNotAllow)
		return
	}
	jsonResp(w, http.StatusOK, spoilage.Sensors())
}

// dataset handles GET /api/dataset. The file is re-read on every request.
func (h *Handler) dataset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, msgMethodNotAllow)
		return
	}
	if h.datasetPath == "" {
		jsonErr(w, http.StatusNotFound, msgDatasetDisabled)
		return
	}

	rows, err := dataset.Load(h.datasetPath)
	if err != nil {
		slog.Error("load dataset", "err", err, "request_id", RequestID(r.Context()))
		jsonResp(w, http.StatusInternalServerError, types.ErrorResponse{
			Error:   msgDatasetFailed,
			Message: err.Error(),
		})
		return
	}
	if rows == nil {
		rows = []types.DatasetRow{}
	}
	jsonResp(w, http.StatusOK, rows)
}

func (h *Handler) notFound(w http.ResponseWriter, _ *http.Request) {
	jsonErr(w, http.StatusNotFound, msgNotFound)
}

// --- analysis ---------------------------------------------------------------

// classify decodes the request body, classifies it and fans the result out
// to metrics, the live stream and the alert engine.
func (h *Handler) classify(w http.ResponseWriter, r *http.Request) (types.Result, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return types.Result{}, fmt.Errorf("read request body: %w", err)
	}
	readings, err := decodeReadings(body)
	if err != nil {
		return types.Result{}, err
	}

	res := spoilage.Classify(readings)
	a := types.Analysis{
		DeviceID:   deviceID(r),
		Readings:   readings,
		Result:     res,
		AnalyzedAt: h.now().UTC().Format(time.RFC3339),
	}
	slog.Debug("analysis",
		"device_id", a.DeviceID,
		"input", readings,
		"output", res,
		"request_id", RequestID(r.Context()),
	)

	if h.metrics != nil {
		h.metrics.ObserveResult(res)
	}
	if h.stream != nil {
		h.stream.Publish(a)
	}
	if h.alerts != nil {
		h.alerts.Notify(a)
	}
	return res, nil
}

// validationMessage maps a decode error to its 400 message. ok is false for
// unexpected errors.
func validationMessage(err error) (msg string, ok bool) {
	var missing *MissingReadingError
	switch {
	case errors.Is(err, ErrNoData):
		return msgNoData, true
	case errors.As(err, &missing):
		return fmt.Sprintf("Missing %s reading", missing.Gas), true
	}
	return "", false
}

func deviceID(r *http.Request) string {
	if id := r.Header.Get(DeviceHeader); id != "" {
		return id
	}
	return DefaultDevice
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, types.ErrorResponse{Error: msg})
}
