package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"paddock/internal/lineup/graph"
	"paddock/internal/lineup/models"
	"paddock/internal/lineup/service"
	"paddock/internal/lineup/snapshot"
	dErrors "paddock/pkg/domain-errors"
	"paddock/pkg/platform/httputil"
	"paddock/pkg/requestcontext"
)

// Service defines the lineup operations exposed over HTTP.
type Service interface {
	Graph(ctx context.Context, q service.GraphQuery) ([]byte, error)
	Path(ctx context.Context, q service.PathQuery) (graph.Path, error)
	Styles(ctx context.Context) ([]graph.Style, error)
	Status() service.Status
	Rebuild(ctx context.Context) (*snapshot.Snapshot, error)
}

// Handler wires lineup endpoints to the lineup service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts the public read endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/graph", h.HandleGraph)
	r.Get("/path", h.HandlePath)
	r.Get("/constructors/styles", h.HandleStyles)
	r.Get("/status", h.HandleStatus)
}

// RegisterAdmin mounts operator endpoints. Callers guard r with admin auth.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/refresh", h.HandleRefresh)
}

// HandleGraph handles GET /graph?min_year=&max_year=&min_race_count=&format=.
func (h *Handler) HandleGraph(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := parseGraphQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	doc, err := h.service.Graph(ctx, q)
	if err != nil {
		h.logger.WarnContext(ctx, "graph request failed",
			"request_id", requestcontext.RequestID(ctx),
			"min_year", q.Range.Min,
			"max_year", q.Range.Max,
			"min_race_count", q.MinRaceCount,
			"format", q.Format.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteRawJSON(w, http.StatusOK, doc)
}

// HandlePath handles GET /path?from=&to=&min_year=&max_year=&min_race_count=.
func (h *Handler) HandlePath(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := parsePathQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	path, err := h.service.Path(ctx, q)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.WarnContext(ctx, "path request failed",
				"request_id", requestcontext.RequestID(ctx),
				"from", q.From,
				"to", q.To,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, path)
}

// HandleStyles handles GET /constructors/styles.
func (h *Handler) HandleStyles(w http.ResponseWriter, r *http.Request) {
	styles, err := h.service.Styles(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, styles)
}

// HandleStatus handles GET /status.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Status())
}

// HandleRefresh handles POST /admin/refresh.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := requestcontext.Now(ctx)

	snap, err := h.service.Rebuild(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "manual refresh failed",
			"request_id", requestID,
			"client_ip", requestcontext.ClientIP(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "manual refresh completed",
		"request_id", requestID,
		"client_ip", requestcontext.ClientIP(ctx),
		"snapshot_id", snap.ID(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, h.service.Status())
}

func parseGraphQuery(r *http.Request) (service.GraphQuery, error) {
	values := r.URL.Query()
	q := service.GraphQuery{}

	f, err := parseFilter(values)
	if err != nil {
		return q, err
	}
	q.Range, q.MinRaceCount = f.Years, f.MinRaceCount

	format, err := graph.ParseFormat(values.Get("format"))
	if err != nil {
		return q, err
	}
	q.Format = format
	return q, nil
}

func parsePathQuery(r *http.Request) (service.PathQuery, error) {
	values := r.URL.Query()
	q := service.PathQuery{}

	from, err := parseDriverID(values, "from")
	if err != nil {
		return q, err
	}
	to, err := parseDriverID(values, "to")
	if err != nil {
		return q, err
	}
	f, err := parseFilter(values)
	if err != nil {
		return q, err
	}
	q.From, q.To, q.Range, q.MinRaceCount = from, to, f.Years, f.MinRaceCount
	return q, nil
}

func parseFilter(values url.Values) (graph.Filter, error) {
	f := graph.Filter{Years: graph.AllYears()}

	if raw := values.Get("min_year"); raw != "" {
		y, err := parseYear("min_year", raw)
		if err != nil {
			return f, err
		}
		f.Years.Min = y
	}
	if raw := values.Get("max_year"); raw != "" {
		y, err := parseYear("max_year", raw)
		if err != nil {
			return f, err
		}
		f.Years.Max = y
	}
	if raw := values.Get("min_race_count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return f, dErrors.New(dErrors.CodeBadRequest, "min_race_count must be an integer")
		}
		f.MinRaceCount = n
	}
	if err := f.Validate(); err != nil {
		return f, err
	}
	return f, nil
}

func parseDriverID(values url.Values, param string) (models.DriverID, error) {
	raw := values.Get(param)
	if raw == "" {
		return 0, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("%s is required", param))
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("%s must be a driver id", param))
	}
	return models.DriverID(n), nil
}

func parseYear(param, raw string) (models.Year, error) {
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("%s must be an integer", param))
	}
	return models.Year(n), nil
}
