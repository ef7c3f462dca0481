package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "evmap/internal/errors"
	"evmap/internal/exporter"
	"evmap/internal/infrastructure"
	"evmap/pkg/contracts/domain"
)

type contextKey string

const sourceKey contextKey = "source"

// DataHandler handles data-related HTTP requests with RFC 7807 compliance
type DataHandler struct {
	service      DataServiceInterface
	exporter     *exporter.Exporter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a new data handler with RFC 7807 error handling
func NewDataHandler(service DataServiceInterface, exp *exporter.Exporter, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		exporter:     exp,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// RegisterRoutes adds the data routes to r, normally the /api router
func (h *DataHandler) RegisterRoutes(r chi.Router) {
	r.Get("/names", h.GetNames)
	r.Get("/diagnostics", h.GetDiagnostics)

	r.Route("/sources/{source}", func(r chi.Router) {
		r.Use(h.SourceCtx)
		r.Get("/regions", h.GetRegions)
		r.Get("/years", h.GetYears)
		r.Get("/value", h.GetValue)
		r.Get("/aggregate", h.GetAggregate)
		r.Get("/cumulative", h.GetCumulative)
		r.Get("/snapshot", h.GetSnapshot)
		r.Get("/export", h.Export)
	})
}

// SourceCtx middleware validates the source parameter and loads it into the context
func (h *DataHandler) SourceCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		source, err := domain.ParseSource(chi.URLParam(r, "source"))
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.NotFoundError(fmt.Sprintf("source %q", chi.URLParam(r, "source"))))
			return
		}
		ctx := context.WithValue(r.Context(), sourceKey, source)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sourceFrom(r *http.Request) domain.Source {
	source, _ := r.Context().Value(sourceKey).(domain.Source)
	return source
}

// GetNames handles GET /api/names
func (h *DataHandler) GetNames(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"names": h.service.Names(r.Context()),
	})
}

// GetDiagnostics handles GET /api/diagnostics
func (h *DataHandler) GetDiagnostics(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Diagnostics(r.Context()))
}

// GetRegions handles GET /api/sources/{source}/regions
func (h *DataHandler) GetRegions(w http.ResponseWriter, r *http.Request) {
	source := sourceFrom(r)
	regions, err := h.service.Regions(r.Context(), source)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"source":  source,
		"regions": regions,
	})
}

// GetYears handles GET /api/sources/{source}/years
func (h *DataHandler) GetYears(w http.ResponseWriter, r *http.Request) {
	source := sourceFrom(r)
	years, err := h.service.Years(r.Context(), source)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"source": source,
		"years":  years,
	})
}

// GetValue handles GET /api/sources/{source}/value?region=&year=
func (h *DataHandler) GetValue(w http.ResponseWriter, r *http.Request) {
	source := sourceFrom(r)
	region := strings.TrimSpace(r.URL.Query().Get("region"))
	if region == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("region", "region is required"))
		return
	}
	year, err := requiredInt(r, "year")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	value, err := h.service.Value(r.Context(), source, region, year)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"source": source,
		"region": domain.NormalizeRegionCode(region),
		"year":   year,
		"value":  value,
	})
}

// GetAggregate handles GET /api/sources/{source}/aggregate?regions=&from=&to=&reducer=
func (h *DataHandler) GetAggregate(w http.ResponseWriter, r *http.Request) {
	source := sourceFrom(r)
	from, to, err := yearBounds(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	reducer, err := domain.ParseReducer(r.URL.Query().Get("reducer"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("reducer", err.Error()))
		return
	}

	query := domain.AggregateQuery{
		Source:    source,
		Regions:   regionList(r),
		YearStart: from,
		YearEnd:   to,
		Reducer:   reducer,
	}
	values, err := h.service.Aggregate(r.Context(), query)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "aggregate",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("source", string(source)),
		slog.Int("regions", len(values)))

	render.JSON(w, r, map[string]interface{}{
		"source":  source,
		"from":    from,
		"to":      to,
		"reducer": reducer,
		"values":  values,
	})
}

// GetCumulative handles GET /api/sources/{source}/cumulative?regions=&year=
func (h *DataHandler) GetCumulative(w http.ResponseWriter, r *http.Request) {
	source := sourceFrom(r)
	year, err := requiredInt(r, "year")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	values, err := h.service.Cumulative(r.Context(), source, regionList(r), year)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"source": source,
		"year":   year,
		"values": values,
	})
}

// GetSnapshot handles GET /api/sources/{source}/snapshot?regions=&year=&mode=
func (h *DataHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	source := sourceFrom(r)
	year, err := requiredInt(r, "year")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	mode, err := domain.ParseValueMode(r.URL.Query().Get("mode"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("mode", err.Error()))
		return
	}

	values, err := h.service.Snapshot(r.Context(), source, regionList(r), year, mode)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"source": source,
		"year":   year,
		"mode":   mode,
		"values": values,
	})
}

// Export handles GET /api/sources/{source}/export?format=&from=&to=&reducer=.
// Without bounds the whole table is dumped; with bounds every region is aggregated.
func (h *DataHandler) Export(w http.ResponseWriter, r *http.Request) {
	source := sourceFrom(r)
	q := r.URL.Query()

	format, err := exporter.ParseFormat(q.Get("format"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
		return
	}

	filename := string(source)
	var write func(http.ResponseWriter) error

	if q.Get("from") == "" && q.Get("to") == "" {
		table, err := h.service.Table(source)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		write = func(w http.ResponseWriter) error {
			return h.exporter.WriteTable(w, format, table)
		}
	} else {
		from, to, err := yearBounds(r)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		reducer, err := domain.ParseReducer(q.Get("reducer"))
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("reducer", err.Error()))
			return
		}
		rows, err := h.service.Ranked(r.Context(), source, from, to, reducer)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		filename = fmt.Sprintf("%s_%d-%d_%s", source, from, to, reducer)
		write = func(w http.ResponseWriter) error {
			return h.exporter.WriteAggregate(w, format, rows)
		}
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+format.Extension()))
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))

	if err := write(w); err != nil {
		// Headers are already sent; the client sees a truncated file.
		infrastructure.WithError(infrastructure.WithSource(h.logger, string(source)), err).
			ErrorContext(r.Context(), "export failed",
				slog.String("request_id", middleware.GetReqID(r.Context())))
	}
}

// regionList reads the comma separated regions parameter
func regionList(r *http.Request) []string {
	var regions []string
	for _, raw := range r.URL.Query()["regions"] {
		for _, region := range strings.Split(raw, ",") {
			if region = strings.TrimSpace(region); region != "" {
				regions = append(regions, region)
			}
		}
	}
	return regions
}

func requiredInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, apierrors.ErrValidation(name, name+" is required")
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierrors.ErrValidation(name, fmt.Sprintf("%s must be an integer, got %q", name, raw))
	}
	return v, nil
}

// yearBounds reads the inclusive from/to range. Reversed bounds are a client error.
func yearBounds(r *http.Request) (int, int, error) {
	from, err := requiredInt(r, "from")
	if err != nil {
		return 0, 0, err
	}
	to, err := requiredInt(r, "to")
	if err != nil {
		return 0, 0, err
	}
	if from > to {
		return 0, 0, apierrors.ErrValidation("from", fmt.Sprintf("from (%d) is after to (%d)", from, to))
	}
	return from, to, nil
}
