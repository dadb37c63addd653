package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"survivald/internal/manager"
	"survivald/internal/schema"
	"survivald/pkg/types"
)

// RootMessage is returned by GET /.
const RootMessage = "Titanic Survival Prediction API is running."

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Ready() bool
	CheckReady() error
	Status() types.StatusResponse
	Labels() schema.LabelTable
	PredictSurvival(ctx context.Context, payload []byte) (types.PredictResponse, error)
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, access log, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			ExposedHeaders: []string{"Retry-After", "X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, manager.CategoryInternal, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, manager.CategoryInternal, "method not allowed")
	})

	r.Get("/", handleRoot)
	r.Post("/predict", handlePredict(svc))
	r.Get("/schema", handleSchema(svc))
	r.Get("/status", handleStatus(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		body := "loading"
		if svc.Status().State == string(manager.StateFailed) {
			body = "failed"
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(body))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// handleRoot reports that the API is up.
//
//	@Summary	Service banner
//	@Tags		meta
//	@Produce	json
//	@Success	200	{object}	types.MessageResponse
//	@Router		/ [get]
func handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: RootMessage})
}

// handlePredict scores one passenger record.
//
//	@Summary	Predict survival for one passenger
//	@Tags		predict
//	@Accept		json
//	@Produce	json
//	@Param		passenger	body		types.Passenger	true	"Passenger record"
//	@Success	200			{object}	types.PredictResponse
//	@Failure	413			{object}	types.ErrorResponse
//	@Failure	415			{object}	types.ErrorResponse
//	@Failure	422			{object}	types.ErrorResponse
//	@Failure	500			{object}	types.ErrorResponse
//	@Failure	503			{object}	types.ErrorResponse
//	@Router		/predict [post]
func handlePredict(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Readiness comes first: while not ready every request gets 503,
		// whatever its headers or body.
		if err := svc.CheckReady(); err != nil {
			writeServiceError(w, err)
			return
		}
		// A missing Content-Type is read as JSON, as curl -d sends none.
		ct := r.Header.Get("Content-Type")
		if ct != "" && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			incRejected("content_type")
			writeJSONError(w, http.StatusUnsupportedMediaType, manager.CategoryValidation, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		payload, err := io.ReadAll(r.Body)
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				incRejected("body_too_large")
				writeJSONError(w, http.StatusRequestEntityTooLarge, manager.CategoryValidation, "request body too large")
				return
			}
			incRejected("read_error")
			writeJSONError(w, http.StatusBadRequest, manager.CategoryValidation, "failed to read request body")
			return
		}

		resp, err := svc.PredictSurvival(r.Context(), payload)
		if err != nil {
			status := writeServiceError(w, err)
			zerolog.Ctx(r.Context()).Debug().Err(err).Int("status", status).Msg("predict rejected")
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// handleSchema describes the accepted record.
//
//	@Summary	Request record schema
//	@Tags		meta
//	@Produce	json
//	@Success	200	{object}	types.SchemaResponse
//	@Router		/schema [get]
func handleSchema(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.SchemaResponse{
			Fields:  schema.Specs(),
			Example: schema.Example,
			Labels:  svc.Labels(),
		})
	}
}

// handleStatus reports readiness, model info and counters.
//
//	@Summary	Service status
//	@Tags		meta
//	@Produce	json
//	@Success	200	{object}	types.StatusResponse
//	@Router		/status [get]
func handleStatus(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Error().Err(err).Msg("failed to encode response")
	}
}
