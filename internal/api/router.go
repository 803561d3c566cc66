package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/kcpatrick93/earning-scalp-bot/internal/api/handlers"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
)

// NewRouter creates and configures the HTTP router. stream may be nil.
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(reportHandler *handlers.ReportHandler, stream http.Handler, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API
	api := r.PathPrefix("/api").Subrouter()

	// Report endpoints
	api.HandleFunc("/reports/latest", reportHandler.GetLatest).Methods("GET")
	api.HandleFunc("/reports", reportHandler.GetByDate).Methods("GET")

	// Scan endpoints
	api.HandleFunc("/scan", reportHandler.TriggerScan).Methods("POST")
	api.HandleFunc("/score", reportHandler.Score).Methods("POST")

	// Websocket stream
	if stream != nil {
		r.Handle("/ws/reports", stream).Methods("GET")
	}

	// Apply middleware
	r.Use(recoveryMiddleware(log))
	r.Use(loggingMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "earning-scalp-api",
	})
}

// statusRecorder captures the status code for request logs
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the hijacker for websocket upgrades
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// websocket은 Hijacker가 필요하므로 감싸지 않음
			if r.Header.Get("Upgrade") != "" {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
