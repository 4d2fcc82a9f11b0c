package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/erazemk/torba/internal/auth"
	"github.com/erazemk/torba/internal/errs"
)

// authedHandler is a handler that runs for an authenticated admin.
type authedHandler func(w http.ResponseWriter, r *http.Request, id auth.Identity)

// AuthMiddleware validates the bearer token and passes the admin's identity
// to the wrapped handler.
func AuthMiddleware(issuer *auth.Issuer) func(authedHandler) http.Handler {
	return func(next authedHandler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				jsonError(w, http.StatusUnauthorized, errs.EUnauthorized, "authorization header missing")
				return
			}

			scheme, tokenStr, ok := strings.Cut(header, " ")
			tokenStr = strings.TrimSpace(tokenStr)
			if !ok || !strings.EqualFold(scheme, "Bearer") || tokenStr == "" || strings.Contains(tokenStr, " ") {
				jsonError(w, http.StatusUnauthorized, errs.EUnauthorized,
					"invalid authorization header format, expected: Bearer <token>")
				return
			}

			claims, err := issuer.Verify(tokenStr)
			if errors.Is(err, auth.ErrExpired) {
				jsonError(w, http.StatusUnauthorized, errs.EUnauthorized, "token has expired")
				return
			}
			if err != nil {
				jsonError(w, http.StatusUnauthorized, errs.EUnauthorized, "invalid token")
				return
			}

			next(w, r, auth.Identity{Username: claims.Username})
		})
	}
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func recorder(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

// LoggingMiddleware logs HTTP requests with method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := recorder(w)
		next.ServeHTTP(rec, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.RequestURI(),
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

// metrics holds the HTTP request collectors.
type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	labels := []string{"method", "route", "status"}
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "torba",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Number of HTTP requests received.",
		}, labels),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "torba",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Time taken to respond to HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, labels),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// middleware records a request count and duration per matched route. It must
// wrap the ServeMux directly so the matched pattern is visible after serving.
func (m *metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := recorder(w)
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		label := prometheus.Labels{
			"method": r.Method,
			"route":  route,
			"status": strconv.Itoa(rec.status),
		}
		m.requests.With(label).Inc()
		m.duration.With(label).Observe(time.Since(start).Seconds())
	})
}
