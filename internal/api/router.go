package api

import (
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/torba/internal/auth"
)

// Service identifies this server in the health response.
const Service = "torba"

// Version is reported by the health endpoint. Set at build time.
var Version = "0.1.0"

// NewRouter creates the HTTP handler with all endpoints registered. Request
// metrics are registered with reg and exposed on /metrics.
func NewRouter(db *sqlx.DB, issuer *auth.Issuer, reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()

	authHandler := NewAuthHandler(db, issuer)
	sitesHandler := &SitesHandler{DB: db}
	bagsHandler := &BagsHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	sessionsHandler := &SessionsHandler{DB: db}
	qrHandler := &QRHandler{DB: db}

	authMW := AuthMiddleware(issuer)

	// Public.
	mux.HandleFunc("GET /health", health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/qr/{token}", qrHandler.Lookup)
	mux.HandleFunc("POST /api/qr/{token}/sessions", sessionsHandler.Submit)

	mux.Handle("GET /api/auth/me", authMW(authHandler.Me))

	// Sites.
	mux.Handle("GET /api/sites", authMW(sitesHandler.List))
	mux.Handle("POST /api/sites", authMW(sitesHandler.Create))
	mux.Handle("GET /api/sites/{id}", authMW(sitesHandler.Get))
	mux.Handle("PATCH /api/sites/{id}", authMW(sitesHandler.Update))
	mux.Handle("DELETE /api/sites/{id}", authMW(sitesHandler.Delete))

	// Bags.
	mux.Handle("GET /api/sites/{site_id}/bags", authMW(bagsHandler.List))
	mux.Handle("POST /api/sites/{site_id}/bags", authMW(bagsHandler.Create))
	mux.Handle("GET /api/bags/{id}", authMW(bagsHandler.Get))
	mux.Handle("PATCH /api/bags/{id}", authMW(bagsHandler.Update))
	mux.Handle("DELETE /api/bags/{id}", authMW(bagsHandler.Delete))

	// Checklist items.
	mux.Handle("GET /api/bags/{bag_id}/items", authMW(itemsHandler.List))
	mux.Handle("POST /api/bags/{bag_id}/items", authMW(itemsHandler.Create))
	mux.Handle("GET /api/items/{id}", authMW(itemsHandler.Get))
	mux.Handle("PATCH /api/items/{id}", authMW(itemsHandler.Update))
	mux.Handle("DELETE /api/items/{id}", authMW(itemsHandler.Delete))

	// Inventory checks.
	mux.Handle("GET /api/bags/{bag_id}/sessions", authMW(sessionsHandler.List))
	mux.Handle("DELETE /api/sessions/{id}", authMW(sessionsHandler.Delete))

	return newMetrics(reg).middleware(mux)
}

// health handles GET /health.
func health(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": Service,
		"version": Version,
	})
}
