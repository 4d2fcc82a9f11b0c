package api

import (
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/torba/internal/store"
)

// QRHandler serves the anonymous token lookup.
type QRHandler struct {
	DB *sqlx.DB
}

// Lookup handles GET /api/qr/{token}.
func (h *QRHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	lookup, err := store.LookupByToken(r.Context(), h.DB, r.PathValue("token"))
	if err != nil {
		handleError(w, r, err, "failed to look up bag")
		return
	}
	jsonResponse(w, http.StatusOK, lookup)
}
