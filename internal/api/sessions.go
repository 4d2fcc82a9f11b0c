package api

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/torba/internal/auth"
	"github.com/erazemk/torba/internal/model"
	"github.com/erazemk/torba/internal/store"
)

// SessionsHandler handles inventory check endpoints.
type SessionsHandler struct {
	DB *sqlx.DB
}

type submitCheckRequest struct {
	Nickname   *string         `json:"nickname"`
	GeoCity    *string         `json:"geo_city"`
	GeoCountry *string         `json:"geo_country"`
	Results    []resultRequest `json:"results"`
}

type resultRequest struct {
	BagItemID   *int64             `json:"bag_item_id"`
	Status      model.ResultStatus `json:"status"`
	ObservedQty *int64             `json:"observed_qty"`
	Notes       *string            `json:"notes"`
}

func (req *submitCheckRequest) input(ip string) store.SessionInput {
	in := store.SessionInput{
		Nickname:   req.Nickname,
		GeoCity:    req.GeoCity,
		GeoCountry: req.GeoCountry,
		Results:    make([]store.ResultInput, len(req.Results)),
	}
	if ip != "" {
		in.IPAddress = &ip
	}
	for i, res := range req.Results {
		in.Results[i] = store.ResultInput{
			BagItemID:   res.BagItemID,
			Status:      res.Status,
			ObservedQty: res.ObservedQty,
			Notes:       res.Notes,
		}
	}
	return in
}

// clientIP returns the host part of the request's remote address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Submit handles POST /api/qr/{token}/sessions. It needs no credentials; the
// token is the capability.
func (h *SessionsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitCheckRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err, "invalid request body")
		return
	}

	session, err := store.SubmitCheck(r.Context(), h.DB, r.PathValue("token"), req.input(clientIP(r)))
	if err != nil {
		handleError(w, r, err, "failed to record inventory check")
		return
	}

	slog.Info("inventory check recorded", "bag", session.BagID, "session", session.ID, "results", len(session.Results))
	jsonResponse(w, http.StatusCreated, session)
}

// List handles GET /api/bags/{bag_id}/sessions.
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
	bagID, err := pathID(r, "bag_id")
	if err != nil {
		handleError(w, r, err, "invalid request")
		return
	}

	sessions, err := store.ListSessions(r.Context(), h.DB, bagID)
	if err != nil {
		handleError(w, r, err, "failed to list sessions")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// Delete handles DELETE /api/sessions/{id}.
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err, "invalid request")
		return
	}

	if err := store.DeleteSession(r.Context(), h.DB, sessionID); err != nil {
		handleError(w, r, err, "failed to delete session")
		return
	}

	slog.Info("session deleted", "user", id.Username, "session", sessionID)
	noContent(w)
}
