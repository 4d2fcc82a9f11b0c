package api

import (
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/torba/internal/auth"
	"github.com/erazemk/torba/internal/store"
)

// BagsHandler handles bag CRUD endpoints.
type BagsHandler struct {
	DB *sqlx.DB
}

// List handles GET /api/sites/{site_id}/bags.
func (h *BagsHandler) List(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
	siteID, err := pathID(r, "site_id")
	if err != nil {
		handleError(w, r, err, "invalid request")
		return
	}

	bags, err := store.ListBagsBySite(r.Context(), h.DB, siteID)
	if err != nil {
		handleError(w, r, err, "failed to list bags")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"bags": bags})
}

// Create handles POST /api/sites/{site_id}/bags.
func (h *BagsHandler) Create(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	siteID, err := pathID(r, "site_id")
	if err != nil {
		handleError(w, r, err, "invalid request")
		return
	}

	obj, err := readObject(r)
	if err != nil {
		handleError(w, r, err, "invalid request body")
		return
	}
	if obj.has("qr_token") {
		invalidInput(w, "qr_token cannot be provided by client")
		return
	}

	name, err := decodeField[string](obj, "name", "a string")
	if err != nil {
		handleError(w, r, err, "invalid request body")
		return
	}
	if !name.Present() {
		invalidInput(w, "name is required")
		return
	}

	bag, err := store.CreateBag(r.Context(), h.DB, siteID, name.Value)
	if err != nil {
		handleError(w, r, err, "failed to create bag")
		return
	}

	slog.Info("bag created", "user", id.Username, "bag", bag.ID, "site", siteID)
	jsonResponse(w, http.StatusCreated, bag)
}

// Get handles GET /api/bags/{id}.
func (h *BagsHandler) Get(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
	bagID, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err, "invalid request")
		return
	}

	bag, err := store.GetBag(r.Context(), h.DB, bagID)
	if err != nil {
		handleError(w, r, err, "failed to get bag")
		return
	}
	jsonResponse(w, http.StatusOK, bag)
}

// Update handles PATCH /api/bags/{id}. The token and owning site are
// immutable.
func (h *BagsHandler) Update(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	bagID, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err, "invalid request")
		return
	}

	obj, err := readObject(r)
	if err != nil {
		handleError(w, r, err, "invalid request body")
		return
	}
	for _, key := range []string{"qr_token", "site_id"} {
		if obj.has(key) {
			invalidInput(w, "%s is immutable and cannot be updated", key)
			return
		}
	}

	var f store.BagFields
	if f.Name, err = decodeField[string](obj, "name", "a string"); err != nil {
		handleError(w, r, err, "invalid request body")
		return
	}
	if f.Active, err = decodeField[bool](obj, "active", "a boolean"); err != nil {
		handleError(w, r, err, "invalid request body")
		return
	}

	bag, err := store.UpdateBag(r.Context(), h.DB, bagID, f)
	if err != nil {
		handleError(w, r, err, "failed to update bag")
		return
	}

	slog.Info("bag updated", "user", id.Username, "bag", bag.ID, "active", bag.Active)
	jsonResponse(w, http.StatusOK, bag)
}

// Delete handles DELETE /api/bags/{id}.
func (h *BagsHandler) Delete(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	bagID, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err, "invalid request")
		return
	}

	if err := store.DeleteBag(r.Context(), h.DB, bagID); err != nil {
		handleError(w, r, err, "failed to delete bag")
		return
	}

	slog.Info("bag deleted", "user", id.Username, "bag", bagID)
	noContent(w)
}
