package api

import (
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/torba/internal/auth"
	"github.com/erazemk/torba/internal/store"
)

// SitesHandler handles site CRUD endpoints.
type SitesHandler struct {
	DB *sqlx.DB
}

const recipientsType = "a list of strings"

// siteFields decodes the writable site fields from a request body.
func siteFields(obj jsonObject) (store.SiteFields, error) {
	var f store.SiteFields
	var err error
	if f.Name, err = decodeField[string](obj, "name", "a string"); err != nil {
		return f, err
	}
	if f.AlertRecipients, err = decodeField[[]string](obj, "alert_recipients", recipientsType); err != nil {
		return f, err
	}
	return f, nil
}

// List handles GET /api/sites.
func (h *SitesHandler) List(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
	sites, err := store.ListSites(r.Context(), h.DB)
	if err != nil {
		handleError(w, r, err, "failed to list sites")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"sites": sites})
}

// Create handles POST /api/sites.
func (h *SitesHandler) Create(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	obj, err := readObject(r)
	if err != nil {
		handleError(w, r, err, "invalid request body")
		return
	}

	f, err := siteFields(obj)
	if err != nil {
		handleError(w, r, err, "invalid request body")
		return
	}
	if !f.Name.Present() {
		invalidInput(w, "name is required")
		return
	}
	if !f.AlertRecipients.Present() {
		invalidInput(w, "alert_recipients is required")
		return
	}

	site, err := store.CreateSite(r.Context(), h.DB, f.Name.Value, f.AlertRecipients.Value)
	if err != nil {
		handleError(w, r, err, "failed to create site")
		return
	}

	slog.Info("site created", "user", id.Username, "site", site.ID, "name", site.Name)
	jsonResponse(w, http.StatusCreated, site)
}

// Get handles GET /api/sites/{id}.
func (h *SitesHandler) Get(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
	siteID, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err, "invalid request")
		return
	}

	site, err := store.GetSite(r.Context(), h.DB, siteID)
	if err != nil {
		handleError(w, r, err, "failed to get site")
		return
	}
	jsonResponse(w, http.StatusOK, site)
}

// Update handles PATCH /api/sites/{id}.
func (h *SitesHandler) Update(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	siteID, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err, "invalid request")
		return
	}

	obj, err := readObject(r)
	if err != nil {
		handleError(w, r, err, "invalid request body")
		return
	}

	f, err := siteFields(obj)
	if err != nil {
		handleError(w, r, err, "invalid request body")
		return
	}

	site, err := store.UpdateSite(r.Context(), h.DB, siteID, f)
	if err != nil {
		handleError(w, r, err, "failed to update site")
		return
	}

	slog.Info("site updated", "user", id.Username, "site", site.ID)
	jsonResponse(w, http.StatusOK, site)
}

// Delete handles DELETE /api/sites/{id}.
func (h *SitesHandler) Delete(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	siteID, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err, "invalid request")
		return
	}

	if err := store.DeleteSite(r.Context(), h.DB, siteID); err != nil {
		handleError(w, r, err, "failed to delete site")
		return
	}

	slog.Info("site deleted", "user", id.Username, "site", siteID)
	noContent(w)
}
