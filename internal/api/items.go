package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/torba/internal/auth"
	"github.com/erazemk/torba/internal/store"
)

// ItemsHandler handles checklist item endpoints.
type ItemsHandler struct {
	DB *sqlx.DB
}

// itemFields decodes the writable item fields from a request body.
func itemFields(obj jsonObject) (store.ItemFields, error) {
	var f store.ItemFields
	var err error
	if f.Name, err = decodeField[string](obj, "name", "a string"); err != nil {
		return f, err
	}
	// Numeric strings such as "10" decode too.
	if f.ExpectedQty, err = decodeField[json.Number](obj, "expected_qty", "an integer"); err != nil {
		return f, err
	}
	if f.TrackExpiry, err = decodeField[bool](obj, "track_expiry", "a boolean"); err != nil {
		return f, err
	}
	if f.ExpiryDate, err = decodeField[string](obj, "expiry_date", "in YYYY-MM-DD format"); err != nil {
		return f, err
	}
	if f.TestBatteries, err = decodeField[bool](obj, "test_batteries", "a boolean"); err != nil {
		return f, err
	}
	return f, nil
}

// List handles GET /api/bags/{bag_id}/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
	bagID, err := pathID(r, "bag_id")
	if err != nil {
		handleError(w, r, err, "invalid request")
		return
	}

	items, err := store.ListItems(r.Context(), h.DB, bagID)
	if err != nil {
		handleError(w, r, err, "failed to list items")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"items": items})
}

// Create handles POST /api/bags/{bag_id}/items. The bag always comes from the
// path.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	bagID, err := pathID(r, "bag_id")
	if err != nil {
		handleError(w, r, err, "invalid request")
		return
	}

	obj, err := readObject(r)
	if err != nil {
		handleError(w, r, err, "invalid request body")
		return
	}
	delete(obj, "bag_id")

	f, err := itemFields(obj)
	if err != nil {
		handleError(w, r, err, "invalid request body")
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, bagID, f)
	if err != nil {
		handleError(w, r, err, "failed to create item")
		return
	}

	slog.Info("item created", "user", id.Username, "item", item.ID, "bag", bagID)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
	itemID, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err, "invalid request")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, itemID)
	if err != nil {
		handleError(w, r, err, "failed to get item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PATCH /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	itemID, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err, "invalid request")
		return
	}

	obj, err := readObject(r)
	if err != nil {
		handleError(w, r, err, "invalid request body")
		return
	}
	if obj.has("bag_id") {
		invalidInput(w, "bag_id is immutable and cannot be changed")
		return
	}

	f, err := itemFields(obj)
	if err != nil {
		handleError(w, r, err, "invalid request body")
		return
	}

	item, err := store.UpdateItem(r.Context(), h.DB, itemID, f)
	if err != nil {
		handleError(w, r, err, "failed to update item")
		return
	}

	slog.Info("item updated", "user", id.Username, "item", item.ID)
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	itemID, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err, "invalid request")
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, itemID); err != nil {
		handleError(w, r, err, "failed to delete item")
		return
	}

	slog.Info("item deleted", "user", id.Username, "item", itemID)
	noContent(w)
}
