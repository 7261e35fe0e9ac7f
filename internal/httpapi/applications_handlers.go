package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"tailor-engine/internal/events"
	"tailor-engine/internal/store"
)

type ApplicationsHandler struct {
	DB  *sql.DB
	Hub *events.Hub
}

func (h ApplicationsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	window := q.Get("window")
	if window == "" {
		window = "all"
	}

	apps, err := store.ListApplications(r.Context(), h.DB, store.ListOpts{Window: window, Limit: limit})
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeJSON(w, apps)
}

// DeleteByPath handles DELETE /applications/{id}.
func (h ApplicationsHandler) DeleteByPath(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/applications/"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, http.StatusBadRequest, "invalid_input", "invalid id")
		return
	}

	deleted, err := store.DeleteApplication(r.Context(), h.DB, id)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	if !deleted {
		WriteError(w, r, http.StatusNotFound, "not_found", "no such application")
		return
	}

	h.Hub.Publish(events.MakeEvent(RequestIDFrom(r.Context()), events.TypeApplicationDeleted, 1, map[string]any{"id": id}))
	writeJSON(w, map[string]any{"ok": true, "id": id})
}
