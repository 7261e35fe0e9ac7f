package httpapi

import (
	"database/sql"
	"net"
	"net/http"

	"tailor-engine/internal/store"
)

type DBHandler struct {
	DB *sql.DB
}

// Checkpoint folds the WAL into the tracker file. Loopback callers only.
func (h DBHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
		WriteError(w, r, http.StatusForbidden, "forbidden", "forbidden")
		return
	}

	if err := store.Checkpoint(r.Context(), h.DB); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
