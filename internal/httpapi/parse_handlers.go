package httpapi

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"tailor-engine/internal/pipeline"
)

const maxBatchURLs = 100

type ParseHandler struct {
	Runner      *pipeline.Runner
	BatchStatus *atomic.Value // BatchStatus
	Log         *zap.Logger
}

// Parse handles POST /parse. With fetch set (or no text) the URL is fetched.
func (h ParseHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	req.URL = strings.TrimSpace(req.URL)

	reqID := RequestIDFrom(r.Context())
	var (
		res pipeline.Result
		err error
	)
	switch {
	case req.Fetch || (req.Text == "" && req.URL != ""):
		if req.URL == "" {
			WriteError(w, r, http.StatusBadRequest, "invalid_input", "url is required to fetch")
			return
		}
		res, err = h.Runner.Run(r.Context(), reqID, req.URL)
	default:
		res, err = h.Runner.RunText(r.Context(), reqID, req.URL, req.Text)
	}
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// Batch handles POST /batch. The run continues in the background; progress is
// at GET /batch/status and each posting is announced on /events.
func (h ParseHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	if len(req.URLs) == 0 || len(req.URLs) > maxBatchURLs {
		WriteError(w, r, http.StatusBadRequest, "invalid_input", "urls must hold 1..100 entries")
		return
	}

	st := h.BatchStatus.Load().(BatchStatus)
	if st.Running {
		WriteJSON(w, http.StatusConflict, map[string]any{"ok": false, "msg": "already running"})
		return
	}
	started := BatchStatus{
		LastRunAt: time.Now().Format(time.RFC3339),
		LastOkAt:  st.LastOkAt,
		Total:     len(req.URLs),
		Running:   true,
	}
	if !h.BatchStatus.CompareAndSwap(st, started) {
		WriteJSON(w, http.StatusConflict, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	reqID := RequestIDFrom(r.Context())
	go func() {
		items := h.Runner.RunMany(context.Background(), reqID, req.URLs, req.Concurrency)

		now := time.Now().Format(time.RFC3339)
		next := h.BatchStatus.Load().(BatchStatus)
		next.Running = false
		next.LastRunAt = now
		next.Parsed, next.Failed = 0, 0
		next.LastError = ""
		for _, it := range items {
			if it.Err != nil {
				next.Failed++
				next.LastError = it.Err.Error()
				continue
			}
			next.Parsed++
		}
		if next.Failed == 0 {
			next.LastOkAt = now
		}
		if h.Log != nil {
			h.Log.Info("batch finished", zap.Int("parsed", next.Parsed), zap.Int("failed", next.Failed))
		}
		h.BatchStatus.Store(next)
	}()

	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true, "total": len(req.URLs)})
}

func (h ParseHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.BatchStatus.Load().(BatchStatus))
}
