package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// NewMux wires every route; Handler adds the middleware chain.
func NewMux(d Deps, version string) *http.ServeMux {
	mux := http.NewServeMux()

	ph := ParseHandler{Runner: d.Runner, BatchStatus: d.BatchStatus, Log: d.Log}
	mux.HandleFunc("/parse", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ph.Parse,
	}))
	mux.HandleFunc("/batch", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ph.Batch,
	}))
	mux.HandleFunc("/batch/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ph.Status,
	}))

	if d.DB != nil {
		ah := ApplicationsHandler{DB: d.DB, Hub: d.Hub}
		mux.HandleFunc("/applications", methodMux(map[string]http.HandlerFunc{
			http.MethodGet: ah.List,
		}))
		mux.HandleFunc("/applications/", methodMux(map[string]http.HandlerFunc{
			http.MethodDelete: ah.DeleteByPath,
		}))

		dh := DBHandler{DB: d.DB}
		mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
			http.MethodPost: dh.Checkpoint,
		}))
	}

	ch := ConfigHandler{CfgVal: d.CfgVal, UserCfgPath: d.UserCfgPath, LoadCfg: d.LoadCfg}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	hh := HealthHandler{Version: version}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	return mux
}

func Handler(d Deps, version string) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return Chain(NewMux(d, version), RequestID, Recover(log), AccessLog(log), Cors)
}
