package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tailor-engine/internal/config"
	"tailor-engine/internal/httpapi"
	"tailor-engine/internal/scheduler"
	"tailor-engine/internal/store"
)

const (
	shutdownTimeout    = 5 * time.Second
	checkpointInterval = 15 * time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the parse API on loopback",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := newEngine(opts, true)
	if err != nil {
		return err
	}
	defer e.Close()

	lock, err := store.Lock(e.cfg.App.DataDir)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	var cfgVal atomic.Value
	cfgVal.Store(e.cfg)
	var batchStatus atomic.Value
	batchStatus.Store(httpapi.BatchStatus{})

	d := httpapi.Deps{
		Hub:         e.hub,
		Log:         e.log,
		Runner:      e.runner,
		CfgVal:      &cfgVal,
		BatchStatus: &batchStatus,
		UserCfgPath: e.cfgPath,
		LoadCfg: func() (config.Config, error) {
			cfg, err := config.Load(e.cfgPath)
			if err != nil {
				return cfg, err
			}
			config.OverlayEnv(&cfg)
			return cfg, nil
		},
	}
	if e.db != nil {
		d.DB = e.db.Pool
		go scheduler.Every(ctx, checkpointInterval, "wal-checkpoint", func(ctx context.Context) error {
			return store.Checkpoint(ctx, e.db.Pool)
		}, e.log)
	}

	addr := fmt.Sprintf("127.0.0.1:%d", e.cfg.App.Port)
	srv := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
	}

	mux := http.NewServeMux()
	mux.Handle("/", httpapi.Handler(d, version))
	if token := os.Getenv("TAILOR_SHUTDOWN_TOKEN"); token != "" {
		mux.HandleFunc("/shutdown", shutdownHandler(token, stop))
	}
	srv.Handler = mux

	errCh := make(chan error, 1)
	go func() {
		e.log.Info("listening", zap.String("addr", addr), zap.String("version", version))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	e.log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

// shutdownHandler lets the desktop shell stop the engine. Loopback callers
// with the shared token only.
func shutdownHandler(token string, stop context.CancelFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		got := r.Header.Get("X-Shutdown-Token")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("shutting down\n"))
		stop()
	}
}
