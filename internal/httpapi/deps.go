package httpapi

import (
	"database/sql"
	"sync/atomic"

	"go.uber.org/zap"

	"tailor-engine/internal/config"
	"tailor-engine/internal/events"
	"tailor-engine/internal/pipeline"
)

type Deps struct {
	DB  *sql.DB
	Hub *events.Hub
	Log *zap.Logger

	Runner *pipeline.Runner

	// Atomic stores
	CfgVal      *atomic.Value // config.Config
	BatchStatus *atomic.Value // httpapi.BatchStatus

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
