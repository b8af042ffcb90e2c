// Package ops exposes a small HTTP surface for health checks and runtime
// status, separate from any customer-facing traffic.
package ops

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"leadrunner/platform/config"
	"leadrunner/platform/logger"
)

// Snapshot is a point-in-time view of the bot's processing counters.
type Snapshot struct {
	StartedAt         time.Time     `json:"startedAt"`
	Cycles            int           `json:"cycles"`
	LeadsProcessed    int           `json:"leadsProcessed"`
	MessagesProcessed int           `json:"messagesProcessed"`
	Failures          int           `json:"failures"`
	LastCycleAt       time.Time     `json:"lastCycleAt"`
	LastCycleDuration time.Duration `json:"lastCycleDurationNs"`
}

// StatusProvider supplies the current snapshot.
type StatusProvider interface {
	Snapshot() Snapshot
}

// Server serves /healthz and /status.
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// NewServer builds the ops HTTP server.
func NewServer(cfg config.OpsConfig, provider StatusProvider, log *logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, provider.Snapshot())
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.GetOpsAddr(),
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}()

	s.log.Info("ops server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.log.Error("ops server stopped", "error", err)
	}
}
