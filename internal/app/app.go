package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/colinc-deepflow/deepflow-control-center/internal/broadcast"
	"github.com/colinc-deepflow/deepflow-control-center/internal/config"
	"github.com/colinc-deepflow/deepflow-control-center/internal/infrastructure/llm"
	"github.com/colinc-deepflow/deepflow-control-center/internal/infrastructure/notify"
	"github.com/colinc-deepflow/deepflow-control-center/internal/infrastructure/storage"
	"github.com/colinc-deepflow/deepflow-control-center/internal/infrastructure/ws"
	"github.com/colinc-deepflow/deepflow-control-center/internal/logging"
	"github.com/colinc-deepflow/deepflow-control-center/internal/ports"
	"github.com/colinc-deepflow/deepflow-control-center/internal/server"
	"github.com/colinc-deepflow/deepflow-control-center/internal/stage"
	"github.com/colinc-deepflow/deepflow-control-center/internal/usecase"
)

// Application wires configuration to adapters, the orchestrator, and the
// HTTP surface.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	db      *sql.DB
	handler http.Handler
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	db, err := storage.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	submissions := storage.NewSubmissionStore(db)
	outputs := storage.NewStageOutputStore(db)

	generator := llm.NewClient(cfg.LLM)
	registry := stage.NewDefaultRegistry(generator, cfg.LLM.Models)

	broadcaster := broadcast.New(baseLogger.With("component", "broadcast"))

	orchestrator := usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Registry:    registry,
		Submissions: submissions,
		Outputs:     outputs,
		Publisher:   broadcaster,
		Logger:      baseLogger.With("component", "pipeline"),
	})

	var notifier ports.Notifier
	if cfg.Notifications.WhatsApp.AccountSID != "" {
		notifier = notify.NewWhatsAppNotifier(cfg.Notifications.WhatsApp, cfg.Dashboard.BaseURL)
	}

	handler := server.New(server.Deps{
		Submissions:  submissions,
		Outputs:      outputs,
		Pipeline:     orchestrator,
		Notifier:     notifier,
		WSHandler:    ws.NewHandler(broadcaster, baseLogger.With("component", "ws")),
		DashboardURL: cfg.Dashboard.BaseURL,
		Logger:       baseLogger.With("component", "server"),
	})

	return &Application{
		cfg:     cfg,
		logger:  baseLogger,
		db:      db,
		handler: handler,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	}

	if err := a.db.Close(); err != nil {
		a.logger.Error("closing database failed", "error", err)
	}
	return nil
}
