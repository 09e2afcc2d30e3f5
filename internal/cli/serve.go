package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/inventory/internal/es"
	"github.com/Skotchmaster/inventory/internal/handlers"
	"github.com/Skotchmaster/inventory/internal/middleware/auth"
	"github.com/Skotchmaster/inventory/internal/migrate"
	"github.com/Skotchmaster/inventory/internal/mykafka"
	"github.com/Skotchmaster/inventory/internal/repo"
	"github.com/Skotchmaster/inventory/internal/service"
	httpserver "github.com/Skotchmaster/inventory/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

type publisher interface {
	service.EventPublisher
	Close() error
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "serve",
		Short:        "Run migrations and start the web server",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts)
		},
	}
}

func runServe(ctx context.Context, rootOpts *RootOptions) error {
	ctx, rt, err := setup(ctx, rootOpts)
	if err != nil {
		return err
	}
	defer rt.close()
	cfg, log := rt.cfg, rt.log

	if err := runMigrations(ctx, rt); err != nil {
		return err
	}

	if len(cfg.SessionSecret) == 0 {
		log.Warn("session_secret_missing", "reason", "SESSION_SECRET is empty, sessions will not survive a restart")
		if cfg.SessionSecret, err = randomSecret(); err != nil {
			return err
		}
	}

	var pub publisher = mykafka.Discard{}
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			return err
		}
		pub = prod
	}
	defer func() {
		if err := pub.Close(); err != nil {
			log.Error("kafka_close_error", "error", err)
		}
	}()

	r := &repo.GormRepo{DB: rt.db}
	inventory := &service.InventoryService{Repo: r, Publisher: pub, ExportPath: cfg.ExportPath}

	if cfg.ESURL != "" {
		client, err := es.NewClient(es.ClientConfig{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
		if err != nil {
			log.Warn("es_unavailable", "reason", "search mirror disabled", "error", err)
		} else {
			inventory.Index = es.NewIndexer(client, cfg.ESIndex)
		}
	}

	e, err := httpserver.New(httpserver.Options{
		Logger:        log,
		SessionSecret: cfg.SessionSecret,
		CookieSecure:  cfg.CookieSecure,
	})
	if err != nil {
		return err
	}

	httpserver.Register(e, &httpserver.Deps{
		DB:               rt.db,
		InventoryHandler: &handlers.InventoryHandler{Svc: inventory},
		AuthHandler: &handlers.AuthHandler{
			Svc: &service.AuthService{
				Repo:          r,
				Publisher:     pub,
				SessionSecret: cfg.SessionSecret,
				SessionTTL:    cfg.SessionTTL,
			},
			CookieSecure: cfg.CookieSecure,
		},
		SessionGate: &auth.SessionGate{Secret: cfg.SessionSecret, CookieSecure: cfg.CookieSecure},
		CSRF:        httpserver.CSRF(cfg.CSRFEnabled, cfg.CookieSecure),
	})

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http_server_started", "addr", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("http_server_error", "error", err)
			return err
		}
	case <-sigCtx.Done():
	}

	log.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server_shutdown_error", "error", err)
	}

	log.Info("shutdown_complete")
	return nil
}

func runMigrations(ctx context.Context, rt *runtime) error {
	return migrate.Run(ctx, rt.db, migrateOptions(rt.cfg))
}
