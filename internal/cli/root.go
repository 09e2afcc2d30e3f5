package cli

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/inventory/internal/config"
	"github.com/Skotchmaster/inventory/internal/db"
	"github.com/Skotchmaster/inventory/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Inventory tracker",
		Long:  "A small web inventory tracker: product records, dashboard metrics and CSV export behind a login.",
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override LOG_LEVEL (debug|info|warn|error)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

type runtime struct {
	cfg config.Config
	log *slog.Logger
	db  *gorm.DB
}

// setup loads configuration, builds the logger and opens the database.
// The returned context carries the logger.
func setup(ctx context.Context, opts *RootOptions) (context.Context, *runtime, error) {
	cfg := config.Load()
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	log := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	ctx = logging.IntoContext(ctx, log)

	if err := cfg.Validate(); err != nil {
		log.Error("config_error", "error", err)
		return ctx, nil, err
	}

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Error("db_open_error", "driver", cfg.DBDriver, "error", err)
		return ctx, nil, fmt.Errorf("open database: %w", err)
	}

	return ctx, &runtime{cfg: cfg, log: log, db: gdb}, nil
}

func (r *runtime) close() {
	if err := db.Close(r.db); err != nil {
		r.log.Error("db_close_error", "error", err)
	}
}

func randomSecret() ([]byte, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
