package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/inventory/internal/config"
	"github.com/Skotchmaster/inventory/internal/migrate"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Create the schema and seed the default admin, then exit",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, rt, err := setup(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer rt.close()

			if err := runMigrations(ctx, rt); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func migrateOptions(cfg config.Config) migrate.Options {
	return migrate.Options{
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
	}
}
