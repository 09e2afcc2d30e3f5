package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/inventory/internal/repo"
	"github.com/Skotchmaster/inventory/internal/service"
)

func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:          "export",
		Short:        "Write every product to a CSV file",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, rt, err := setup(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer rt.close()

			path := out
			if path == "" {
				path = rt.cfg.ExportPath
			}

			svc := &service.InventoryService{Repo: &repo.GormRepo{DB: rt.db}}
			res, err := svc.ExportTo(ctx, path)
			if err != nil {
				rt.log.Error("export_error", "path", path, "error", err)
				return fmt.Errorf("export: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "exported %d product(s) to %s\n", res.Rows, res.Path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default EXPORT_PATH)")

	return cmd
}
