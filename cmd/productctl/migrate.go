package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abgdnv/productcrud/internal/config"
	"github.com/abgdnv/productcrud/internal/store"
	pkgconfig "github.com/abgdnv/productcrud/pkg/config"
	"github.com/abgdnv/productcrud/pkg/config/configloader"
)

func newMigrateCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the products schema to the sql store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configloader.Load[*config.ToolConfig](serviceName, *configFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if cfg.Storage.Driver != pkgconfig.DriverSQL {
				return fmt.Errorf("migrate requires the %s storage driver, configured: %s", pkgconfig.DriverSQL, cfg.Storage.Driver)
			}
			if err := store.Migrate(cmd.Context(), cfg.Storage.SQL.URL); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
