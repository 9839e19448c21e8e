package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/reviewdeck/internal/catalog"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and the item catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			items, err := catalog.Load(cfg.Catalog.Directories...)
			if err != nil {
				return fmt.Errorf("catalog validation failed: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Configuration OK (store: %s", cfg.Store.Driver)
			if cfg.Store.Mirror != "" {
				_, _ = fmt.Fprintf(out, ", mirror: %s", cfg.Store.Mirror)
			}
			_, _ = fmt.Fprintln(out, ")")
			_, _ = fmt.Fprintf(out, "Catalog OK: %d items in %d directories\n", items.Len(), len(cfg.Catalog.Directories))
			return nil
		},
	}
}
