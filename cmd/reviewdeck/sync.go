package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/reviewdeck/internal/datasync"
)

func newSyncCommand() *cobra.Command {
	var from, to, learner string
	var opts datasync.Options

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Copy cards, session and streak from one store to another",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if from == to {
				return errors.New("--from and --to must be different stores")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if learner != "" {
				cfg.LearnerID = learner
			}

			src, err := openStore(ctx, cfg, from)
			if err != nil {
				return fmt.Errorf("source store > %w", err)
			}
			defer func() {
				_ = src.Close()
			}()
			dst, err := openStore(ctx, cfg, to)
			if err != nil {
				return fmt.Errorf("destination store > %w", err)
			}
			defer func() {
				_ = dst.Close()
			}()

			out := cmd.OutOrStdout()
			if opts.DryRun {
				_, _ = fmt.Fprintln(out, "[DRY RUN] No changes will be written.")
			}
			_, _ = fmt.Fprintf(out, "Copying %s -> %s for %s\n", from, to, cfg.LearnerID)

			result, err := datasync.NewCopier(src, dst, out).Copy(ctx, opts)
			if err != nil {
				return fmt.Errorf("copier.Copy() > %w", err)
			}
			_, _ = fmt.Fprintf(out, "\nCards: %d new, %d updated, %d skipped\n",
				result.CardsNew, result.CardsUpdated, result.CardsSkipped)
			_, _ = fmt.Fprintf(out, "Session copied: %t, streak copied: %t\n", result.SessionCopied, result.StreakCopied)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "yaml", "source store driver")
	cmd.Flags().StringVar(&to, "to", "", "destination store driver")
	cmd.Flags().StringVar(&learner, "learner", "", "learner id (default from config)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "show what would be copied without writing")
	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, "replace records that already exist in the destination")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
