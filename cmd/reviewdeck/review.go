package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/reviewdeck/internal/bootstrap"
	"github.com/at-ishikawa/reviewdeck/internal/catalog"
	"github.com/at-ishikawa/reviewdeck/internal/cli"
	"github.com/at-ishikawa/reviewdeck/internal/config"
	"github.com/at-ishikawa/reviewdeck/internal/review"
	"github.com/at-ishikawa/reviewdeck/internal/srs"
)

// newClock is replaced in tests.
var newClock = func(loc *time.Location) srs.Clock {
	return srs.SystemClock{Location: loc}
}

type environment struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	service *review.Service
}

func newEnvironment(ctx context.Context, flags *storeFlags) (*environment, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	flags.apply(cfg)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	items, err := catalog.Load(cfg.Catalog.Directories...)
	if err != nil {
		return nil, fmt.Errorf("catalog.Load() > %w", err)
	}
	st, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	slog.Debug("store opened", "driver", cfg.Store.Driver, "mirror", cfg.Store.Mirror, "learner_id", cfg.LearnerID)

	service := review.NewService(st,
		review.WithClock(newClock(loc)),
		review.WithCatalog(items),
		review.WithPolicy(srs.SessionPolicy{MaxDue: cfg.Session.MaxDue, NewTarget: cfg.Session.NewTarget}),
		review.WithLogger(slog.Default()),
	)
	return &environment{cfg: cfg, catalog: items, service: service}, nil
}

func (env *environment) close() {
	if err := env.service.Close(); err != nil {
		slog.Warn("failed to close the store", "error", err)
	}
}

// withEnvironment registers the store flags on command and runs fn with an open environment.
func withEnvironment(command *cobra.Command, fn func(cmd *cobra.Command, args []string, env *environment) error) *cobra.Command {
	var flags storeFlags
	flags.register(command.Flags())
	command.RunE = func(cmd *cobra.Command, args []string) error {
		env, err := newEnvironment(cmd.Context(), &flags)
		if err != nil {
			return err
		}
		defer env.close()
		return fn(cmd, args, env)
	}
	return command
}

func newReviewCommand() *cobra.Command {
	var flags storeFlags
	command := &cobra.Command{
		Use:   "review",
		Short: "Review today's cards interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd.Context(), &flags)
			if err != nil {
				return err
			}

			app := bootstrap.New()
			app.AddShutdownHook(func(ctx context.Context) error {
				return env.service.Close()
			})
			return app.Run(cmd.Context(), func(ctx context.Context) error {
				return cli.NewReviewCLI(env.service, env.catalog, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
			})
		},
	}
	flags.register(command.Flags())
	return command
}

func newDueCommand() *cobra.Command {
	var limit int
	command := withEnvironment(&cobra.Command{
		Use:   "due",
		Short: "List the cards due today in review order",
		Args:  cobra.NoArgs,
	}, func(cmd *cobra.Command, args []string, env *environment) error {
		cards, err := env.service.Due(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return cli.PrintCards(cmd.OutOrStdout(), cards)
	})
	command.Flags().IntVar(&limit, "limit", 0, "maximum number of cards to list (0 for all)")
	return command
}

func newAddCommand() *cobra.Command {
	var kind KindFlag
	command := withEnvironment(&cobra.Command{
		Use:   "add <item id>",
		Short: "Create a card for an item",
		Args:  cobra.ExactArgs(1),
	}, func(cmd *cobra.Command, args []string, env *environment) error {
		itemID := args[0]
		itemKind := srs.ItemKind(kind)
		if !cmd.Flags().Changed("kind") {
			if entry, ok := env.catalog.Lookup(itemID); ok {
				itemKind = entry.ItemKind()
			}
		}

		card, added, err := env.service.AddItem(cmd.Context(), itemID, itemKind)
		if err != nil {
			return err
		}
		if !added {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s already has a card (%s)\n", card.ItemID, card.Status)
			return nil
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s), due %s\n", card.ItemID, card.ItemKind, card.NextReviewDate)
		return nil
	})
	command.Flags().Var(&kind, "kind", "item kind: vocabulary, phrase or pronunciation (default from the catalog)")
	return command
}

func newRemoveCommand() *cobra.Command {
	return withEnvironment(&cobra.Command{
		Use:   "remove <item id>",
		Short: "Delete the card of an item",
		Args:  cobra.ExactArgs(1),
	}, func(cmd *cobra.Command, args []string, env *environment) error {
		removed, err := env.service.RemoveItem(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("%w: %s", srs.ErrNotFound, args[0])
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
		return nil
	})
}

func newRateCommand() *cobra.Command {
	return withEnvironment(&cobra.Command{
		Use:   "rate <item id> <quality>",
		Short: "Record one review; quality is forgot, hard, remembered, easy or 0-3",
		Args:  cobra.ExactArgs(2),
	}, func(cmd *cobra.Command, args []string, env *environment) error {
		q, err := srs.ParseQuality(args[1])
		if err != nil {
			return err
		}
		card, session, err := env.service.Rate(cmd.Context(), args[0], q)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: next review on %s (interval %d, ease %.2f, %s). Reviewed today: %d\n",
			card.ItemID, card.NextReviewDate, card.IntervalDays, card.EaseFactor, card.Status, session.ReviewedCount)
		return nil
	})
}

func newCompleteCommand() *cobra.Command {
	return withEnvironment(&cobra.Command{
		Use:   "complete",
		Short: "Mark today's session complete and update the streak",
		Args:  cobra.NoArgs,
	}, func(cmd *cobra.Command, args []string, env *environment) error {
		session, streak, err := env.service.Complete(cmd.Context())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Session of %s completed: %d reviewed, %d correct. Streak: %d days\n",
			session.Date, session.ReviewedCount, session.CorrectCount, streak.StreakDays)
		return nil
	})
}

func newStreakCommand() *cobra.Command {
	return withEnvironment(&cobra.Command{
		Use:   "streak",
		Short: "Show the current streak and today's review counts",
		Args:  cobra.NoArgs,
	}, func(cmd *cobra.Command, args []string, env *environment) error {
		days, err := env.service.Streak(cmd.Context())
		if err != nil {
			return err
		}
		done, err := env.service.HasCompletedToday(cmd.Context())
		if err != nil {
			return err
		}
		session, err := env.service.Session(cmd.Context())
		if err != nil {
			return err
		}
		status := "not reviewed yet today"
		if done {
			status = "reviewed today"
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d days (%s). Today: %d reviewed, %d correct (%.0f%%)\n",
			days, status, session.ReviewedCount, session.CorrectCount, session.Accuracy()*100)
		return nil
	})
}

func newStatsCommand() *cobra.Command {
	var byKind, asJSON bool
	command := withEnvironment(&cobra.Command{
		Use:   "stats",
		Short: "Show card counts by status",
		Args:  cobra.NoArgs,
	}, func(cmd *cobra.Command, args []string, env *environment) error {
		out := cmd.OutOrStdout()
		if byKind {
			summaries, err := env.service.StatsByKind(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return json.NewEncoder(out).Encode(summaries)
			}
			return cli.PrintSummaryByKind(out, summaries)
		}

		summary, err := env.service.Stats(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON {
			return json.NewEncoder(out).Encode(summary)
		}
		return cli.PrintSummary(out, summary)
	})
	command.Flags().BoolVar(&byKind, "by-kind", false, "break the counts down by item kind")
	command.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return command
}

func newForecastCommand() *cobra.Command {
	var days int
	command := withEnvironment(&cobra.Command{
		Use:   "forecast",
		Short: "Show how many cards fall due on each upcoming day",
		Args:  cobra.NoArgs,
	}, func(cmd *cobra.Command, args []string, env *environment) error {
		loads, err := env.service.Forecast(cmd.Context(), days)
		if err != nil {
			return err
		}
		return cli.PrintForecast(cmd.OutOrStdout(), loads)
	})
	command.Flags().IntVar(&days, "days", 7, "number of days to show, starting today")
	return command
}
