// Package datasync copies review state between stores, e.g. from local YAML files into MySQL.
package datasync

import (
	"context"
	"fmt"
	"io"

	"github.com/at-ishikawa/reviewdeck/internal/srs"
	"github.com/at-ishikawa/reviewdeck/internal/store"
)

// Result tracks counts for each copy operation.
type Result struct {
	CardsNew     int
	CardsUpdated int
	CardsSkipped int

	SessionCopied bool
	StreakCopied  bool
}

// Options controls copy behavior.
type Options struct {
	DryRun bool
	// Overwrite replaces cards, session and streak that already exist in the destination.
	Overwrite bool
}

// Copier reads everything from one store and writes it to another.
type Copier struct {
	src    store.Store
	dst    store.Store
	writer io.Writer
}

func NewCopier(src, dst store.Store, writer io.Writer) *Copier {
	return &Copier{
		src:    src,
		dst:    dst,
		writer: writer,
	}
}

// Copy copies cards, then the session, then the streak.
func (c *Copier) Copy(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{}
	if err := c.copyCards(ctx, opts, result); err != nil {
		return nil, err
	}
	if err := c.copySession(ctx, opts, result); err != nil {
		return nil, err
	}
	if err := c.copyStreak(ctx, opts, result); err != nil {
		return nil, err
	}
	return result, nil
}

// copyCards merges source cards into the destination collection. The destination order
// is kept and new cards are appended in source order.
func (c *Copier) copyCards(ctx context.Context, opts Options, result *Result) error {
	sourceCards, err := c.src.LoadCards(ctx)
	if err != nil {
		return fmt.Errorf("load source cards: %w", err)
	}
	merged, err := c.dst.LoadCards(ctx)
	if err != nil {
		return fmt.Errorf("load destination cards: %w", err)
	}

	index := make(map[string]int, len(merged))
	for i, card := range merged {
		index[card.ItemID] = i
	}

	for _, card := range sourceCards {
		i, exists := index[card.ItemID]
		switch {
		case !exists:
			index[card.ItemID] = len(merged)
			merged = append(merged, card)
			_, _ = fmt.Fprintf(c.writer, "  [NEW]  %q (%s)\n", card.ItemID, card.ItemKind)
			result.CardsNew++
		case opts.Overwrite:
			merged[i] = card
			_, _ = fmt.Fprintf(c.writer, "  [UPDATE]  %q (%s)\n", card.ItemID, card.ItemKind)
			result.CardsUpdated++
		default:
			_, _ = fmt.Fprintf(c.writer, "  [SKIP]  %q (%s)\n", card.ItemID, card.ItemKind)
			result.CardsSkipped++
		}
	}

	if opts.DryRun || result.CardsNew+result.CardsUpdated == 0 {
		return nil
	}
	if err := c.dst.SaveCards(ctx, merged); err != nil {
		return fmt.Errorf("save destination cards: %w", err)
	}
	return nil
}

func (c *Copier) copySession(ctx context.Context, opts Options, result *Result) error {
	session, err := c.src.LoadSession(ctx)
	if err != nil {
		return fmt.Errorf("load source session: %w", err)
	}
	if session.Date.IsZero() {
		return nil
	}
	existing, err := c.dst.LoadSession(ctx)
	if err != nil {
		return fmt.Errorf("load destination session: %w", err)
	}

	if !c.classify("session", session.Date, !existing.Date.IsZero(), opts) {
		return nil
	}
	result.SessionCopied = true
	if opts.DryRun {
		return nil
	}
	if err := c.dst.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("save destination session: %w", err)
	}
	return nil
}

func (c *Copier) copyStreak(ctx context.Context, opts Options, result *Result) error {
	streak, err := c.src.LoadStreak(ctx)
	if err != nil {
		return fmt.Errorf("load source streak: %w", err)
	}
	if streak.LastCompletedDate.IsZero() {
		return nil
	}
	existing, err := c.dst.LoadStreak(ctx)
	if err != nil {
		return fmt.Errorf("load destination streak: %w", err)
	}

	if !c.classify("streak", streak.LastCompletedDate, !existing.LastCompletedDate.IsZero(), opts) {
		return nil
	}
	result.StreakCopied = true
	if opts.DryRun {
		return nil
	}
	if err := c.dst.SaveStreak(ctx, streak); err != nil {
		return fmt.Errorf("save destination streak: %w", err)
	}
	return nil
}

// classify prints the action for a single-record document and reports whether it should be written.
func (c *Copier) classify(name string, date srs.Date, exists bool, opts Options) bool {
	switch {
	case !exists:
		_, _ = fmt.Fprintf(c.writer, "  [NEW]  %s (%s)\n", name, date)
		return true
	case opts.Overwrite:
		_, _ = fmt.Fprintf(c.writer, "  [UPDATE]  %s (%s)\n", name, date)
		return true
	default:
		_, _ = fmt.Fprintf(c.writer, "  [SKIP]  %s (%s)\n", name, date)
		return false
	}
}
