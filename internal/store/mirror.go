package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/at-ishikawa/reviewdeck/internal/srs"
)

// Mirror is a local-first replicated store.
//
// Primary is the source of truth. Writes go to Primary first and are then copied to
// Secondary; a Secondary failure is logged and does not fail the write. Reads use
// Primary and fall back to Secondary only when Primary holds no cards, which restores
// a collection onto a fresh device.
type Mirror struct {
	Primary   Store
	Secondary Store
	Logger    *slog.Logger
}

var _ Store = (*Mirror)(nil)

// NewMirror returns a Mirror that logs through slog.Default().
func NewMirror(primary, secondary Store) *Mirror {
	return &Mirror{Primary: primary, Secondary: secondary, Logger: slog.Default()}
}

func (m *Mirror) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

func (m *Mirror) LoadCards(ctx context.Context) ([]srs.Card, error) {
	cards, err := m.Primary.LoadCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("primary.LoadCards > %w", err)
	}
	if len(cards) > 0 {
		return cards, nil
	}

	remote, err := m.Secondary.LoadCards(ctx)
	if err != nil {
		m.logger().Warn("failed to load cards from secondary store", "error", err)
		return cards, nil
	}
	if len(remote) > 0 {
		m.logger().Info("restored cards from secondary store", "count", len(remote))
	}
	return remote, nil
}

func (m *Mirror) SaveCards(ctx context.Context, cards []srs.Card) error {
	if err := m.Primary.SaveCards(ctx, cards); err != nil {
		return fmt.Errorf("primary.SaveCards > %w", err)
	}
	if err := m.Secondary.SaveCards(ctx, cards); err != nil {
		m.logger().Warn("failed to mirror cards", "error", err)
	}
	return nil
}

func (m *Mirror) LoadSession(ctx context.Context) (srs.Session, error) {
	session, err := m.Primary.LoadSession(ctx)
	if err != nil {
		return srs.Session{}, fmt.Errorf("primary.LoadSession > %w", err)
	}
	if !session.Date.IsZero() {
		return session, nil
	}

	remote, err := m.Secondary.LoadSession(ctx)
	if err != nil {
		m.logger().Warn("failed to load session from secondary store", "error", err)
		return session, nil
	}
	return remote, nil
}

func (m *Mirror) SaveSession(ctx context.Context, session srs.Session) error {
	if err := m.Primary.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("primary.SaveSession > %w", err)
	}
	if err := m.Secondary.SaveSession(ctx, session); err != nil {
		m.logger().Warn("failed to mirror session", "error", err)
	}
	return nil
}

func (m *Mirror) LoadStreak(ctx context.Context) (srs.Streak, error) {
	streak, err := m.Primary.LoadStreak(ctx)
	if err != nil {
		return srs.Streak{}, fmt.Errorf("primary.LoadStreak > %w", err)
	}
	if !streak.LastCompletedDate.IsZero() {
		return streak, nil
	}

	remote, err := m.Secondary.LoadStreak(ctx)
	if err != nil {
		m.logger().Warn("failed to load streak from secondary store", "error", err)
		return streak, nil
	}
	return remote, nil
}

func (m *Mirror) SaveStreak(ctx context.Context, streak srs.Streak) error {
	if err := m.Primary.SaveStreak(ctx, streak); err != nil {
		return fmt.Errorf("primary.SaveStreak > %w", err)
	}
	if err := m.Secondary.SaveStreak(ctx, streak); err != nil {
		m.logger().Warn("failed to mirror streak", "error", err)
	}
	return nil
}

// Close closes both stores and joins their errors.
func (m *Mirror) Close() error {
	return errors.Join(m.Primary.Close(), m.Secondary.Close())
}
