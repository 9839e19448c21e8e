// Package store defines the persistence contract of the review engine and its in-process implementations.
package store

import (
	"context"

	"github.com/at-ishikawa/reviewdeck/internal/srs"
)

//go:generate mockgen -source=store.go -destination=../mocks/store/mock_store.go -package=mock_store -exclude_interfaces=CardStore,SessionStore,StreakStore

// CardStore reads and writes the whole card collection of one learner.
// Cards are returned as persisted; build an srs.Collection to normalize them.
type CardStore interface {
	LoadCards(ctx context.Context) ([]srs.Card, error)
	SaveCards(ctx context.Context, cards []srs.Card) error
}

// SessionStore keeps the review session of the current day.
// A missing or malformed session loads as the zero value.
type SessionStore interface {
	LoadSession(ctx context.Context) (srs.Session, error)
	SaveSession(ctx context.Context, session srs.Session) error
}

// StreakStore keeps the streak record. A missing or malformed streak loads as the zero value.
type StreakStore interface {
	LoadStreak(ctx context.Context) (srs.Streak, error)
	SaveStreak(ctx context.Context, streak srs.Streak) error
}

// Store is the full persistence contract for one learner.
type Store interface {
	CardStore
	SessionStore
	StreakStore
	Close() error
}
