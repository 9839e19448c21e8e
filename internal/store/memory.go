package store

import (
	"context"
	"slices"
	"sync"

	"github.com/at-ishikawa/reviewdeck/internal/srs"
)

// Memory keeps everything in process memory. It is safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	cards   []srs.Card
	session srs.Session
	streak  srs.Streak
}

var _ Store = (*Memory)(nil)

// NewMemory returns a Memory store seeded with cards.
func NewMemory(cards ...srs.Card) *Memory {
	return &Memory{cards: slices.Clone(cards)}
}

func (m *Memory) LoadCards(_ context.Context) ([]srs.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.cards), nil
}

func (m *Memory) SaveCards(_ context.Context, cards []srs.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards = slices.Clone(cards)
	return nil
}

func (m *Memory) LoadSession(_ context.Context) (srs.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, nil
}

func (m *Memory) SaveSession(_ context.Context, session srs.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = session
	return nil
}

func (m *Memory) LoadStreak(_ context.Context) (srs.Streak, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streak, nil
}

func (m *Memory) SaveStreak(_ context.Context, streak srs.Streak) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streak = streak
	return nil
}

func (m *Memory) Close() error {
	return nil
}
