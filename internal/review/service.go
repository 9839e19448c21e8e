// Package review runs review sessions for one learner on top of a store.Store.
//
// Every operation loads the state it needs, applies the pure scheduling functions
// of package srs, and saves the result before returning.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/at-ishikawa/reviewdeck/internal/srs"
	"github.com/at-ishikawa/reviewdeck/internal/statistics"
	"github.com/at-ishikawa/reviewdeck/internal/store"
)

// Catalog supplies the items that can be introduced as new cards.
type Catalog interface {
	Candidates() []srs.Item
}

type Service struct {
	store   store.Store
	clock   srs.Clock
	catalog Catalog
	policy  srs.SessionPolicy
	logger  *slog.Logger

	// mu serializes load-modify-save sequences.
	mu sync.Mutex
}

type Option func(*Service)

func WithClock(clock srs.Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

func WithCatalog(catalog Catalog) Option {
	return func(s *Service) {
		s.catalog = catalog
	}
}

func WithPolicy(policy srs.SessionPolicy) Option {
	return func(s *Service) {
		s.policy = policy
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService returns a Service using the system clock, the default policy and no catalog
// unless overridden by opts.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		clock:  srs.SystemClock{},
		policy: srs.DefaultSessionPolicy(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Today() srs.Date {
	return s.clock.Today()
}

func (s *Service) loadCollection(ctx context.Context, today srs.Date) (*srs.Collection, error) {
	cards, err := s.store.LoadCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.LoadCards > %w", err)
	}
	return srs.NewCollection(cards, today), nil
}

func (s *Service) saveCollection(ctx context.Context, col *srs.Collection) error {
	if err := s.store.SaveCards(ctx, col.Cards()); err != nil {
		return fmt.Errorf("store.SaveCards > %w", err)
	}
	return nil
}

// StartSession introduces new catalog items and returns today's review queue.
// Cards are saved only when something was introduced.
func (s *Service) StartSession(ctx context.Context) (srs.SessionPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.clock.Today()
	col, err := s.loadCollection(ctx, today)
	if err != nil {
		return srs.SessionPlan{}, err
	}

	var candidates []srs.Item
	if s.catalog != nil {
		candidates = s.catalog.Candidates()
	}
	plan := srs.BuildSession(col, candidates, today, s.policy)
	if len(plan.Introduced) > 0 {
		if err := s.saveCollection(ctx, col); err != nil {
			return srs.SessionPlan{}, err
		}
		s.logger.Info("introduced new cards", "count", len(plan.Introduced))
	}
	s.logger.Debug("session started", "date", today, "queue", len(plan.Queue))
	return plan, nil
}

// Rate grades one card and counts the review in today's session.
// It returns srs.ErrInvalidQuality or srs.ErrNotFound without touching the store's contents.
func (s *Service) Rate(ctx context.Context, itemID string, q srs.Quality) (srs.Card, srs.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !q.IsValid() {
		return srs.Card{}, srs.Session{}, fmt.Errorf("%w: %d", srs.ErrInvalidQuality, int(q))
	}

	today := s.clock.Today()
	col, err := s.loadCollection(ctx, today)
	if err != nil {
		return srs.Card{}, srs.Session{}, err
	}
	card, err := col.Review(itemID, q, today)
	if err != nil {
		return srs.Card{}, srs.Session{}, fmt.Errorf("collection.Review > %w", err)
	}
	if err := s.saveCollection(ctx, col); err != nil {
		return srs.Card{}, srs.Session{}, err
	}

	session, err := s.store.LoadSession(ctx)
	if err != nil {
		return srs.Card{}, srs.Session{}, fmt.Errorf("store.LoadSession > %w", err)
	}
	session = srs.UpdateSession(session, q, today)
	if err := s.store.SaveSession(ctx, session); err != nil {
		return srs.Card{}, srs.Session{}, fmt.Errorf("store.SaveSession > %w", err)
	}

	s.logger.Debug("card reviewed",
		"item_id", itemID,
		"quality", q,
		"interval_days", card.IntervalDays,
		"next_review_date", card.NextReviewDate,
	)
	return card, session, nil
}

// Complete marks today's session complete and updates the streak.
func (s *Service) Complete(ctx context.Context) (srs.Session, srs.Streak, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.store.LoadSession(ctx)
	if err != nil {
		return srs.Session{}, srs.Streak{}, fmt.Errorf("store.LoadSession > %w", err)
	}
	streak, err := s.store.LoadStreak(ctx)
	if err != nil {
		return srs.Session{}, srs.Streak{}, fmt.Errorf("store.LoadStreak > %w", err)
	}

	session, streak = srs.CompleteSession(session, streak, s.clock.Today())
	if err := s.store.SaveStreak(ctx, streak); err != nil {
		return srs.Session{}, srs.Streak{}, fmt.Errorf("store.SaveStreak > %w", err)
	}
	if err := s.store.SaveSession(ctx, session); err != nil {
		return srs.Session{}, srs.Streak{}, fmt.Errorf("store.SaveSession > %w", err)
	}
	return session, streak, nil
}

// Session returns today's session; a session recorded on another day reads as empty.
func (s *Service) Session(ctx context.Context) (srs.Session, error) {
	session, err := s.store.LoadSession(ctx)
	if err != nil {
		return srs.Session{}, fmt.Errorf("store.LoadSession > %w", err)
	}
	today := s.clock.Today()
	if !session.Date.Equal(today) {
		return srs.Session{Date: today, StreakDays: max(session.StreakDays, 0)}, nil
	}
	return session, nil
}

func (s *Service) HasCompletedToday(ctx context.Context) (bool, error) {
	session, err := s.store.LoadSession(ctx)
	if err != nil {
		return false, fmt.Errorf("store.LoadSession > %w", err)
	}
	return srs.HasCompletedToday(session, s.clock.Today()), nil
}

func (s *Service) Streak(ctx context.Context) (int, error) {
	streak, err := s.store.LoadStreak(ctx)
	if err != nil {
		return 0, fmt.Errorf("store.LoadStreak > %w", err)
	}
	return srs.CurrentStreak(streak), nil
}

func (s *Service) Stats(ctx context.Context) (statistics.Summary, error) {
	today := s.clock.Today()
	col, err := s.loadCollection(ctx, today)
	if err != nil {
		return statistics.Summary{}, err
	}
	return statistics.Calculate(col.Cards(), today), nil
}

func (s *Service) StatsByKind(ctx context.Context) (map[srs.ItemKind]statistics.Summary, error) {
	today := s.clock.Today()
	col, err := s.loadCollection(ctx, today)
	if err != nil {
		return nil, err
	}
	return statistics.CalculateByKind(col.Cards(), today), nil
}

// Forecast returns the number of cards due on each of the next days days.
func (s *Service) Forecast(ctx context.Context, days int) ([]statistics.DayLoad, error) {
	today := s.clock.Today()
	col, err := s.loadCollection(ctx, today)
	if err != nil {
		return nil, err
	}
	return statistics.Forecast(col.Cards(), today, days), nil
}

// Due returns the cards due today in review order. limit <= 0 means no limit.
func (s *Service) Due(ctx context.Context, limit int) ([]srs.Card, error) {
	today := s.clock.Today()
	col, err := s.loadCollection(ctx, today)
	if err != nil {
		return nil, err
	}
	return srs.DueCards(col.Cards(), today, limit), nil
}

// AddItem creates a card for itemID. Adding an existing item returns its card and false.
func (s *Service) AddItem(ctx context.Context, itemID string, kind srs.ItemKind) (srs.Card, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.clock.Today()
	col, err := s.loadCollection(ctx, today)
	if err != nil {
		return srs.Card{}, false, err
	}
	card, added := col.Add(itemID, kind, today)
	if !added {
		return card, false, nil
	}
	if err := s.saveCollection(ctx, col); err != nil {
		return srs.Card{}, false, err
	}
	return card, true, nil
}

// RemoveItem deletes the card for itemID and reports whether it existed.
func (s *Service) RemoveItem(ctx context.Context, itemID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.loadCollection(ctx, s.clock.Today())
	if err != nil {
		return false, err
	}
	if !col.Remove(itemID) {
		return false, nil
	}
	if err := s.saveCollection(ctx, col); err != nil {
		return false, err
	}
	return true, nil
}

// Preview returns the interval each grade would give the card for itemID.
func (s *Service) Preview(ctx context.Context, itemID string) (map[srs.Quality]int, error) {
	today := s.clock.Today()
	col, err := s.loadCollection(ctx, today)
	if err != nil {
		return nil, err
	}
	card, ok := col.Get(itemID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", srs.ErrNotFound, itemID)
	}
	return srs.PreviewIntervals(card, today), nil
}

func (s *Service) Close() error {
	return s.store.Close()
}
