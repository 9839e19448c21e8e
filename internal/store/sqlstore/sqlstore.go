// Package sqlstore persists review state in MySQL or SQLite through sqlx.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/reviewdeck/internal/database"
	"github.com/at-ishikawa/reviewdeck/internal/srs"
	"github.com/at-ishikawa/reviewdeck/internal/store"
	"github.com/at-ishikawa/reviewdeck/schemas"
)

type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite"
)

// insertBatchSize keeps a multi-row INSERT under SQLite's default bound parameter limit.
const insertBatchSize = 50

var cardColumns = []string{
	"learner_id", "item_id", "position", "item_kind", "ease_factor", "interval_days",
	"repetition_count", "next_review_date", "last_review_date", "status",
}

type cardRow struct {
	ItemID          string   `db:"item_id"`
	ItemKind        string   `db:"item_kind"`
	EaseFactor      float64  `db:"ease_factor"`
	IntervalDays    int      `db:"interval_days"`
	RepetitionCount int      `db:"repetition_count"`
	NextReviewDate  srs.Date `db:"next_review_date"`
	LastReviewDate  srs.Date `db:"last_review_date"`
	Status          string   `db:"status"`
}

func (row cardRow) card() srs.Card {
	var kind srs.ItemKind
	_ = kind.UnmarshalText([]byte(row.ItemKind))
	var status srs.Status
	_ = status.UnmarshalText([]byte(row.Status))
	return srs.Card{
		ItemID:          row.ItemID,
		ItemKind:        kind,
		EaseFactor:      row.EaseFactor,
		IntervalDays:    row.IntervalDays,
		RepetitionCount: row.RepetitionCount,
		NextReviewDate:  row.NextReviewDate,
		LastReviewDate:  row.LastReviewDate,
		Status:          status,
	}
}

type sessionRow struct {
	Date          srs.Date `db:"session_date"`
	ReviewedCount int      `db:"reviewed_count"`
	CorrectCount  int      `db:"correct_count"`
	StreakDays    int      `db:"streak_days"`
}

type streakRow struct {
	LastCompletedDate srs.Date `db:"last_completed_date"`
	StreakDays        int      `db:"streak_days"`
}

// Store keeps the state of one learner in the cards, review_sessions and streaks tables.
type Store struct {
	db        *sqlx.DB
	dialect   Dialect
	learnerID string
	logger    *slog.Logger
}

var _ store.Store = (*Store)(nil)

// New returns a Store over db. The Store owns db and closes it on Close.
func New(db *sqlx.DB, dialect Dialect, learnerID string, logger *slog.Logger) (*Store, error) {
	switch dialect {
	case MySQL, SQLite:
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	if learnerID == "" {
		return nil, errors.New("learner id is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, dialect: dialect, learnerID: learnerID, logger: logger}, nil
}

// EnsureSchema applies the embedded migrations of the store's dialect in file name order.
// Every statement is idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	dir := path.Join("migrations", string(s.dialect))
	entries, err := fs.ReadDir(schemas.Migrations, dir)
	if err != nil {
		return fmt.Errorf("fs.ReadDir(%s) > %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := fs.ReadFile(schemas.Migrations, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("fs.ReadFile(%s) > %w", name, err)
		}
		for _, stmt := range strings.Split(string(content), ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}
		}
		s.logger.Debug("applied migration", "dialect", s.dialect, "file", name)
	}
	return nil
}

func (s *Store) LoadCards(ctx context.Context) ([]srs.Card, error) {
	var rows []cardRow
	query := "SELECT item_id, item_kind, ease_factor, interval_days, repetition_count, next_review_date, last_review_date, status FROM cards WHERE learner_id = ? ORDER BY position"
	if err := s.db.SelectContext(ctx, &rows, query, s.learnerID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(cards) > %w", err)
	}

	cards := make([]srs.Card, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, row.card())
	}
	return cards, nil
}

// SaveCards replaces the learner's collection in a single transaction.
func (s *Store) SaveCards(ctx context.Context, cards []srs.Card) error {
	return database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM cards WHERE learner_id = ?", s.learnerID); err != nil {
			return fmt.Errorf("delete cards: %w", err)
		}

		for start := 0; start < len(cards); start += insertBatchSize {
			batch := cards[start:min(start+insertBatchSize, len(cards))]
			query := database.BuildMultiRowInsert("cards", cardColumns, len(batch))

			args := make([]any, 0, len(batch)*len(cardColumns))
			for i, c := range batch {
				args = append(args,
					s.learnerID, c.ItemID, start+i, c.ItemKind.String(), c.EaseFactor, c.IntervalDays,
					c.RepetitionCount, c.NextReviewDate, c.LastReviewDate, c.Status.String(),
				)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert cards: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) LoadSession(ctx context.Context) (srs.Session, error) {
	var row sessionRow
	query := "SELECT session_date, reviewed_count, correct_count, streak_days FROM review_sessions WHERE learner_id = ?"
	if err := s.db.GetContext(ctx, &row, query, s.learnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return srs.Session{}, nil
		}
		return srs.Session{}, fmt.Errorf("db.GetContext(review_sessions) > %w", err)
	}
	if row.Date.IsZero() {
		s.logger.Warn("ignoring review session without a date", "learner_id", s.learnerID)
		return srs.Session{}, nil
	}
	return srs.Session(row), nil
}

func (s *Store) SaveSession(ctx context.Context, session srs.Session) error {
	query := s.upsert("review_sessions", []string{"session_date", "reviewed_count", "correct_count", "streak_days"})
	if _, err := s.db.ExecContext(ctx, query, s.learnerID, session.Date, session.ReviewedCount, session.CorrectCount, session.StreakDays); err != nil {
		return fmt.Errorf("upsert review session: %w", err)
	}
	return nil
}

func (s *Store) LoadStreak(ctx context.Context) (srs.Streak, error) {
	var row streakRow
	query := "SELECT last_completed_date, streak_days FROM streaks WHERE learner_id = ?"
	if err := s.db.GetContext(ctx, &row, query, s.learnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return srs.Streak{}, nil
		}
		return srs.Streak{}, fmt.Errorf("db.GetContext(streaks) > %w", err)
	}
	if row.StreakDays < 0 {
		s.logger.Warn("ignoring negative streak", "learner_id", s.learnerID, "streak_days", row.StreakDays)
		return srs.Streak{}, nil
	}
	return srs.Streak(row), nil
}

func (s *Store) SaveStreak(ctx context.Context, streak srs.Streak) error {
	query := s.upsert("streaks", []string{"last_completed_date", "streak_days"})
	if _, err := s.db.ExecContext(ctx, query, s.learnerID, streak.LastCompletedDate, streak.StreakDays); err != nil {
		return fmt.Errorf("upsert streak: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// upsert builds a single-row insert-or-update keyed by learner_id.
func (s *Store) upsert(table string, columns []string) string {
	insert := database.BuildMultiRowInsert(table, append([]string{"learner_id"}, columns...), 1)
	assignments := make([]string, 0, len(columns))
	for _, c := range columns {
		if s.dialect == MySQL {
			assignments = append(assignments, fmt.Sprintf("%s = VALUES(%s)", c, c))
		} else {
			assignments = append(assignments, fmt.Sprintf("%s = excluded.%s", c, c))
		}
	}
	if s.dialect == MySQL {
		return insert + " ON DUPLICATE KEY UPDATE " + strings.Join(assignments, ", ")
	}
	return insert + " ON CONFLICT(learner_id) DO UPDATE SET " + strings.Join(assignments, ", ")
}
