// Package yamlstore persists a learner's review state as YAML files on the local disk.
//
// Layout:
//
//	<dir>/<learner>/cards.yml
//	<dir>/<learner>/session.yml
//	<dir>/<learner>/streak.yml
package yamlstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/reviewdeck/internal/srs"
	"github.com/at-ishikawa/reviewdeck/internal/store"
)

const (
	cardsFile   = "cards.yml"
	sessionFile = "session.yml"
	streakFile  = "streak.yml"
)

type Store struct {
	dir    string
	logger *slog.Logger
}

var _ store.Store = (*Store)(nil)

// New returns a Store rooted at <dir>/<learnerID>. The directory is created on the first save.
func New(dir, learnerID string, logger *slog.Logger) (*Store, error) {
	if learnerID == "" {
		return nil, errors.New("learner id is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		dir:    filepath.Join(dir, learnerID),
		logger: logger,
	}, nil
}

// Dir returns the directory holding this learner's files.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) LoadCards(_ context.Context) ([]srs.Card, error) {
	var cards []srs.Card
	path := filepath.Join(s.dir, cardsFile)
	found, err := readYamlFile(path, &cards)
	if err != nil {
		return nil, fmt.Errorf("readYamlFile(%s) > %w", path, err)
	}
	if !found {
		return nil, nil
	}
	return cards, nil
}

func (s *Store) SaveCards(_ context.Context, cards []srs.Card) error {
	if cards == nil {
		cards = []srs.Card{}
	}
	return s.write(cardsFile, cards)
}

func (s *Store) LoadSession(_ context.Context) (srs.Session, error) {
	var session srs.Session
	path := filepath.Join(s.dir, sessionFile)
	if _, err := readYamlFile(path, &session); err != nil {
		s.logger.Warn("ignoring malformed session file", "path", path, "error", err)
		return srs.Session{}, nil
	}
	return session, nil
}

func (s *Store) SaveSession(_ context.Context, session srs.Session) error {
	return s.write(sessionFile, session)
}

func (s *Store) LoadStreak(_ context.Context) (srs.Streak, error) {
	var streak srs.Streak
	path := filepath.Join(s.dir, streakFile)
	if _, err := readYamlFile(path, &streak); err != nil {
		s.logger.Warn("ignoring malformed streak file", "path", path, "error", err)
		return srs.Streak{}, nil
	}
	return streak, nil
}

func (s *Store) SaveStreak(_ context.Context, streak srs.Streak) error {
	return s.write(streakFile, streak)
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) write(name string, data any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", s.dir, err)
	}
	path := filepath.Join(s.dir, name)
	if err := writeYamlFile(path, data); err != nil {
		return fmt.Errorf("writeYamlFile(%s) > %w", path, err)
	}
	return nil
}

// readYamlFile decodes path into out. A missing or empty file reports found=false.
func readYamlFile(path string, out any) (bool, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("os.Open(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := yaml.NewDecoder(file).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, fmt.Errorf("yaml.NewDecoder().Decode() > %w", err)
	}
	return true, nil
}

// writeYamlFile replaces path atomically so an interrupted write never leaves a truncated file.
func writeYamlFile(path string, data any) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("os.CreateTemp > %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	encoder := yaml.NewEncoder(tmp)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("yaml.NewEncoder().Encode() > %w", err)
	}
	if err := encoder.Close(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encoder.Close() > %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tmp.Close() > %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("os.Rename(%s) > %w", path, err)
	}
	return nil
}
