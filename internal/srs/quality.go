package srs

import (
	"encoding"
	"fmt"
	"strconv"
	"strings"
)

// Quality is the learner's self-reported recall grade for a single review.
type Quality int

const (
	Forgot     Quality = iota // Could not recall.
	Hard                      // Recalled only partially or with great effort.
	Remembered                // Recalled correctly.
	Easy                      // Recalled instantly.
)

var (
	qualityNames  = [...]string{Forgot: "forgot", Hard: "hard", Remembered: "remembered", Easy: "easy"}
	qualityByName = map[string]Quality{
		"forgot":     Forgot,
		"hard":       Hard,
		"remembered": Remembered,
		"easy":       Easy,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Quality(0)
	_ encoding.TextMarshaler   = Quality(0)
	_ encoding.TextUnmarshaler = (*Quality)(nil)
)

// Qualities lists every grade in ascending order.
func Qualities() []Quality {
	return []Quality{Forgot, Hard, Remembered, Easy}
}

// IsValid reports whether q is one of the four grades.
func (q Quality) IsValid() bool {
	return q >= Forgot && q <= Easy
}

// IsCorrect reports whether q counts as a correct answer (Remembered or better).
func (q Quality) IsCorrect() bool {
	return q >= Remembered && q.IsValid()
}

func (q Quality) String() string {
	if q.IsValid() {
		return qualityNames[q]
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// ParseQuality accepts a grade name (case-insensitive) or its digit 0-3.
func ParseQuality(s string) (Quality, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if q, ok := qualityByName[s]; ok {
		return q, nil
	}
	if n, err := strconv.Atoi(s); err == nil && Quality(n).IsValid() {
		return Quality(n), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidQuality, s)
}

// MarshalText implements encoding.TextMarshaler.
func (q Quality) MarshalText() ([]byte, error) {
	if !q.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuality, int(q))
	}
	return []byte(qualityNames[q]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (q *Quality) UnmarshalText(text []byte) error {
	v, err := ParseQuality(string(text))
	if err != nil {
		return err
	}
	*q = v
	return nil
}
