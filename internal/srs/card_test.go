package srs

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = NewDate(2025, time.March, 1)

func TestNew(t *testing.T) {
	card := New("apple", Vocabulary, day0)

	assert.Equal(t, "apple", card.ItemID)
	assert.Equal(t, Vocabulary, card.ItemKind)
	assert.Equal(t, DefaultEaseFactor, card.EaseFactor)
	assert.Equal(t, 0, card.IntervalDays)
	assert.Equal(t, 0, card.RepetitionCount)
	assert.True(t, card.NextReviewDate.Equal(day0))
	assert.True(t, card.LastReviewDate.IsZero())
	assert.Equal(t, StatusNew, card.Status)
	assert.True(t, card.IsDue(day0))
	assert.False(t, card.IsReviewed())
}

func TestProcessReview(t *testing.T) {
	tests := []struct {
		name         string
		card         Card
		quality      Quality
		wantEase     float64
		wantInterval int
		wantReps     int
		wantStatus   Status
	}{
		{
			name:         "forgot resets a mature card",
			card:         Card{ItemID: "a", EaseFactor: 2.5, IntervalDays: 40, RepetitionCount: 6, Status: StatusMastered, LastReviewDate: day0.AddDays(-40)},
			quality:      Forgot,
			wantEase:     2.2,
			wantInterval: 1,
			wantReps:     0,
			wantStatus:   StatusLearning,
		},
		{
			name:         "hard is a lapse too",
			card:         Card{ItemID: "a", EaseFactor: 2.0, IntervalDays: 10, RepetitionCount: 3, Status: StatusReview, LastReviewDate: day0.AddDays(-10)},
			quality:      Hard,
			wantEase:     1.7,
			wantInterval: 1,
			wantReps:     0,
			wantStatus:   StatusLearning,
		},
		{
			name:         "lapse never drops ease below the minimum",
			card:         Card{ItemID: "a", EaseFactor: 1.4, IntervalDays: 3, RepetitionCount: 2, Status: StatusLearning, LastReviewDate: day0.AddDays(-3)},
			quality:      Forgot,
			wantEase:     MinEaseFactor,
			wantInterval: 1,
			wantReps:     0,
			wantStatus:   StatusLearning,
		},
		{
			name:         "first success schedules one day",
			card:         New("a", Vocabulary, day0),
			quality:      Remembered,
			wantEase:     2.4,
			wantInterval: 1,
			wantReps:     1,
			wantStatus:   StatusLearning,
		},
		{
			name:         "second success schedules three days",
			card:         Card{ItemID: "a", EaseFactor: 2.4, IntervalDays: 1, RepetitionCount: 1, Status: StatusLearning, LastReviewDate: day0.AddDays(-1)},
			quality:      Easy,
			wantEase:     2.55,
			wantInterval: 3,
			wantReps:     2,
			wantStatus:   StatusLearning,
		},
		{
			name:         "remembered scales by ease times 0.8",
			card:         Card{ItemID: "a", EaseFactor: 2.6, IntervalDays: 10, RepetitionCount: 3, Status: StatusReview, LastReviewDate: day0.AddDays(-10)},
			quality:      Remembered,
			wantEase:     2.5,
			wantInterval: 20,
			wantReps:     4,
			wantStatus:   StatusReview,
		},
		{
			name:         "fifth success past thirty days is mastered",
			card:         Card{ItemID: "a", EaseFactor: 2.5, IntervalDays: 20, RepetitionCount: 4, Status: StatusReview, LastReviewDate: day0.AddDays(-20)},
			quality:      Remembered,
			wantEase:     2.4,
			wantInterval: 38,
			wantReps:     5,
			wantStatus:   StatusMastered,
		},
		{
			name:         "easy caps ease and interval",
			card:         Card{ItemID: "a", EaseFactor: 2.95, IntervalDays: 300, RepetitionCount: 9, Status: StatusMastered, LastReviewDate: day0.AddDays(-300)},
			quality:      Easy,
			wantEase:     MaxEaseFactor,
			wantInterval: MaxIntervalDays,
			wantReps:     10,
			wantStatus:   StatusMastered,
		},
		{
			name:         "long interval with few repetitions is review",
			card:         Card{ItemID: "a", EaseFactor: 2.5, IntervalDays: 20, RepetitionCount: 1, Status: StatusReview, LastReviewDate: day0.AddDays(-20)},
			quality:      Easy,
			wantEase:     2.65,
			wantInterval: 53,
			wantReps:     2,
			wantStatus:   StatusReview,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.card
			got := ProcessReview(tt.card, tt.quality, day0)

			assert.InDelta(t, tt.wantEase, got.EaseFactor, 1e-9)
			assert.Equal(t, tt.wantInterval, got.IntervalDays)
			assert.Equal(t, tt.wantReps, got.RepetitionCount)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.True(t, got.LastReviewDate.Equal(day0))
			assert.True(t, got.NextReviewDate.Equal(day0.AddDays(tt.wantInterval)))
			assert.Equal(t, before, tt.card, "input card must not be modified")
		})
	}
}

func TestProcessReview_InvalidQuality(t *testing.T) {
	card := New("a", Phrase, day0)
	got := ProcessReview(card, Quality(7), day0)
	assert.Equal(t, card, got)
}

func TestProcessReview_Scenario(t *testing.T) {
	clock := NewFixedClock(day0)
	card := New("apple", Vocabulary, clock.Today())

	card = ProcessReview(card, Remembered, clock.Today())
	assert.Equal(t, 1, card.IntervalDays)
	assert.True(t, card.NextReviewDate.Equal(day0.AddDays(1)))

	clock.Advance(1)
	card = ProcessReview(card, Remembered, clock.Today())
	assert.Equal(t, 3, card.IntervalDays)
	assert.True(t, card.NextReviewDate.Equal(day0.AddDays(4)))

	clock.Advance(3)
	easeBefore := card.EaseFactor
	card = ProcessReview(card, Easy, clock.Today())
	assert.InDelta(t, math.Min(MaxEaseFactor, easeBefore+0.15), card.EaseFactor, 1e-9)
	assert.Equal(t, int(math.Round(3*card.EaseFactor)), card.IntervalDays)
	assert.Equal(t, 7, card.IntervalDays)
	assert.Equal(t, StatusReview, card.Status)
	assert.True(t, card.NextReviewDate.Equal(day0.AddDays(11)))
}

func TestProcessReview_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	qualities := Qualities()

	for i := 0; i < 200; i++ {
		today := day0
		card := New("a", Vocabulary, today)
		for j := 0; j < 30; j++ {
			q := qualities[rng.Intn(len(qualities))]
			card = ProcessReview(card, q, today)

			require.GreaterOrEqual(t, card.EaseFactor, MinEaseFactor)
			require.LessOrEqual(t, card.EaseFactor, MaxEaseFactor)
			require.GreaterOrEqual(t, card.IntervalDays, 0)
			require.LessOrEqual(t, card.IntervalDays, MaxIntervalDays)
			if q == Forgot {
				require.Equal(t, 0, card.RepetitionCount)
				require.Equal(t, 1, card.IntervalDays)
			}
			if card.Status == StatusMastered {
				require.GreaterOrEqual(t, card.RepetitionCount, 5)
				require.Greater(t, card.IntervalDays, 30)
			}
			today = card.NextReviewDate
		}
	}
}

func TestNormalize(t *testing.T) {
	reviewed := day0.AddDays(-5)

	tests := []struct {
		name  string
		card  Card
		check func(t *testing.T, got Card)
	}{
		{
			name: "ease above range is clamped",
			card: Card{ItemID: "a", EaseFactor: 4.2, NextReviewDate: day0},
			check: func(t *testing.T, got Card) {
				assert.Equal(t, MaxEaseFactor, got.EaseFactor)
			},
		},
		{
			name: "ease below range is clamped",
			card: Card{ItemID: "a", EaseFactor: 0.4, NextReviewDate: day0},
			check: func(t *testing.T, got Card) {
				assert.Equal(t, MinEaseFactor, got.EaseFactor)
			},
		},
		{
			name: "zero ease is clamped like any low value",
			card: Card{ItemID: "a", EaseFactor: 0, NextReviewDate: day0},
			check: func(t *testing.T, got Card) {
				assert.Equal(t, MinEaseFactor, got.EaseFactor)
			},
		},
		{
			name: "NaN ease gets the default",
			card: Card{ItemID: "a", EaseFactor: math.NaN(), NextReviewDate: day0},
			check: func(t *testing.T, got Card) {
				assert.Equal(t, DefaultEaseFactor, got.EaseFactor)
			},
		},
		{
			name: "interval and repetitions are clamped",
			card: Card{ItemID: "a", EaseFactor: 2.5, IntervalDays: 900, RepetitionCount: -2, LastReviewDate: reviewed, NextReviewDate: day0},
			check: func(t *testing.T, got Card) {
				assert.Equal(t, MaxIntervalDays, got.IntervalDays)
				assert.Equal(t, 0, got.RepetitionCount)
			},
		},
		{
			name: "absent next review date is due today",
			card: Card{ItemID: "a", EaseFactor: 2.5},
			check: func(t *testing.T, got Card) {
				assert.True(t, got.NextReviewDate.Equal(day0))
				assert.True(t, got.IsDue(day0))
			},
		},
		{
			name: "unreviewed card is always new",
			card: Card{ItemID: "a", EaseFactor: 2.5, Status: StatusReview, NextReviewDate: day0},
			check: func(t *testing.T, got Card) {
				assert.Equal(t, StatusNew, got.Status)
			},
		},
		{
			name: "mastered without enough repetitions is re-derived",
			card: Card{ItemID: "a", EaseFactor: 2.5, IntervalDays: 10, RepetitionCount: 2, Status: StatusMastered, LastReviewDate: reviewed, NextReviewDate: day0},
			check: func(t *testing.T, got Card) {
				assert.Equal(t, StatusReview, got.Status)
			},
		},
		{
			name: "reviewed card marked new is re-derived",
			card: Card{ItemID: "a", EaseFactor: 2.5, IntervalDays: 3, RepetitionCount: 2, Status: StatusNew, LastReviewDate: reviewed, NextReviewDate: day0},
			check: func(t *testing.T, got Card) {
				assert.Equal(t, StatusLearning, got.Status)
			},
		},
		{
			name: "unknown kind becomes vocabulary",
			card: Card{ItemID: "a", ItemKind: ItemKind(9), EaseFactor: 2.5, NextReviewDate: day0},
			check: func(t *testing.T, got Card) {
				assert.Equal(t, Vocabulary, got.ItemKind)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Normalize(tt.card, day0))
		})
	}
}

func TestPreviewIntervals(t *testing.T) {
	card := Card{ItemID: "a", EaseFactor: 2.5, IntervalDays: 20, RepetitionCount: 3, Status: StatusReview, LastReviewDate: day0.AddDays(-20), NextReviewDate: day0}

	got := PreviewIntervals(card, day0)

	assert.Equal(t, map[Quality]int{
		Forgot:     1,
		Hard:       1,
		Remembered: 38,
		Easy:       53,
	}, got)
	assert.Equal(t, 20, card.IntervalDays)
}
