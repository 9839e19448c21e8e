// Package srs implements the spaced-repetition scheduling engine: the per-card state
// transition, due-set selection and the daily session/streak bookkeeping.
//
// Every function in this package is a pure transformation over explicit values.
// Reading and writing state is the job of the store package.
package srs

import "math"

const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 3.0
	MaxIntervalDays   = 365

	// A simplified SM-2: fixed ease deltas instead of the quality-dependent formula.
	// Changing these changes the observed review cadence.
	lapseEasePenalty      = 0.3
	rememberedEasePenalty = 0.1
	easyEaseBonus         = 0.15
	rememberedScale       = 0.8

	secondIntervalDays      = 3
	reviewMinIntervalDays   = 7
	masteredMinRepetitions  = 5
	masteredMinIntervalDays = 30 // exclusive
)

// Card is the scheduling state of one learnable item.
type Card struct {
	ItemID          string   `yaml:"item_id" json:"item_id"`
	ItemKind        ItemKind `yaml:"item_kind" json:"item_kind"`
	EaseFactor      float64  `yaml:"ease_factor" json:"ease_factor"`
	IntervalDays    int      `yaml:"interval_days" json:"interval_days"`
	RepetitionCount int      `yaml:"repetition_count" json:"repetition_count"`
	NextReviewDate  Date     `yaml:"next_review_date" json:"next_review_date"`
	LastReviewDate  Date     `yaml:"last_review_date,omitempty" json:"last_review_date"`
	Status          Status   `yaml:"status" json:"status"`
}

// New returns a never-reviewed card that is due today.
func New(itemID string, kind ItemKind, today Date) Card {
	return Card{
		ItemID:         itemID,
		ItemKind:       kind,
		EaseFactor:     DefaultEaseFactor,
		NextReviewDate: today,
		Status:         StatusNew,
	}
}

// IsDue reports whether the card should be presented on today.
func (c Card) IsDue(today Date) bool {
	return !c.NextReviewDate.After(today)
}

// IsReviewed reports whether the card has been reviewed at least once.
func (c Card) IsReviewed() bool {
	return !c.LastReviewDate.IsZero()
}

// Normalize repairs state written by older or buggy versions instead of rejecting it.
// It clamps the ease factor and interval into range, makes an absent next review date due
// today and re-derives a status that contradicts the numeric fields.
func Normalize(c Card, today Date) Card {
	switch {
	case math.IsNaN(c.EaseFactor):
		c.EaseFactor = DefaultEaseFactor
	case c.EaseFactor < MinEaseFactor:
		c.EaseFactor = MinEaseFactor
	case c.EaseFactor > MaxEaseFactor:
		c.EaseFactor = MaxEaseFactor
	}
	c.IntervalDays = clampInterval(c.IntervalDays)
	if c.RepetitionCount < 0 {
		c.RepetitionCount = 0
	}
	if !c.ItemKind.IsValid() {
		c.ItemKind = Vocabulary
	}
	if c.NextReviewDate.IsZero() {
		c.NextReviewDate = today
	}

	switch {
	case c.RepetitionCount == 0 && !c.IsReviewed():
		c.Status = StatusNew
	case !c.Status.IsValid(), c.Status == StatusNew:
		c.Status = deriveStatus(c.RepetitionCount, c.IntervalDays)
	case c.Status == StatusMastered && !isMastered(c.RepetitionCount, c.IntervalDays):
		c.Status = deriveStatus(c.RepetitionCount, c.IntervalDays)
	}
	return c
}

// ProcessReview applies one review graded q on today and returns the next state.
// The input card is not modified. An invalid quality returns the (normalized) card unchanged.
func ProcessReview(card Card, q Quality, today Date) Card {
	c := Normalize(card, today)

	switch q {
	case Forgot, Hard:
		c.IntervalDays = 1
		c.RepetitionCount = 0
		c.EaseFactor = math.Max(MinEaseFactor, c.EaseFactor-lapseEasePenalty)
		c.Status = StatusLearning
	case Remembered, Easy:
		c.RepetitionCount++
		var multiplier float64
		if q == Easy {
			c.EaseFactor = math.Min(MaxEaseFactor, c.EaseFactor+easyEaseBonus)
			multiplier = c.EaseFactor
		} else {
			c.EaseFactor = math.Max(MinEaseFactor, c.EaseFactor-rememberedEasePenalty)
			multiplier = c.EaseFactor * rememberedScale
		}

		switch c.IntervalDays {
		case 0:
			c.IntervalDays = 1
		case 1:
			c.IntervalDays = secondIntervalDays
		default:
			c.IntervalDays = int(math.Round(float64(c.IntervalDays) * multiplier))
		}
		c.IntervalDays = clampInterval(c.IntervalDays)
		c.Status = deriveStatus(c.RepetitionCount, c.IntervalDays)
	default:
		return c
	}

	c.LastReviewDate = today
	c.NextReviewDate = today.AddDays(c.IntervalDays)
	return c
}

// PreviewIntervals returns the interval each grade would schedule, for showing on the rating buttons.
func PreviewIntervals(card Card, today Date) map[Quality]int {
	preview := make(map[Quality]int, len(qualityNames))
	for _, q := range Qualities() {
		preview[q] = ProcessReview(card, q, today).IntervalDays
	}
	return preview
}

func deriveStatus(repetitions, intervalDays int) Status {
	switch {
	case isMastered(repetitions, intervalDays):
		return StatusMastered
	case intervalDays >= reviewMinIntervalDays:
		return StatusReview
	default:
		return StatusLearning
	}
}

func isMastered(repetitions, intervalDays int) bool {
	return repetitions >= masteredMinRepetitions && intervalDays > masteredMinIntervalDays
}

func clampInterval(days int) int {
	if days < 0 {
		return 0
	}
	if days > MaxIntervalDays {
		return MaxIntervalDays
	}
	return days
}
