// Package statistics derives display counts from a card collection.
package statistics

import "github.com/at-ishikawa/reviewdeck/internal/srs"

// Summary holds the per-status counts of a collection.
type Summary struct {
	Total    int `json:"total"`
	New      int `json:"new"`
	Learning int `json:"learning"`
	Review   int `json:"review"`
	Mastered int `json:"mastered"`
	DueToday int `json:"due_today"` // next_review_date <= today
}

// DayLoad is the number of cards scheduled on one date.
type DayLoad struct {
	Date  srs.Date
	Count int
}

// Calculate counts cards by status and counts the cards due on today.
func Calculate(cards []srs.Card, today srs.Date) Summary {
	var s Summary
	for _, c := range cards {
		s.add(c, today)
	}
	return s
}

// CalculateByKind returns one Summary per item kind present in cards.
func CalculateByKind(cards []srs.Card, today srs.Date) map[srs.ItemKind]Summary {
	byKind := make(map[srs.ItemKind]Summary)
	for _, c := range cards {
		s := byKind[c.ItemKind]
		s.add(c, today)
		byKind[c.ItemKind] = s
	}
	return byKind
}

// Forecast returns how many cards fall due on each of the next days, starting with today.
// Overdue cards are counted on today. Days without cards are included with a zero count.
func Forecast(cards []srs.Card, today srs.Date, days int) []DayLoad {
	if days <= 0 {
		return nil
	}

	counts := make(map[int]int)
	for _, c := range cards {
		offset := max(today.DaysUntil(c.NextReviewDate), 0)
		if offset < days {
			counts[offset]++
		}
	}

	loads := make([]DayLoad, 0, days)
	for offset := range days {
		loads = append(loads, DayLoad{Date: today.AddDays(offset), Count: counts[offset]})
	}
	return loads
}

func (s *Summary) add(c srs.Card, today srs.Date) {
	s.Total++
	switch c.Status {
	case srs.StatusNew:
		s.New++
	case srs.StatusLearning:
		s.Learning++
	case srs.StatusReview:
		s.Review++
	case srs.StatusMastered:
		s.Mastered++
	}
	if c.IsDue(today) {
		s.DueToday++
	}
}
