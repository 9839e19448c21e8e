package statistics_test

import (
	"fmt"
	"time"

	"github.com/at-ishikawa/reviewdeck/internal/srs"
	"github.com/at-ishikawa/reviewdeck/internal/statistics"
)

func ExampleCalculate() {
	today := srs.NewDate(2025, time.March, 10)
	cards := []srs.Card{
		srs.New("apple", srs.Vocabulary, today),
		srs.ProcessReview(srs.New("banana", srs.Vocabulary, today), srs.Remembered, today),
	}

	s := statistics.Calculate(cards, today)
	fmt.Printf("total=%d new=%d learning=%d due=%d\n", s.Total, s.New, s.Learning, s.DueToday)
	// Output: total=2 new=1 learning=1 due=1
}
