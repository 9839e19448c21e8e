package srs

// Session records one calendar day of review activity.
type Session struct {
	Date          Date `yaml:"date" json:"date"`
	ReviewedCount int  `yaml:"reviewed_count" json:"reviewed_count"`
	CorrectCount  int  `yaml:"correct_count" json:"correct_count"` // quality >= Remembered
	StreakDays    int  `yaml:"streak_days" json:"streak_days"`
}

// Accuracy returns the share of correct reviews, or 0 when nothing was reviewed.
func (s Session) Accuracy() float64 {
	if s.ReviewedCount <= 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(s.ReviewedCount)
}

// Streak counts consecutive calendar days with a completed session.
type Streak struct {
	LastCompletedDate Date `yaml:"last_completed_date,omitempty" json:"last_completed_date"`
	StreakDays        int  `yaml:"streak_days" json:"streak_days"`
}

// rollover returns s for today, resetting the counters when s belongs to another day.
// The stored streak is carried forward untouched.
func rollover(s Session, today Date) Session {
	if s.StreakDays < 0 {
		s.StreakDays = 0
	}
	if !s.Date.Equal(today) {
		return Session{Date: today, StreakDays: s.StreakDays}
	}
	if s.ReviewedCount < 0 {
		s.ReviewedCount = 0
	}
	if s.CorrectCount < 0 || s.CorrectCount > s.ReviewedCount {
		s.CorrectCount = min(max(s.CorrectCount, 0), s.ReviewedCount)
	}
	return s
}

// UpdateSession counts one review graded q on today.
func UpdateSession(s Session, q Quality, today Date) Session {
	s = rollover(s, today)
	if !q.IsValid() {
		return s
	}
	s.ReviewedCount++
	if q.IsCorrect() {
		s.CorrectCount++
	}
	return s
}

// CompleteSession marks today's session complete and advances the streak.
//
// Completing twice on the same day does not double count. Completing the day after the
// last completion extends the streak; any longer gap restarts it at 1. When the stored
// completion date is after today (the clock moved backwards) the streak is left alone.
func CompleteSession(s Session, st Streak, today Date) (Session, Streak) {
	s = rollover(s, today)
	if st.StreakDays < 0 {
		st.StreakDays = 0
	}

	last := st.LastCompletedDate
	switch {
	case last.IsZero():
		st = Streak{LastCompletedDate: today, StreakDays: 1}
	case last.Equal(today):
		st.StreakDays = max(st.StreakDays, 1)
	case last.After(today):
	case last.AddDays(1).Equal(today):
		st = Streak{LastCompletedDate: today, StreakDays: st.StreakDays + 1}
	default:
		st = Streak{LastCompletedDate: today, StreakDays: 1}
	}

	s.StreakDays = st.StreakDays
	return s, st
}

// HasCompletedToday reports whether at least one review was recorded today.
func HasCompletedToday(s Session, today Date) bool {
	return s.Date.Equal(today) && s.ReviewedCount > 0
}

// CurrentStreak returns the stored streak length.
func CurrentStreak(st Streak) int {
	return max(st.StreakDays, 0)
}
