package srs

import "time"

// Clock provides the current calendar date.
type Clock interface {
	Today() Date
}

// SystemClock reads the wall clock in Location (time.Local when nil).
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Today() Date {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return DateOf(time.Now().In(loc))
}

// FixedClock returns a date controlled by the caller, for simulating multi-day sequences.
type FixedClock struct {
	date Date
}

func NewFixedClock(date Date) *FixedClock {
	return &FixedClock{date: date}
}

func (c *FixedClock) Today() Date {
	return c.date
}

// Advance moves the clock forward by days (backward when negative).
func (c *FixedClock) Advance(days int) {
	c.date = c.date.AddDays(days)
}

func (c *FixedClock) Set(date Date) {
	c.date = date
}
