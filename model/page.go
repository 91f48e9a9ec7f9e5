package model

import "time"

const DefaultPageSize = 20

// Page is a zero-based page request.
type Page struct {
	Number int
	Size   int
}

func (p Page) Limit() int {
	if p.Size <= 0 {
		return DefaultPageSize
	}
	return p.Size
}

func (p Page) Offset() int {
	if p.Number <= 0 {
		return 0
	}
	return p.Number * p.Limit()
}

// Window slices an in-memory result set.
func (p Page) Window(n int) (int, int) {
	from := p.Offset()
	if from > n {
		from = n
	}
	to := from + p.Limit()
	if to > n {
		to = n
	}
	return from, to
}

// DateOf truncates t to midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days from a to b; negative when b is before a.
func DaysBetween(a, b time.Time) int64 {
	return int64(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}
