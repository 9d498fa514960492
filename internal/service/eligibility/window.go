package eligibility

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// Window is the inclusive date range of one wagering period.
type Window struct {
	Index int64
	Start time.Time
	End   time.Time
}

// StartDate and EndDate format the bounds the way the affiliate API expects.
func (w Window) StartDate() string { return w.Start.Format(time.DateOnly) }
func (w Window) EndDate() string   { return w.End.Format(time.DateOnly) }

// Period splits time into fixed-length windows counted from an anchor date.
type Period struct {
	anchor time.Time
	days   int
}

// NewPeriod builds a Period from an anchor in YYYY-MM-DD form, interpreted as UTC midnight.
func NewPeriod(anchorDate string, days int) (Period, error) {
	if days <= 0 {
		return Period{}, fmt.Errorf("period length must be > 0, got %d", days)
	}
	anchor, err := time.Parse(time.DateOnly, anchorDate)
	if err != nil {
		return Period{}, fmt.Errorf("invalid anchor date %q: %w", anchorDate, err)
	}
	return Period{anchor: anchor.UTC(), days: days}, nil
}

// WindowAt returns the window containing now. Elapsed whole days and the period
// index both use floor division, so instants before the anchor map to negative indexes.
func (p Period) WindowAt(now time.Time) Window {
	elapsed := floorDiv(int64(now.UTC().Sub(p.anchor)), int64(day))
	index := floorDiv(elapsed, int64(p.days))
	start := p.anchor.AddDate(0, 0, int(index)*p.days)
	return Window{
		Index: index,
		Start: start,
		End:   start.AddDate(0, 0, p.days-1),
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
