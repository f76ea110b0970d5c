package tracker

import (
	"lootledger/internal/core"
)

// Delta computes the signed day-over-day change for every resource. The
// second return is false when the day itself has no snapshot: "no delta" is
// distinct from a zero delta and must stay that way for callers. A missing
// prior-day snapshot counts as all-zero, so the first recorded day reports
// its full totals as gain.
func (s *Store) Delta(day core.Day) (core.DailyDelta, bool) {
	today, ok := s.Get(day)
	if !ok {
		return core.DailyDelta{}, false
	}

	var prior core.Resources
	if yesterday, ok := s.Get(day.Prev()); ok {
		prior = yesterday.Resources
	}

	return core.DailyDelta{Day: day, Change: today.Resources.Sub(prior)}, true
}

// Summarize folds daily deltas over every recorded day in the given month.
// Days without a snapshot contribute nothing; the result is a pure sum and
// therefore independent of map iteration order. Gaps are not filled: a
// skipped day silently drops that day's true change, which is accepted
// behavior.
func (s *Store) Summarize(year, month int) core.MonthlySummary {
	summary := core.MonthlySummary{Year: year, Month: month}

	for day, snap := range s.rec.Records {
		if !day.InMonth(year, month) {
			continue
		}
		delta, ok := s.Delta(day)
		if !ok {
			continue
		}
		summary.Totals = summary.Totals.Add(delta.Change)
		summary.DaysWithData++
		if snap.Note != "" {
			summary.DaysWithNotes++
		}
	}

	return summary
}
