package tracker

import (
	"lootledger/internal/core"
)

// Warning flags a proposed total that is lower than the prior day's. Totals
// are cumulative, so a decrease usually means a data-entry mistake; the save
// is never blocked, the caller must surface the warning and ask for
// confirmation before committing.
type Warning struct {
	Field    string `json:"field"`
	Proposed int64  `json:"proposed"`
	Prior    int64  `json:"prior"`
}

// resourceFields fixes the comparison order so repeated PrepareSave calls
// with the same inputs produce identical warning lists.
var resourceFields = []struct {
	name string
	get  func(core.Resources) int64
}{
	{"gold", func(r core.Resources) int64 { return r.Gold }},
	{"heart_points", func(r core.Resources) int64 { return r.HeartPoints }},
	{"highlight_coupons", func(r core.Resources) int64 { return r.HighlightCoupons }},
	{"new_highlight", func(r core.Resources) int64 { return r.NewHighlight }},
	{"return_highlight", func(r core.Resources) int64 { return r.ReturnHighlight }},
	{"exit_highlight", func(r core.Resources) int64 { return r.ExitHighlight }},
	{"highlight_coins", func(r core.Resources) int64 { return r.HighlightCoins }},
}

// PrepareSave validates a proposed snapshot against the prior calendar day
// and returns one warning per resource that shrank. A missing prior day
// compares against all-zero, so only negative proposed values warn then.
// Inputs are assumed to be already-coerced integers; coercion of
// non-numeric form values to zero is the input layer's job.
func (s *Store) PrepareSave(day core.Day, proposed core.Snapshot) []Warning {
	var prior core.Resources
	if yesterday, ok := s.Get(day.Prev()); ok {
		prior = yesterday.Resources
	}

	var warnings []Warning
	for _, f := range resourceFields {
		p, y := f.get(proposed.Resources), f.get(prior)
		if p < y {
			warnings = append(warnings, Warning{Field: f.name, Proposed: p, Prior: y})
		}
	}
	return warnings
}
