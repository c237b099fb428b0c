package screening

import (
	"sort"

	"github.com/campuscare/campuscare/internal/domain/risk"
)

// Order returns the screenings sorted for the triage queue: overall risk
// weight descending, then creation time ascending (first come, first
// served among equally urgent cases). The sort is stable and the input
// slice is not modified.
func Order(items []*Screening) []*Screening {
	out := make([]*Screening, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		wi, wj := out[i].OverallRisk().Weight(), out[j].OverallRisk().Weight()
		if wi != wj {
			return wi > wj
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// FilterByStatus keeps only screenings whose status is in the given set.
// Filtering is separate from ordering; callers compose the two.
func FilterByStatus(items []*Screening, statuses ...Status) []*Screening {
	if len(statuses) == 0 {
		return items
	}
	keep := make(map[Status]bool, len(statuses))
	for _, st := range statuses {
		keep[st] = true
	}
	var out []*Screening
	for _, s := range items {
		if keep[s.Status] {
			out = append(out, s)
		}
	}
	return out
}

// FilterByRisk keeps only screenings whose overall risk equals level.
func FilterByRisk(items []*Screening, level risk.Level) []*Screening {
	var out []*Screening
	for _, s := range items {
		if s.OverallRisk() == level {
			out = append(out, s)
		}
	}
	return out
}
