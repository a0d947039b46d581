package compose

import "sort"

// Summary aggregates headline numbers from a composed Result.
type Summary struct {
	TotalTasks  int
	Hosts       int
	Makespan    float64        // global end minus global start
	TypeCounts  map[string]int // task type → count
	BusiestHost string
}

// Summarize computes aggregate statistics from a Result.
// Safe for nil or empty results (returns zero-value fields).
func Summarize(r *Result) *Summary {
	summary := &Summary{
		TypeCounts: make(map[string]int),
	}
	if r == nil {
		return summary
	}

	summary.TotalTasks = len(r.Records)
	for _, rec := range r.Records {
		summary.TypeCounts[rec.Type]++
	}
	summary.Hosts = len(r.Utilization.Hosts)
	summary.Makespan = r.Utilization.End - r.Utilization.Start

	best := -1.0
	for _, h := range r.Utilization.Hosts {
		if h.BusyTime > best {
			best = h.BusyTime
			summary.BusiestHost = h.Host
		}
	}

	return summary
}

// Types returns the task types present, sorted.
func (s *Summary) Types() []string {
	types := make([]string, 0, len(s.TypeCounts))
	for t := range s.TypeCounts {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
