// Package compose reshapes a simulation response into the read-only views the
// renderers consume. Every function here is pure: records are copied, never
// filtered or mutated, and the same response always yields the same result.
package compose

import (
	"regexp"
	"sort"
	"strings"

	"github.com/eduwrench/simclient/sim"
)

// Result is the composed form of one simulation response.
type Result struct {
	Records     []sim.TaskRecord
	Log         ExecutionLog
	Timeline    Timeline
	Utilization Utilization
	Table       Table
}

// ExecutionLog is the textual log with inline markup collapsed into line breaks.
type ExecutionLog struct {
	Raw       string
	Lines     []string
	TaskCount int
}

// Timeline groups records into per-host lanes.
type Timeline struct {
	Start float64
	End   float64
	Lanes []Lane
}

// Lane is one host's records ordered by (start, end, task id).
type Lane struct {
	Host    string
	Records []sim.TaskRecord
}

// Utilization aggregates busy time per host over the response's global span.
type Utilization struct {
	Start float64
	End   float64
	Hosts []HostUtilization
}

// HostUtilization is one host's share of the span.
type HostUtilization struct {
	Host        string
	Tasks       int
	BusyTime    float64 // union length of the host's task intervals
	Utilization float64 // BusyTime / span, 0 when the span is empty
}

// Table is the flat tabular listing, rows in response order.
type Table struct {
	Columns []string
	Rows    []Row
}

// Row is one table line.
type Row struct {
	TaskID   string
	Host     string
	Type     string
	Start    float64
	End      float64
	Duration float64
}

// TableColumns names the table columns in order.
var TableColumns = []string{"taskId", "host", "type", "startTime", "endTime", "duration"}

// markup matches an inline tag with its surrounding whitespace, e.g. " <br/> ".
var markup = regexp.MustCompile(`\s*<[^>]*>\s*`)

// Compose builds every view from resp. A nil or empty response yields empty,
// non-nil slices in each view.
func Compose(resp *sim.SimulationResponse) *Result {
	var output string
	var tasks []sim.TaskRecord
	if resp != nil {
		output = resp.Output
		tasks = resp.Tasks
	}
	records := copyRecords(tasks)
	return &Result{
		Records:     records,
		Log:         composeLog(output, len(records)),
		Timeline:    composeTimeline(records),
		Utilization: composeUtilization(records),
		Table:       composeTable(records),
	}
}

func copyRecords(in []sim.TaskRecord) []sim.TaskRecord {
	out := make([]sim.TaskRecord, len(in))
	copy(out, in)
	return out
}

func composeLog(raw string, taskCount int) ExecutionLog {
	lines := []string{}
	for _, line := range strings.Split(markup.ReplaceAllString(raw, "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return ExecutionLog{Raw: raw, Lines: lines, TaskCount: taskCount}
}

// span returns [min start, max end] over records, or zeros when empty.
func span(records []sim.TaskRecord) (float64, float64) {
	if len(records) == 0 {
		return 0, 0
	}
	start, end := records[0].StartTime, records[0].EndTime
	for _, r := range records[1:] {
		if r.StartTime < start {
			start = r.StartTime
		}
		if r.EndTime > end {
			end = r.EndTime
		}
	}
	return start, end
}

// byHost groups records by host and returns host names sorted.
func byHost(records []sim.TaskRecord) ([]string, map[string][]sim.TaskRecord) {
	groups := make(map[string][]sim.TaskRecord)
	for _, r := range records {
		groups[r.Host] = append(groups[r.Host], r)
	}
	hosts := make([]string, 0, len(groups))
	for h := range groups {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts, groups
}

func composeTimeline(records []sim.TaskRecord) Timeline {
	start, end := span(records)
	hosts, groups := byHost(records)
	lanes := make([]Lane, 0, len(hosts))
	for _, h := range hosts {
		lane := copyRecords(groups[h])
		sort.SliceStable(lane, func(i, j int) bool {
			a, b := lane[i], lane[j]
			if a.StartTime != b.StartTime {
				return a.StartTime < b.StartTime
			}
			if a.EndTime != b.EndTime {
				return a.EndTime < b.EndTime
			}
			return a.TaskID < b.TaskID
		})
		lanes = append(lanes, Lane{Host: h, Records: lane})
	}
	return Timeline{Start: start, End: end, Lanes: lanes}
}

func composeUtilization(records []sim.TaskRecord) Utilization {
	start, end := span(records)
	hosts, groups := byHost(records)
	out := make([]HostUtilization, 0, len(hosts))
	for _, h := range hosts {
		busy := busyTime(groups[h])
		u := HostUtilization{Host: h, Tasks: len(groups[h]), BusyTime: busy}
		if end > start {
			u.Utilization = busy / (end - start)
		}
		out = append(out, u)
	}
	return Utilization{Start: start, End: end, Hosts: out}
}

// busyTime returns the length of the union of the records' intervals.
// Inverted intervals contribute nothing.
func busyTime(records []sim.TaskRecord) float64 {
	type interval struct{ s, e float64 }
	ivs := make([]interval, 0, len(records))
	for _, r := range records {
		if r.EndTime > r.StartTime {
			ivs = append(ivs, interval{r.StartTime, r.EndTime})
		}
	}
	if len(ivs) == 0 {
		return 0
	}
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].s < ivs[j].s })
	total := 0.0
	cur := ivs[0]
	for _, iv := range ivs[1:] {
		if iv.s <= cur.e {
			if iv.e > cur.e {
				cur.e = iv.e
			}
			continue
		}
		total += cur.e - cur.s
		cur = iv
	}
	return total + cur.e - cur.s
}

func composeTable(records []sim.TaskRecord) Table {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			TaskID:   r.TaskID,
			Host:     r.Host,
			Type:     r.Type,
			Start:    r.StartTime,
			End:      r.EndTime,
			Duration: r.Duration(),
		})
	}
	columns := make([]string, len(TableColumns))
	copy(columns, TableColumns)
	return Table{Columns: columns, Rows: rows}
}

// RecordCount returns how many records each view addresses. Every view sees
// the full sequence, so the counts always agree.
func (r *Result) RecordCount() map[string]int {
	if r == nil {
		return map[string]int{"log": 0, "timeline": 0, "utilization": 0, "table": 0}
	}
	timeline := 0
	for _, l := range r.Timeline.Lanes {
		timeline += len(l.Records)
	}
	utilization := 0
	for _, h := range r.Utilization.Hosts {
		utilization += h.Tasks
	}
	return map[string]int{
		"log":         r.Log.TaskCount,
		"timeline":    timeline,
		"utilization": utilization,
		"table":       len(r.Table.Rows),
	}
}
