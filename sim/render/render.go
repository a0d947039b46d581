// Package render turns a composed result into viewer output. Each Adapter reads
// one view of the result and never modifies it.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/eduwrench/simclient/sim/compose"
)

// Adapter consumes a composed result and writes one view of it.
type Adapter interface {
	Name() string
	Render(w io.Writer, r *compose.Result) error
}

// barWidth is the number of character cells used for text bars.
const barWidth = 20

// TextAdapters returns the four text views in display order.
func TextAdapters() []Adapter {
	return []Adapter{LogView{}, TimelineView{}, UtilizationView{}, TableView{}}
}

// RenderAll writes each adapter's output under a "== name ==" heading. An
// adapter that fails does not stop the others; all errors are returned joined.
func RenderAll(w io.Writer, r *compose.Result, adapters ...Adapter) error {
	var errs []error
	for i, a := range adapters {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "== %s ==\n", a.Name()); err != nil {
			return err
		}
		if err := a.Render(w, r); err != nil {
			errs = append(errs, fmt.Errorf("rendering %s: %w", a.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func orEmpty(r *compose.Result) *compose.Result {
	if r == nil {
		return compose.Compose(nil)
	}
	return r
}

// LogView prints the execution log one line at a time.
type LogView struct{}

func (LogView) Name() string { return "log" }

func (LogView) Render(w io.Writer, r *compose.Result) error {
	r = orEmpty(r)
	if len(r.Log.Lines) == 0 {
		_, err := fmt.Fprintln(w, "(no log output)")
		return err
	}
	for _, line := range r.Log.Lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// TimelineView draws a text Gantt chart, one block per host.
type TimelineView struct{}

func (TimelineView) Name() string { return "timeline" }

func (TimelineView) Render(w io.Writer, r *compose.Result) error {
	r = orEmpty(r)
	tl := r.Timeline
	if len(tl.Lanes) == 0 {
		_, err := fmt.Fprintln(w, "timeline: no task data")
		return err
	}

	idW, typeW := 0, 0
	for _, lane := range tl.Lanes {
		for _, rec := range lane.Records {
			idW = max(idW, len(rec.TaskID))
			typeW = max(typeW, len(rec.Type))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "timeline %.2f - %.2f (%d hosts)\n", tl.Start, tl.End, len(tl.Lanes))
	for _, lane := range tl.Lanes {
		fmt.Fprintf(&b, "%s\n", lane.Host)
		for _, rec := range lane.Records {
			bar := ganttBar(rec.StartTime, rec.EndTime, tl.Start, tl.End)
			fmt.Fprintf(&b, "  %-*s %-*s |%s| %7.2f - %7.2f\n", idW, rec.TaskID, typeW, rec.Type, bar, rec.StartTime, rec.EndTime)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// ganttBar places [start, end] on a barWidth-cell axis spanning [lo, hi].
// Every task gets at least one cell.
func ganttBar(start, end, lo, hi float64) string {
	scale := 0.0
	if hi > lo {
		scale = barWidth / (hi - lo)
	}
	s := clamp(int(math.Round((start-lo)*scale)), 0, barWidth-1)
	e := clamp(int(math.Round((end-lo)*scale)), 0, barWidth)
	if e <= s {
		e = s + 1
	}
	return strings.Repeat(" ", s) + strings.Repeat("#", e-s) + strings.Repeat(" ", barWidth-e)
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// UtilizationView draws one bar per host.
type UtilizationView struct{}

func (UtilizationView) Name() string { return "utilization" }

func (UtilizationView) Render(w io.Writer, r *compose.Result) error {
	r = orEmpty(r)
	u := r.Utilization
	if len(u.Hosts) == 0 {
		_, err := fmt.Fprintln(w, "utilization: no task data")
		return err
	}
	hostW := 0
	for _, h := range u.Hosts {
		hostW = max(hostW, len(h.Host))
	}
	span := u.End - u.Start
	var b strings.Builder
	for _, h := range u.Hosts {
		filled := clamp(int(math.Round(h.Utilization*barWidth)), 0, barWidth)
		bar := strings.Repeat("#", filled) + strings.Repeat(" ", barWidth-filled)
		fmt.Fprintf(&b, "%-*s |%s| %5.1f%%  busy %.2f of %.2f  (%d tasks)\n",
			hostW, h.Host, bar, h.Utilization*100, h.BusyTime, span, h.Tasks)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// TableView prints the flat task listing with aligned columns.
type TableView struct{}

func (TableView) Name() string { return "table" }

func (TableView) Render(w io.Writer, r *compose.Result) error {
	r = orEmpty(r)
	t := r.Table
	cols := t.Columns
	if len(cols) != len(compose.TableColumns) {
		cols = compose.TableColumns
	}
	idW, hostW, typeW := len(cols[0]), len(cols[1]), len(cols[2])
	for _, row := range t.Rows {
		idW = max(idW, len(row.TaskID))
		hostW = max(hostW, len(row.Host))
		typeW = max(typeW, len(row.Type))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s  %-*s  %-*s  %10s  %10s  %10s\n", idW, cols[0], hostW, cols[1], typeW, cols[2], cols[3], cols[4], cols[5])
	for _, row := range t.Rows {
		fmt.Fprintf(&b, "%-*s  %-*s  %-*s  %10.2f  %10.2f  %10.2f\n", idW, row.TaskID, hostW, row.Host, typeW, row.Type, row.Start, row.End, row.Duration)
	}
	if len(t.Rows) == 0 {
		b.WriteString("(no task data)\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
