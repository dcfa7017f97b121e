package monitor

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"
)

// PerformanceReport renders the last snapshot as text.
func (m *PerformanceMonitor) PerformanceReport() string {
	snap := m.CurrentMetrics()

	m.lifecycleMu.Lock()
	state, interval := m.state, m.interval
	m.lifecycleMu.Unlock()

	var b strings.Builder
	b.WriteString("Selector performance report\n")
	fmt.Fprintf(&b, "Monitor: %s", state)
	if state == StateEnabled {
		fmt.Fprintf(&b, " (every %s)", interval)
	}
	b.WriteString("\n")

	if snap.Timestamp.IsZero() {
		b.WriteString("No collection has run yet.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Collected: %s\n", snap.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "Total calls: %d (hits %d, misses %d, hit ratio %.1f%%)\n",
		snap.TotalCalls, snap.TotalHits, snap.TotalMisses, percent(snap.TotalHits, snap.TotalCalls))
	fmt.Fprintf(&b, "Active selectors: %d/%d, average execution %s\n",
		snap.ActiveSelectors, len(snap.Selectors), snap.AverageExecutionTime)

	if len(snap.Selectors) > 0 {
		b.WriteString("\n")
		tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SELECTOR\tCALLS\tHITS\tHIT%\tAVG\tMAX\tSIZE\tFLAGS")
		for _, s := range snap.Selectors {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f\t%s\t%s\t%d\t%s\n",
				s.Name,
				s.Metrics.TotalCalls,
				s.Metrics.CacheHits,
				s.HitRatio*100,
				s.Metrics.AverageExecutionTime,
				s.Metrics.MaxExecutionTime,
				s.Metrics.CacheSize,
				flags(s),
			)
		}
		_ = tw.Flush()
	}

	if len(snap.SlowSelectors) > 0 {
		fmt.Fprintf(&b, "\nSlow (avg > %s): %s\n", m.cfg.SlowThreshold, strings.Join(snap.SlowSelectors, ", "))
	}
	if len(snap.InefficientSelectors) > 0 {
		fmt.Fprintf(&b, "Inefficient (low hit ratio): %s\n", strings.Join(snap.InefficientSelectors, ", "))
	}
	if len(snap.Failures) > 0 {
		b.WriteString("\nSkipped:\n")
		for _, f := range snap.Failures {
			fmt.Fprintf(&b, "  %s: %s\n", f.Name, f.Message)
		}
	}
	return b.String()
}

func flags(s SelectorStatus) string {
	var out []string
	if s.Active {
		out = append(out, "active")
	}
	if s.Slow {
		out = append(out, "slow")
	}
	if s.Inefficient {
		out = append(out, "inefficient")
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ",")
}

func percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}
