package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"biosim/internal/sims/biosim"
)

// writeReport prints the final population and, when the snapshot carries
// animal samples, attribute summaries and histograms per species.
func writeReport(out io.Writer, snap biosim.Snapshot, hists map[string]biosim.HistogramSpec) {
	fmt.Fprintf(out, "Year %d: %d herbivores, %d carnivores\n", snap.Year, snap.Herbivores, snap.Carnivores)
	if len(snap.Animals) == 0 {
		return
	}

	attrs := make([]string, 0, len(hists))
	for name := range hists {
		attrs = append(attrs, name)
	}
	sort.Strings(attrs)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "species\tattribute\tn\tmean\tstd\tmin\tmax")
	for _, sp := range biosim.AllSpecies {
		for _, attr := range attrs {
			s := biosim.Summarize(snap.Values(sp, attr))
			fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\n", sp, attr, s.N, s.Mean, s.StdDev, s.Min, s.Max)
		}
	}
	tw.Flush()

	for _, attr := range attrs {
		spec := hists[attr]
		fmt.Fprintf(out, "\n%s histogram (bin %g)\n", attr, spec.Delta)
		for _, sp := range biosim.AllSpecies {
			counts := biosim.Histogram(snap.Values(sp, attr), spec)
			parts := make([]string, len(counts))
			for i, c := range counts {
				parts[i] = fmt.Sprintf("%.0f", c)
			}
			fmt.Fprintf(out, "  %-10s %s\n", sp, strings.Join(parts, " "))
		}
	}
}
