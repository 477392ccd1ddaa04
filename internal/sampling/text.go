package sampling

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ossf/entropy-analysis/internal/metrics"
	"github.com/ossf/entropy-analysis/internal/randtest"
)

var gradeText = map[metrics.Grade]string{
	metrics.GradeExcellent: "Excellent entropy quality",
	metrics.GradeGood:      "Good entropy quality",
	metrics.GradePoor:      "Entropy quality could be improved",
}

// WriteText writes a human readable report of a to w. The byte frequency
// table is included when withFrequency is set.
func (a Analysis) WriteText(w io.Writer, withFrequency bool) error {
	m := a.Metrics
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Source:\t%s\n", a.SourceName)
	fmt.Fprintf(tw, "Sample size:\t%d bytes\n", m.TotalBytes)
	fmt.Fprintf(tw, "Sample SHA-256:\t%s\n\n", a.SampleSHA256)

	fmt.Fprintf(tw, "Shannon entropy:\t%.4f bits/byte (max %.1f)\n", m.ShannonEntropy, metrics.MaxEntropy)
	fmt.Fprintf(tw, "Min-entropy:\t%.4f bits/byte\n", m.MinEntropy)
	fmt.Fprintf(tw, "Mean byte value:\t%.2f (ideal %.1f)\n", m.Mean, metrics.IdealMean)
	fmt.Fprintf(tw, "Chi-square:\t%.2f\n", m.ChiSquare)
	fmt.Fprintf(tw, "Longest bit run:\t%d bits\n", m.LongestRun)
	fmt.Fprintf(tw, "Overall score:\t%.1f/100\n", a.OverallScore)
	fmt.Fprintf(tw, "Assessment:\t%s\n\n", gradeText[a.Grade])

	for _, r := range a.Report {
		status := "FAIL"
		if r.Passed() {
			status = "PASS"
		}
		fmt.Fprintf(tw, "%s\tp=%.4f\t%s\n", r.Name, r.PValue, status)
	}
	fmt.Fprintf(tw, "Tests passed:\t%d/%d\n", a.TestsPassed, len(a.Report))
	if a.Consistent {
		fmt.Fprintf(tw, "Verdict:\tconsistent with randomness (at least %d/%d at p >= %v)\n",
			randtest.MinPassed, len(a.Report), randtest.Threshold)
	} else {
		fmt.Fprintf(tw, "Verdict:\tshows signs of non-randomness\n")
	}

	if withFrequency {
		fmt.Fprintf(tw, "\nByte frequency (observed values):\n")
		for _, p := range m.ByteFrequency.ValueCounts().ToPairs() {
			fmt.Fprintf(tw, "0x%02X\t%d\n", p.Value, p.Count)
		}
	}
	return tw.Flush()
}
