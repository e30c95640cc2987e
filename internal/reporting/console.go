// Package reporting renders run records for humans and CI systems.
package reporting

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/evalgate/evalgate/internal/models"
	"github.com/evalgate/evalgate/internal/regression"
)

const reportRule = "============================================================"

// maxListedCases caps per-section case listings in reports.
const maxListedCases = 5

// InterpretScore returns a plain-language label for a numeric score (0-1).
func InterpretScore(score float64) string {
	pct := score * 100
	switch {
	case pct > 90:
		return "Excellent (>90%)"
	case pct >= 70:
		return "Good (70-90%)"
	case pct >= 50:
		return "Needs Work (50-70%)"
	default:
		return "Poor (<50%)"
	}
}

// FormatRunReport renders a run record as console text.
func FormatRunReport(record *models.RunRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Evaluation run: %s", record.PromptName)
	if record.Version != "" {
		fmt.Fprintf(&b, " (%s)", record.Version)
	}
	b.WriteString("\n")
	b.WriteString(reportRule + "\n")
	fmt.Fprintf(&b, "Mode: %s", record.Mode)
	if record.Model != "" {
		fmt.Fprintf(&b, "  Model: %s", record.Model)
	}
	fmt.Fprintf(&b, "  Duration: %v\n\n", time.Duration(record.DurationMs)*time.Millisecond)

	s := record.Summary
	fmt.Fprintf(&b, "Cases: %d passed, %d failed out of %d (%.1f%%)\n", s.Passed, s.Failed, s.Total, s.PassRate*100)
	if s.AvgScore != nil {
		fmt.Fprintf(&b, "Avg Score: %.3f - %s\n", *s.AvgScore, InterpretScore(*s.AvgScore))
	}

	for i := range record.Cases {
		v := &record.Cases[i]
		icon := "✓"
		if !v.Passed {
			icon = "✗"
		}
		fmt.Fprintf(&b, "  %s %s", icon, v.CaseID)
		if v.OverallScore != nil {
			fmt.Fprintf(&b, " (%.3f)", *v.OverallScore)
		}
		if v.FailReason != "" {
			fmt.Fprintf(&b, " - %s", v.FailReason)
		}
		b.WriteString("\n")
	}

	b.WriteString(reportRule)
	return b.String()
}

// FormatRegressionReport renders a regression report as console text, with
// per-section case lists truncated past the first few.
func FormatRegressionReport(report *regression.RegressionReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Regression report: %s\n", report.PromptName)
	b.WriteString(reportRule + "\n")
	fmt.Fprintf(&b, "Comparing: %s → %s\n\n", report.BaselineVersion, report.CurrentVersion)

	b.WriteString("[Summary]\n")
	fmt.Fprintf(&b, "  Pass Rate: %.1f%% → %.1f%% (%s%.1f%%)\n",
		report.BaselinePassRate*100, report.CurrentPassRate*100,
		deltaArrow(report.PassRateDelta), math.Abs(report.PassRateDelta)*100)

	if report.BaselineAvgScore != nil && report.CurrentAvgScore != nil {
		fmt.Fprintf(&b, "  Avg Score: %.3f → %.3f (%s%.3f)\n",
			*report.BaselineAvgScore, *report.CurrentAvgScore,
			deltaArrow(*report.AvgScoreDelta), math.Abs(*report.AvgScoreDelta))
	}

	b.WriteString("\n")
	if report.HasRegression {
		b.WriteString("⚠️  Regression detected!\n")
		fmt.Fprintf(&b, "  (threshold: pass rate drop over %.0f%%)\n", report.Threshold*100)
	} else {
		b.WriteString("✅ No regression\n")
	}

	writeCaseList(&b, "New failures", report.NewFailures)
	writeCaseList(&b, "Fixed cases", report.FixedCases)

	b.WriteString("\n" + reportRule)
	return b.String()
}

func writeCaseList(b *strings.Builder, title string, cases []string) {
	if len(cases) == 0 {
		return
	}
	fmt.Fprintf(b, "\n[%s] (%d)\n", title, len(cases))
	for i, c := range cases {
		if i == maxListedCases {
			fmt.Fprintf(b, "  ... and %d more\n", len(cases)-maxListedCases)
			break
		}
		fmt.Fprintf(b, "  • %s\n", c)
	}
}

func deltaArrow(delta float64) string {
	if delta >= 0 {
		return "↑"
	}
	return "↓"
}
