package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/evalgate/evalgate/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one evaluation run.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one evaluation case.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
}

// JUnitFailure represents a case that ran but did not pass.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError represents a case that could not execute.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts a run record to JUnit XML format.
func ConvertToJUnit(record *models.RunRecord) *JUnitTestSuites {
	durationSec := float64(record.DurationMs) / 1000.0

	failures, errors := 0, 0
	for i := range record.Cases {
		if record.Cases[i].Passed {
			continue
		}
		if isExecutionError(&record.Cases[i]) {
			errors++
		} else {
			failures++
		}
	}

	properties := []JUnitProperty{
		{Name: "version", Value: record.Version},
		{Name: "mode", Value: string(record.Mode)},
		{Name: "model", Value: record.Model},
	}
	if record.Summary.AvgScore != nil {
		properties = append(properties, JUnitProperty{
			Name:  "avg_score",
			Value: fmt.Sprintf("%.4f", *record.Summary.AvgScore),
		})
	}

	suite := JUnitTestSuite{
		Name:       record.PromptName,
		Tests:      record.Summary.Total,
		Failures:   failures,
		Errors:     errors,
		Time:       durationSec,
		Timestamp:  record.Timestamp.Format(time.RFC3339),
		Properties: properties,
	}

	for i := range record.Cases {
		suite.TestCases = append(suite.TestCases, convertCase(record.PromptName, &record.Cases[i]))
	}

	return &JUnitTestSuites{
		Tests:      record.Summary.Total,
		Failures:   failures,
		Errors:     errors,
		Time:       durationSec,
		TestSuites: []JUnitTestSuite{suite},
	}
}

func convertCase(promptName string, v *models.CaseVerdict) JUnitTestCase {
	tc := JUnitTestCase{
		Name:      v.CaseID,
		Classname: promptName,
		Time:      float64(v.DurationMs) / 1000.0,
	}

	if v.Passed {
		return tc
	}

	if isExecutionError(v) {
		tc.Error = &JUnitError{
			Message: v.FailReason,
			Type:    "ExecutionError",
		}
		return tc
	}

	message := v.FailReason
	if message == "" {
		message = "failed"
	}
	tc.Failure = &JUnitFailure{
		Message: message,
		Type:    "EvaluationFailure",
		Body:    formatFailedChecks(v),
	}
	return tc
}

func isExecutionError(v *models.CaseVerdict) bool {
	return strings.HasPrefix(v.FailReason, "execution_error") ||
		strings.HasPrefix(v.FailReason, "phase1_json_parse_error")
}

func formatFailedChecks(v *models.CaseVerdict) string {
	// Sort for deterministic output
	names := make([]string, 0, len(v.RuleResults))
	for name := range v.RuleResults {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		r := v.RuleResults[name]
		if !r.Passed {
			fmt.Fprintf(&b, "[FAIL] %s: score=%.2f %s\n", name, r.Score, r.Details)
		}
	}

	criteria := make([]string, 0, len(v.JudgeResults))
	for criterion := range v.JudgeResults {
		criteria = append(criteria, criterion)
	}
	sort.Strings(criteria)

	for _, criterion := range criteria {
		r := v.JudgeResults[criterion]
		if r.Score < 1.0 || r.Errored {
			fmt.Fprintf(&b, "[JUDGE] %s: score=%.2f %s\n", criterion, r.Score, r.Rationale)
		}
	}

	return b.String()
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(record *models.RunRecord, path string) error {
	suites := ConvertToJUnit(record)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
