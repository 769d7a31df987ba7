package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/pyidoc/pyidoc/internal/models"
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

// JUnitTestSuite maps to one declaration file, or to the embedded examples.
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

// JUnitTestCase maps to one synthesized test or one runtime module.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure represents a test assertion failure.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError represents an unexpected error during test execution.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a test as skipped.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// Classname used for the embedded-example suite.
const doctestSuiteName = "doctests"

// ConvertToJUnit converts an Outcome to JUnit XML format: one suite for the
// embedded examples, then one suite per declaration file.
func ConvertToJUnit(outcome *models.Outcome) *JUnitTestSuites {
	timestamp := outcome.Timestamp.Format(time.RFC3339)

	suites := &JUnitTestSuites{
		Time: float64(outcome.Summary.DurationMs) / 1000.0,
	}

	if len(outcome.Doctests) > 0 || len(outcome.SkippedModules) > 0 {
		suites.TestSuites = append(suites.TestSuites, convertDoctests(outcome, timestamp))
	}

	for _, f := range outcome.Files {
		suites.TestSuites = append(suites.TestSuites, convertFile(outcome.Package, &f, timestamp))
	}

	for _, s := range suites.TestSuites {
		suites.Tests += s.Tests
		suites.Failures += s.Failures
		suites.Errors += s.Errors
	}

	return suites
}

func convertDoctests(outcome *models.Outcome, timestamp string) JUnitTestSuite {
	suite := JUnitTestSuite{
		Name:      doctestSuiteName,
		Timestamp: timestamp,
		Properties: []JUnitProperty{
			{Name: "package", Value: outcome.Package},
			{Name: "attempted", Value: fmt.Sprintf("%d", outcome.Summary.DoctestsAttempted)},
		},
	}

	for _, m := range outcome.Doctests {
		tc := JUnitTestCase{Name: m.Name, Classname: doctestSuiteName}
		if m.Failed > 0 {
			tc.Failure = &JUnitFailure{
				Message: fmt.Sprintf("%s: %d of %d examples failed", m.Name, m.Failed, m.Attempted),
				Type:    "DoctestFailure",
			}
			suite.Failures++
		}
		suite.TestCases = append(suite.TestCases, tc)
		suite.Tests++
	}

	// modules that could not be imported are reported, not failed
	for _, m := range outcome.SkippedModules {
		suite.TestCases = append(suite.TestCases, JUnitTestCase{
			Name:      m.Name,
			Classname: doctestSuiteName,
			Skipped:   &JUnitSkipped{Message: m.Error},
		})
		suite.Skipped++
	}

	return suite
}

func convertFile(pkg string, f *models.FileResult, timestamp string) JUnitTestSuite {
	classname := pkg + "." + f.Module
	suite := JUnitTestSuite{
		Name:      f.Path,
		Timestamp: timestamp,
	}
	if f.UnitPath != "" {
		suite.Properties = append(suite.Properties, JUnitProperty{Name: "unit", Value: f.UnitPath})
	}

	if f.Error != "" {
		suite.TestCases = append(suite.TestCases, JUnitTestCase{
			Name:      f.Module,
			Classname: classname,
			Error:     &JUnitError{Message: f.Error, Type: "UnitError"},
		})
		suite.Tests++
		suite.Errors++
		return suite
	}

	var totalMs int64
	for _, tr := range f.Tests {
		tc := JUnitTestCase{
			Name:      tr.Name,
			Classname: classname,
			Time:      float64(tr.DurationMs) / 1000.0,
		}
		totalMs += tr.DurationMs

		switch tr.Status {
		case models.StatusFailed:
			tc.Failure = buildFailure(&tr)
			suite.Failures++
		case models.StatusError:
			tc.Error = &JUnitError{Message: tr.Error, Type: "ExecutionError"}
			suite.Errors++
		}

		suite.TestCases = append(suite.TestCases, tc)
		suite.Tests++
	}
	suite.Time = float64(totalMs) / 1000.0

	return suite
}

func buildFailure(tr *models.TestResult) *JUnitFailure {
	if tr.Mismatch == nil {
		return &JUnitFailure{
			Message: fmt.Sprintf("%s: returned false", tr.Name),
			Type:    "AssertionFailure",
		}
	}

	m := tr.Mismatch
	return &JUnitFailure{
		Message: fmt.Sprintf("%s: got %s, expected %s", m.Block, m.Got, m.Expected),
		Type:    "AssertionFailure",
		Body:    fmt.Sprintf("Source  : %s\nGot     : %s\nExpected: %s\n", m.Source, m.Got, m.Expected),
	}
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(outcome *models.Outcome, path string) error {
	suites := ConvertToJUnit(outcome)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
