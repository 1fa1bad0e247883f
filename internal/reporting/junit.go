package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spboyer/stratafit/internal/models"
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

// JUnitTestSuite maps to one batch run.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one context of the batch.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

// JUnitFailure is a context no framework applies to.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError is a context that could not be evaluated.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// Case is one named selection to report.
type Case struct {
	Name     string
	Result   *models.SelectionResult
	Duration time.Duration
}

// ConvertToJUnit reports a batch of selections as one test suite. Contexts
// with recommendations pass, contexts no framework applies to fail, and
// invalid contexts are errors.
func ConvertToJUnit(suite string, catalogVersion string, cases []Case, at time.Time) *JUnitTestSuites {
	s := JUnitTestSuite{
		Name:      suite,
		Tests:     len(cases),
		Timestamp: at.Format(time.RFC3339),
		Properties: []JUnitProperty{
			{Name: "catalog_version", Value: catalogVersion},
		},
	}

	for _, c := range cases {
		tc := JUnitTestCase{
			Name:      c.Name,
			Classname: suite,
			Time:      c.Duration.Seconds(),
		}
		s.Time += tc.Time
		res := c.Result
		switch {
		case res == nil:
			tc.Error = &JUnitError{Message: "no result", Type: "SelectionError"}
			s.Errors++
		case !res.Success:
			tc.Error = &JUnitError{Message: res.Message, Type: string(res.Status)}
			s.Errors++
		case len(res.Frameworks) == 0:
			tc.Failure = &JUnitFailure{Message: res.Message, Type: string(res.Status), Body: formatExclusions(res.Excluded)}
			s.Failures++
		default:
			tc.SystemOut = strings.Join(res.IDs(), "\n")
		}
		s.TestCases = append(s.TestCases, tc)
	}

	return &JUnitTestSuites{
		Tests:      s.Tests,
		Failures:   s.Failures,
		Errors:     s.Errors,
		Time:       s.Time,
		TestSuites: []JUnitTestSuite{s},
	}
}

func formatExclusions(excluded []models.Exclusion) string {
	var b strings.Builder
	for _, x := range excluded {
		fmt.Fprintf(&b, "[EXCLUDED] %s: %s\n", x.ID, x.Reason)
	}
	return b.String()
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(suites *JUnitTestSuites, path string) error {
	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
