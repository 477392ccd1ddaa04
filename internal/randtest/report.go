package randtest

// Names of the tests as they appear in a Report.
const (
	FrequencyTestName  = "Frequency Test"
	RunsTestName       = "Runs Test"
	LongestRunTestName = "Longest Run Test"
	ChiSquareTestName  = "Chi-Square Test"
	SerialTestName     = "Serial Test"
)

// MinPassed is the number of tests a sample must pass for the report to be
// considered consistent with randomness.
const MinPassed = 4

// Result is the outcome of a single test.
type Result struct {
	Name   string  `json:"name"`
	PValue float64 `json:"p_value"`
}

// Passed reports whether the p-value reaches Threshold.
func (r Result) Passed() bool {
	return r.PValue >= Threshold
}

// Report holds the results of every test, always in the order returned by
// RunAll.
type Report []Result

// PassedCount returns the number of tests that passed.
func (r Report) PassedCount() int {
	n := 0
	for _, res := range r {
		if res.Passed() {
			n++
		}
	}
	return n
}

// Consistent reports whether at least MinPassed tests passed. A single
// failure is tolerated since a truly random source fails each test 1% of the
// time.
func (r Report) Consistent() bool {
	return r.PassedCount() >= MinPassed
}

type test struct {
	name string
	fn   func([]byte) float64
}

// battery lists the tests in report order. Consumers rely on this order.
var battery = []test{
	{FrequencyTestName, FrequencyTest},
	{RunsTestName, RunsTest},
	{LongestRunTestName, LongestRunTest},
	{ChiSquareTestName, ChiSquareTest},
	{SerialTestName, SerialTest},
}

// RunAll runs every test on data and returns exactly five results in the
// order Frequency, Runs, Longest Run, Chi-Square, Serial.
func RunAll(data []byte) Report {
	report := make(Report, 0, len(battery))
	for _, t := range battery {
		report = append(report, Result{Name: t.name, PValue: t.fn(data)})
	}
	return report
}
