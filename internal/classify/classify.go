// Package classify inspects captured pw.x output and yields a tri-state
// verdict from fixed marker patterns.
package classify

import (
	"os"
	"regexp"
)

// errorPatterns match known pw.x failure markers. Any match sets
// HasError. The set is fixed at build time; no runtime mutation.
var errorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`Error in routine`),
	regexp.MustCompile(`MPI_ABORT`),
	regexp.MustCompile(`forrtl: severe`),
	regexp.MustCompile(`Maximum CPU time exceeded`),
	regexp.MustCompile(`cannot open file`),
	regexp.MustCompile(`ERROR`),
}

// successPatterns match pw.x completion markers.
var successPatterns = []*regexp.Regexp{
	regexp.MustCompile(`convergence has been achieved`),
	regexp.MustCompile(`JOB DONE\.`),
}

// Report holds the independent marker flags for one output file. A run
// can match both sets (contradictory log) or neither (indeterminate).
type Report struct {
	HasError   bool
	HasSuccess bool
}

// Scan reads the complete output file and tests it against both pattern
// sets. An unreadable file reports neither flag: absence of evidence is
// not evidence of failure. Invalid bytes in the file are harmless since
// all patterns are plain ASCII literals.
func Scan(outputPath string) Report {
	data, err := os.ReadFile(outputPath)
	if err != nil {
		return Report{}
	}
	return ScanText(string(data))
}

// ScanText classifies output text directly. Pure presence test, no
// short-circuiting semantics beyond the boolean result.
func ScanText(text string) Report {
	var r Report
	for _, pat := range errorPatterns {
		if pat.MatchString(text) {
			r.HasError = true
			break
		}
	}
	for _, pat := range successPatterns {
		if pat.MatchString(text) {
			r.HasSuccess = true
			break
		}
	}
	return r
}
