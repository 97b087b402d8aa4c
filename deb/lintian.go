package deb

import (
	"errors"
	"os/exec"
	"strings"
)

// LintianResult is the outcome of running the external policy checker
// against a built package. The checker's findings are data, not errors: a
// package with warnings still built successfully.
type LintianResult struct {
	// Warnings holds every unexpected warning or error tag reported, one
	// line each. Tags suppressed by the package's lintian overrides never
	// appear here; lintian applies the overrides shipped in the package.
	Warnings []string
}

// Clean reports whether lintian raised no unexpected warnings.
func (r *LintianResult) Clean() bool { return len(r.Warnings) == 0 }

// RunLintian invokes lintian on debPath. A missing lintian binary is
// reported as a *ToolingError naming the tool; a non-zero exit caused by
// policy findings is not an error, the findings are returned in the result.
func RunLintian(debPath string) (*LintianResult, error) {
	path, err := exec.LookPath("lintian")
	if err != nil {
		return nil, &ToolingError{Tool: "lintian", Err: err}
	}

	out, err := exec.Command(path, debPath).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, &ToolingError{Tool: "lintian", Err: err}
		}
		// Findings were printed to stdout; fall through and collect them.
	}

	res := &LintianResult{}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "W: ") || strings.HasPrefix(line, "E: ") {
			res.Warnings = append(res.Warnings, line)
		}
	}
	return res, nil
}
