package lint

// Severity indicates the importance level of a lint issue.
type Severity int

const (
	// SeverityWarning marks issues that should be fixed but don't block builds.
	SeverityWarning Severity = iota
	// SeverityError marks issues that will make a build fail.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Issue is a single problem found in a content document.
type Issue struct {
	FilePath string
	Severity Severity
	Rule     string
	Message  string
	Line     int // 1-based; 0 for file-level issues
}

// Result aggregates all issues from a lint run.
type Result struct {
	Issues     []Issue
	FilesTotal int
}

// HasErrors reports whether any error-level issue exists.
func (r *Result) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error-level issues.
func (r *Result) ErrorCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}
