package comparator

import "fmt"

// Result is the verdict of one comparison: Valid with an optional
// informational message, or invalid with the accumulated diagnostics.
// An invalid Result is terminal for the comparison it annotates, but callers
// decide whether it aborts sibling comparisons.
type Result struct {
	Valid   bool
	Message string
}

// Ok returns a valid result with no message.
func Ok() Result {
	return Result{Valid: true}
}

// OkWith returns a valid result carrying an informational message.
func OkWith(msg string) Result {
	return Result{Valid: true, Message: msg}
}

// Errorf returns an invalid result with a formatted diagnostic.
func Errorf(format string, args ...any) Result {
	return Result{Valid: false, Message: fmt.Sprintf(format, args...)}
}

func (r Result) String() string {
	if r.Valid {
		if r.Message == "" {
			return "valid"
		}
		return "valid: " + r.Message
	}
	return "invalid: " + r.Message
}
