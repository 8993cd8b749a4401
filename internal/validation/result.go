// Package validation implements the short-circuiting check pipeline the
// games use instead of exceptions for expected, user-facing rejections.
package validation

// Result is the outcome of a single validation step. A failed Result with
// an empty message means "reject silently": the input simply was not
// addressed to this command and deserves no reply.
type Result struct {
	isError bool
	message string
}

// OK returns a passing Result
func OK() Result {
	return Result{}
}

// Fail returns a failing Result carrying a user-facing message.
// An empty message yields a passing Result, mirroring the single-message
// constructor invariant: isError == (message is non-empty).
func Fail(message string) Result {
	return Result{isError: message != "", message: message}
}

// FailSilent returns a failing Result with no message to surface
func FailSilent() Result {
	return Result{isError: true}
}

// IsError reports whether the step failed
func (r Result) IsError() bool {
	return r.isError
}

// Message returns the user-facing rejection text, empty for silent failures
func (r Result) Message() string {
	return r.message
}

// Value is a Result that carries a typed payload on success.
// On failure the payload is the zero value.
type Value[T any] struct {
	val     T
	message string
}

// Success returns a passing Value carrying v
func Success[T any](v T) Value[T] {
	return Value[T]{val: v}
}

// Failure returns a failing Value with a user-facing message
func Failure[T any](message string) Value[T] {
	return Value[T]{message: message}
}

// IsError reports whether the value failed validation
func (v Value[T]) IsError() bool {
	return v.message != ""
}

// Message returns the user-facing rejection text
func (v Value[T]) Message() string {
	return v.message
}

// Get returns the validated payload
func (v Value[T]) Get() T {
	return v.val
}

// Check is a single zero-argument validation step
type Check func() Result

// Run evaluates checks in order and short-circuits on the first failure,
// returning its Result. All checks passing yields OK.
func Run(checks ...Check) Result {
	for _, check := range checks {
		if result := check(); result.IsError() {
			return result
		}
	}
	return OK()
}
