package pipeline

// Outcome is the result of a stage that always produces a value. Degraded is
// set when the value came from a fallback path; Reason then says why.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Reason   string
}

// Ok wraps a value produced on the normal path.
func Ok[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Degrade wraps a fallback value.
func Degrade[T any](v T, reason string) Outcome[T] {
	return Outcome[T]{Value: v, Degraded: true, Reason: reason}
}
