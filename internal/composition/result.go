package composition

// Result collects failures across a batch. The zero value is a success.
//
// Results are values: merging never mutates the receiver's backing slice, so
// a Result may be shared and merged from several places.
type Result struct {
	errs []error
}

// Succeeded reports whether no error has been merged.
func (r Result) Succeeded() bool {
	return len(r.errs) == 0
}

// Errors returns a copy of the collected errors.
func (r Result) Errors() []error {
	if len(r.errs) == 0 {
		return nil
	}
	out := make([]error, len(r.errs))
	copy(out, r.errs)
	return out
}

// MergeError returns a result that also contains err. A nil err is ignored.
func (r Result) MergeError(err error) Result {
	if err == nil {
		return r
	}
	errs := make([]error, 0, len(r.errs)+1)
	errs = append(errs, r.errs...)
	return Result{errs: append(errs, err)}
}

// MergeResult returns a result holding the errors of both.
func (r Result) MergeResult(other Result) Result {
	if other.Succeeded() {
		return r
	}
	if r.Succeeded() {
		return other
	}
	errs := make([]error, 0, len(r.errs)+len(other.errs))
	errs = append(errs, r.errs...)
	return Result{errs: append(errs, other.errs...)}
}

// Err converts a failed result into a *CompositionError. It returns nil for
// a successful result.
func (r Result) Err() error {
	if r.Succeeded() {
		return nil
	}
	return &CompositionError{Errors: r.Errors()}
}
