package entities

// ResultStatus is the outcome of one kernel invocation.
type ResultStatus string

const (
	// ResultStatusSuccess indicates the kernel produced a value.
	ResultStatusSuccess ResultStatus = "success"

	// ResultStatusFailure indicates the call failed and produced no value.
	ResultStatusFailure ResultStatus = "failure"
)

// Result is the explicit outcome of KernelInvoker: either a host value or
// an invocation failure. Memory faults never become a Result.
type Result struct {
	// Value is the host value on success. It may be None for void kernels.
	Value Value `json:"-"`

	// Error describes the failure when Status is failure.
	Error *ErrorDetail `json:"error,omitempty"`

	// Cause is the error the failure was built from, kept so callers can
	// match sentinels with errors.Is and errors.As. It is never serialized.
	Cause error `json:"-"`

	// Status indicates whether the invocation succeeded.
	Status ResultStatus `json:"status"`
}

// ResultSuccess wraps a produced value.
func ResultSuccess(v Value) Result {
	if v == nil {
		v = None{}
	}
	return Result{Status: ResultStatusSuccess, Value: v}
}

// ResultFailure wraps a failure description.
func ResultFailure(err *ErrorDetail) Result {
	return Result{Status: ResultStatusFailure, Error: err}
}

// ResultFailureFrom wraps a failure description together with the error it
// describes.
func ResultFailureFrom(detail *ErrorDetail, cause error) Result {
	return Result{Status: ResultStatusFailure, Error: detail, Cause: cause}
}

// OK reports whether the invocation produced a value.
func (r Result) OK() bool {
	return r.Status == ResultStatusSuccess
}
