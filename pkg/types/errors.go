package types

// modelUnavailableError signals that the loader could not produce a model
// for the requested bundle (missing, corrupt, or not yet solved).
type modelUnavailableError struct{ what string }

func (e modelUnavailableError) Error() string { return "model unavailable: " + e.what }

// ErrModelUnavailable constructs a model-unavailable loader error.
func ErrModelUnavailable(what string) error { return modelUnavailableError{what: what} }

// IsModelUnavailable reports whether err indicates a missing model artifact.
func IsModelUnavailable(err error) bool {
	_, ok := err.(modelUnavailableError)
	return ok
}

// invalidParametersError signals a parameter vector inconsistent with the
// run context.
type invalidParametersError struct{ msg string }

func (e invalidParametersError) Error() string { return "invalid parameters: " + e.msg }

// ErrInvalidParameters constructs an invalid-parameters loader error.
func ErrInvalidParameters(msg string) error { return invalidParametersError{msg: msg} }

// IsInvalidParameters reports whether err indicates a bad parameter vector.
func IsInvalidParameters(err error) bool {
	_, ok := err.(invalidParametersError)
	return ok
}
