package errors

import "errors"

// IsSourceUnavailable checks if an error indicates no log source could be opened.
func IsSourceUnavailable(err error) bool {
	if err == nil {
		return false
	}

	var sourceErr *SourceUnavailableError
	return errors.As(err, &sourceErr) || errors.Is(err, ErrSourceUnavailable)
}

// IsMalformedLine checks if an error is a per-line parse failure.
func IsMalformedLine(err error) bool {
	if err == nil {
		return false
	}

	var malformedErr *MalformedLineError
	return errors.As(err, &malformedErr) || errors.Is(err, ErrMalformedLine)
}

// IsRotation checks if an error reports a rotation or truncation.
func IsRotation(err error) bool {
	if err == nil {
		return false
	}

	var rotationErr *RotationError
	return errors.As(err, &rotationErr) || errors.Is(err, ErrRotationDetected)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}

	var validationErr *ValidationError
	return errors.As(err, &validationErr) || errors.Is(err, ErrInvalidInput)
}

// IsNotFound checks if an error reports a missing resource.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var notFound *NotFoundError
	return errors.As(err, &notFound) || errors.Is(err, ErrNotFound)
}

// IsInternal checks if an error is an internal error.
func IsInternal(err error) bool {
	if err == nil {
		return false
	}

	var internalErr *InternalError
	return errors.As(err, &internalErr) || errors.Is(err, ErrInternal)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	if err == nil {
		return CodeOK
	}

	var customErr Error
	if errors.As(err, &customErr) {
		return customErr.Code()
	}

	switch {
	case IsSourceUnavailable(err):
		return CodeSourceUnavailable
	case IsMalformedLine(err):
		return CodeMalformedLine
	case IsRotation(err):
		return CodeRotationDetected
	case IsValidation(err):
		return CodeValidation
	default:
		return CodeInternal
	}
}

// GetErrorMessage extracts a human-readable message from an error.
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var customErr Error
	if errors.As(err, &customErr) {
		return customErr.Message()
	}

	return err.Error()
}

// Cause returns the underlying cause of an error.
// It unwraps the error chain until it finds the root cause.
func Cause(err error) error {
	for {
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		underlying := unwrapper.Unwrap()
		if underlying == nil {
			return err
		}
		err = underlying
	}
}
