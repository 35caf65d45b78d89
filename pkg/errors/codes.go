package errors

// Error codes for categorizing errors.
const (
	// CodeOK indicates success (not an error).
	CodeOK = "OK"

	// CodeInternal indicates internal errors.
	CodeInternal = "INTERNAL"

	// CodeValidation indicates input validation failed.
	CodeValidation = "VALIDATION_ERROR"

	// CodeConfigError indicates a configuration error.
	CodeConfigError = "CONFIG_ERROR"

	// CodeNotFound indicates a requested resource does not exist.
	CodeNotFound = "NOT_FOUND"

	// Ingestion codes

	// CodeSourceUnavailable indicates no readable log path could be found.
	CodeSourceUnavailable = "SOURCE_UNAVAILABLE"

	// CodeMalformedLine indicates a log line lacked the fields required to
	// build an entry.
	CodeMalformedLine = "MALFORMED_LINE"

	// CodeRotationDetected indicates the tailed file was replaced or truncated.
	CodeRotationDetected = "ROTATION_DETECTED"

	// CodeReadError indicates reading from the tailed file failed.
	CodeReadError = "READ_ERROR"
)

// ErrorCategory represents a high-level error category.
type ErrorCategory string

const (
	// CategoryFatal errors stop the process; they only occur at startup.
	CategoryFatal ErrorCategory = "FATAL"

	// CategoryRecoverable errors are counted or logged and processing continues.
	CategoryRecoverable ErrorCategory = "RECOVERABLE"

	// CategoryClient indicates invalid input from a user or config file.
	CategoryClient ErrorCategory = "CLIENT_ERROR"
)

// GetCategory returns the category for an error code.
func GetCategory(code string) ErrorCategory {
	switch code {
	case CodeSourceUnavailable, CodeConfigError:
		return CategoryFatal
	case CodeMalformedLine, CodeRotationDetected, CodeReadError:
		return CategoryRecoverable
	case CodeValidation, CodeNotFound:
		return CategoryClient
	default:
		return CategoryFatal
	}
}

// IsRecoverable returns true if the pipeline should continue after an error
// with the given code.
func IsRecoverable(code string) bool {
	return GetCategory(code) == CategoryRecoverable
}
