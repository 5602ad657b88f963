package chunk

// ErrorCode identifies a class of processing failure.
type ErrorCode string

const (
	ErrUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	ErrExtractFailed     ErrorCode = "EXTRACT_FAILED"
	ErrConverterNotReady ErrorCode = "CONVERTER_NOT_READY"
	ErrTranslateFailed   ErrorCode = "TRANSLATE_FAILED"
	ErrVisionFailed      ErrorCode = "VISION_FAILED"
	ErrDetectFailed      ErrorCode = "DETECT_FAILED"
	ErrAuthFailed        ErrorCode = "AUTH_FAILED"
	ErrAPIFailed         ErrorCode = "API_FAILED"
	ErrCancelled         ErrorCode = "CANCELLED"
)

// Error is the structured error carried through the pipeline. Code drives
// programmatic handling, Message is user-facing, Details adds diagnostics.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates an Error with the given code, message, and optional cause.
func NewError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewErrorWithDetails creates an Error carrying extra diagnostic details.
func NewErrorWithDetails(code ErrorCode, message, details string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// CodeOf extracts the error code from err if it is (or wraps) an *Error.
func CodeOf(err error) (ErrorCode, bool) {
	for err != nil {
		if ce, ok := err.(*Error); ok {
			return ce.Code, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return "", false
}
