package apperror

import (
	"errors"
	"net/http"
)

// Sentinel errors for the workflow layer. Error() carries the technical
// (log-facing) text; the Hebrew user-facing message comes from UserMessage.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrBadRequest        = errors.New("bad request")
	ErrInternal          = errors.New("internal server error")
	ErrInvalidInput      = errors.New("invalid input")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrAlreadyHandled    = errors.New("pending item already handled")
	ErrConflict          = errors.New("conflict")
)

// Hebrew messages surfaced to the client. Technical detail stays in the logs.
var userMessages = map[error]string{
	ErrNotFound:          "הפריט המבוקש לא נמצא",
	ErrUnauthorized:      "יש להתחבר מחדש",
	ErrForbidden:         "אין לך הרשאה לבצע פעולה זו",
	ErrBadRequest:        "בקשה לא תקינה",
	ErrInternal:          "אירעה שגיאה, נסו שוב מאוחר יותר",
	ErrInvalidInput:      "קלט לא תקין",
	ErrRateLimitExceeded: "יותר מדי בקשות, נסו שוב בעוד מספר דקות",
	ErrAlreadyHandled:    "הבקשה כבר טופלה על ידי מנהל אחר, רעננו את הרשימה",
	ErrConflict:          "הפעולה מתנגשת עם נתונים קיימים",
}

// AppError is a custom error type that can hold an HTTP status code and a
// localized message distinct from the technical error chain.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError. Message is the user-facing (Hebrew) text.
func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation wraps ErrInvalidInput with a specific Hebrew message.
func Validation(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
		Err:     ErrInvalidInput,
	}
}

// MapErrorToStatus maps common errors to HTTP status codes.
func MapErrorToStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrInvalidInput) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrAlreadyHandled) || errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrRateLimitExceeded) {
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// UserMessage returns the Hebrew message for err. An explicit AppError message
// wins; otherwise the sentinel chain is consulted; anything unrecognized falls
// back to the generic internal-error message so technical detail never leaks.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	for sentinel, msg := range userMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return userMessages[ErrInternal]
}
