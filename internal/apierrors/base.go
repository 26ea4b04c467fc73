package apierrors

import "net/http"

const (
	InternalServerErr = "INTERNAL_SERVER_ERROR"
	JSONDecodeErr     = "JSON_DECODE_ERROR"
	ValidationErr     = "VALIDATION_ERROR"
	UnauthorizedErr   = "UNAUTHORIZED"
	ForbiddenErr      = "FORBIDDEN"
	NotFoundErr       = "NOT_FOUND"
	ConflictErr       = "CONFLICT"
)

// ErrorMessage is the error envelope returned by every endpoint.
type ErrorMessage struct {
	Error DetailedError `json:"error"`
}

type DetailedError struct {
	Code      string  `json:"code"`
	Message   string  `json:"message"`
	Status    int     `json:"status"`
	RequestID *string `json:"requestId,omitempty"`
}

func InternalServerErrorMessage() ErrorMessage {
	return ErrorMessage{Error: DetailedError{
		Code:    InternalServerErr,
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
	}}
}

func JSONDecodeErrorMessage() ErrorMessage {
	return ErrorMessage{Error: DetailedError{
		Code:    JSONDecodeErr,
		Message: "Can't decode JSON body",
		Status:  http.StatusBadRequest,
	}}
}

func ValidationErrorMessage(message string) ErrorMessage {
	return ErrorMessage{Error: DetailedError{
		Code:    ValidationErr,
		Message: message,
		Status:  http.StatusBadRequest,
	}}
}

func NotFoundMessage(message string) ErrorMessage {
	return ErrorMessage{Error: DetailedError{
		Code:    NotFoundErr,
		Message: message,
		Status:  http.StatusNotFound,
	}}
}

func ConflictMessage(message string) ErrorMessage {
	return ErrorMessage{Error: DetailedError{
		Code:    ConflictErr,
		Message: message,
		Status:  http.StatusConflict,
	}}
}
