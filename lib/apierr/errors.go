// Package apierr defines the wire error taxonomy shared by every target.
//
// Each error carries the HTTP status and the "__type" name the client SDK
// expects in the response body, mirroring the shape AWS Cognito itself
// returns (ResourceNotFoundException, UsernameExistsException, ...) without
// depending on the SDK's own exception types, since those are tied to a live
// service client rather than a value we can construct locally.
package apierr

import "net/http"

// Error is a typed API error with a wire name and HTTP status.
type Error struct {
	Type    string
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(typ string, status int, message string) *Error {
	return &Error{Type: typ, Status: status, Message: message}
}

func ResourceNotFound(message string) *Error {
	return newError("ResourceNotFoundError", http.StatusBadRequest, message)
}

func UserNotFound(message string) *Error {
	return newError("UserNotFoundError", http.StatusBadRequest, message)
}

func UsernameExists(message string) *Error {
	return newError("UsernameExistsError", http.StatusBadRequest, message)
}

func NotAuthorized(message string) *Error {
	return newError("NotAuthorizedError", http.StatusBadRequest, message)
}

func InvalidPassword(message string) *Error {
	return newError("InvalidPasswordError", http.StatusBadRequest, message)
}

func PasswordResetRequired(message string) *Error {
	return newError("PasswordResetRequiredError", http.StatusBadRequest, message)
}

func CodeMismatch(message string) *Error {
	return newError("CodeMismatchError", http.StatusBadRequest, message)
}

func InvalidParameter(message string) *Error {
	return newError("InvalidParameterError", http.StatusBadRequest, message)
}

func Unsupported(message string) *Error {
	return newError("UnsupportedError", http.StatusInternalServerError, message)
}

func UnexpectedLambdaException(message string) *Error {
	return newError("UnexpectedLambdaExceptionError", http.StatusInternalServerError, message)
}

func InvalidLambdaResponse(message string) *Error {
	return newError("InvalidLambdaResponseError", http.StatusInternalServerError, message)
}

func UserLambdaValidation(message string) *Error {
	return newError("UserLambdaValidationError", http.StatusBadRequest, message)
}
