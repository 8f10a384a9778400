package apierr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Error_Error_ReturnsMessage(t *testing.T) {
	// Arrange
	e := ResourceNotFound("User pool p1 does not exist.")

	// Act / Assert
	assert.Equal(t, "User pool p1 does not exist.", e.Error())
}

func Test_Constructors_SetTypeAndStatus(t *testing.T) {
	cases := []struct {
		name       string
		err        *Error
		wantType   string
		wantStatus int
	}{
		{"ResourceNotFound", ResourceNotFound("x"), "ResourceNotFoundError", http.StatusBadRequest},
		{"UserNotFound", UserNotFound("x"), "UserNotFoundError", http.StatusBadRequest},
		{"UsernameExists", UsernameExists("x"), "UsernameExistsError", http.StatusBadRequest},
		{"NotAuthorized", NotAuthorized("x"), "NotAuthorizedError", http.StatusBadRequest},
		{"InvalidPassword", InvalidPassword("x"), "InvalidPasswordError", http.StatusBadRequest},
		{"PasswordResetRequired", PasswordResetRequired("x"), "PasswordResetRequiredError", http.StatusBadRequest},
		{"CodeMismatch", CodeMismatch("x"), "CodeMismatchError", http.StatusBadRequest},
		{"InvalidParameter", InvalidParameter("x"), "InvalidParameterError", http.StatusBadRequest},
		{"Unsupported", Unsupported("x"), "UnsupportedError", http.StatusInternalServerError},
		{"UnexpectedLambdaException", UnexpectedLambdaException("x"), "UnexpectedLambdaExceptionError", http.StatusInternalServerError},
		{"InvalidLambdaResponse", InvalidLambdaResponse("x"), "InvalidLambdaResponseError", http.StatusInternalServerError},
		{"UserLambdaValidation", UserLambdaValidation("x"), "UserLambdaValidationError", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantType, tc.err.Type)
			assert.Equal(t, tc.wantStatus, tc.err.Status)
			assert.Equal(t, "x", tc.err.Message)
		})
	}
}

func Test_Error_ErrorsAs(t *testing.T) {
	// Arrange
	var wrapped error = ResourceNotFound("missing")

	// Act
	var apiErr *Error
	ok := errors.As(wrapped, &apiErr)

	// Assert
	assert.True(t, ok)
	assert.Equal(t, "ResourceNotFoundError", apiErr.Type)
}
