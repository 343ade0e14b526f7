package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternal(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "INTERNAL_ERROR")
	assert.Contains(t, err.Error(), "connection reset")

	wrapped := fmt.Errorf("issue document: %w", err)
	appErr, ok := AsAppError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, CodeInternal, appErr.Code)
}

func TestErrorPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound("job", "abc")))
	assert.False(t, IsNotFound(NewValidation("nope")))
	assert.False(t, IsNotFound(errors.New("plain")))

	assert.True(t, IsDuplicateNumber(NewDuplicateNumber("quotation", "QT2025-0001")))
	assert.False(t, IsDuplicateNumber(NewNotFound("job", "abc")))

	assert.True(t, IsRetryable(NewTxContention("job")))
	assert.True(t, IsRetryable(NewPartialMigration("abc", errors.New("copy failed"))))
	assert.False(t, IsRetryable(NewValidation("nope")))
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewValidation("bad"), http.StatusBadRequest},
		{NewNotFound("job", "x"), http.StatusNotFound},
		{NewDuplicateNumber("quotation", "QT2025-0001"), http.StatusConflict},
		{NewTxContention("counter"), http.StatusConflict},
		{NewConfigMissing("credit_note"), http.StatusUnprocessableEntity},
		{NewUnauthorized("no token"), http.StatusUnauthorized},
		{NewForbidden("wrong role"), http.StatusForbidden},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetHTTPStatus(tt.err), "status for %v", tt.err)
	}
}

func TestWithDetail(t *testing.T) {
	err := NewValidation("bad field").
		WithDetail("field", "issueDate").
		WithDetail("reason", "zero value")

	assert.Equal(t, "issueDate", err.Details["field"])
	assert.Equal(t, "zero value", err.Details["reason"])
}
