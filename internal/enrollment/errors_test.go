package enrollment

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	apperrors "mergington-activities/internal/common/errors"

	"github.com/stretchr/testify/assert"
)

func TestToStandardError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedCode   apperrors.ErrorCode
		expectedStatus int
		expectedDetail string
	}{
		{"not found", ErrActivityNotFound, apperrors.ErrCodeActivityNotFound, http.StatusNotFound, "Activity not found"},
		{"already signed up", ErrAlreadySignedUp, apperrors.ErrCodeAlreadySignedUp, http.StatusBadRequest, "Student is already signed up"},
		{"not signed up", ErrNotSignedUp, apperrors.ErrCodeNotSignedUp, http.StatusBadRequest, "Student is not signed up for this activity"},
		{"wrapped sentinel", fmt.Errorf("signup: %w", ErrAlreadySignedUp), apperrors.ErrCodeAlreadySignedUp, http.StatusBadRequest, "Student is already signed up"},
		{"unexpected", errors.New("boom"), apperrors.ErrCodeInternal, http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdErr := ToStandardError(tt.err, "Chess Club", "emma@mergington.edu")
			assert.Equal(t, tt.expectedCode, stdErr.Code)
			assert.Equal(t, tt.expectedStatus, stdErr.HTTPStatus())
			assert.Equal(t, tt.expectedDetail, stdErr.Message)
		})
	}
}

func TestToStandardError_PassesThrough(t *testing.T) {
	original := apperrors.NewInvalidRequestError("email is required")
	assert.Same(t, original, ToStandardError(original, "", ""))
}
