package enrollment

import (
	"errors"

	apperrors "mergington-activities/internal/common/errors"
)

// ToStandardError translates registry sentinels into the API error envelope.
// Anything unrecognized becomes an internal error.
func ToStandardError(err error, activityName, email string) *apperrors.StandardError {
	var stdErr *apperrors.StandardError
	switch {
	case errors.As(err, &stdErr):
		return stdErr
	case errors.Is(err, ErrActivityNotFound):
		return apperrors.NewActivityNotFoundError(activityName)
	case errors.Is(err, ErrAlreadySignedUp):
		return apperrors.NewAlreadySignedUpError(activityName, email)
	case errors.Is(err, ErrNotSignedUp):
		return apperrors.NewNotSignedUpError(activityName, email)
	default:
		return apperrors.NewInternalError(err)
	}
}
