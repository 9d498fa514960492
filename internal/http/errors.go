package http

import (
	"errors"

	apperrors "github.com/open-builders/gws-backend/internal/common/errors"
	dg "github.com/open-builders/gws-backend/internal/domain/giveaway"
	du "github.com/open-builders/gws-backend/internal/domain/user"
	"github.com/open-builders/gws-backend/internal/lock"
)

// toAppError classifies coordinator errors into API error codes.
func toAppError(err error) *apperrors.AppError {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	switch {
	case errors.Is(err, dg.ErrNotFound):
		return apperrors.Wrap(err, apperrors.ErrCodeGiveawayNotFound, "GWS not found")
	case errors.Is(err, dg.ErrNotActive):
		return apperrors.Wrap(err, apperrors.ErrCodeNotActive, "GWS is not active")
	case errors.Is(err, dg.ErrAlreadyJoined):
		return apperrors.Wrap(err, apperrors.ErrCodeAlreadyJoined, "Already joined")
	case errors.Is(err, dg.ErrIneligible):
		return apperrors.Wrap(err, apperrors.ErrCodeIneligible,
			"You must appear in the current biweekly leaderboard to enter this giveaway")
	case errors.Is(err, dg.ErrVerificationUnavailable):
		e := apperrors.Wrap(err, apperrors.ErrCodeVerificationUnavailable, "Failed to validate eligibility, try again later")
		e.Retryable = true
		return e
	case errors.Is(err, du.ErrHandleRequired):
		return apperrors.Wrap(err, apperrors.ErrCodeHandleRequired, "Wagering platform username is required to join giveaways")
	case errors.Is(err, du.ErrProfileNotFound):
		return apperrors.Wrap(err, apperrors.ErrCodeUserNotFound, "User not found")
	case errors.Is(err, dg.ErrInvalidPatch), errors.Is(err, dg.ErrInvalidInput):
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	case errors.Is(err, dg.ErrVersionConflict), errors.Is(err, lock.ErrLockTimeout):
		e := apperrors.Wrap(err, apperrors.ErrCodeConflict, "GWS is busy, try again")
		e.Retryable = true
		return e
	case errors.Is(err, dg.ErrPersistence):
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Storage error")
	default:
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "Internal server error")
	}
}
