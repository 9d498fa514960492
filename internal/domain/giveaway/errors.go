package giveaway

import "errors"

var (
	ErrNotFound                = errors.New("giveaway not found")
	ErrNotActive               = errors.New("giveaway is not active")
	ErrAlreadyJoined           = errors.New("already joined")
	ErrIneligible              = errors.New("participant is not eligible")
	ErrVerificationUnavailable = errors.New("eligibility verification unavailable")
	ErrPersistence             = errors.New("giveaway persistence failed")
	// ErrVersionConflict is returned by Save when the stored version differs from the expected one.
	ErrVersionConflict = errors.New("giveaway version conflict")
	ErrInvalidPatch    = errors.New("invalid giveaway patch")
	ErrInvalidInput    = errors.New("invalid giveaway")
)
