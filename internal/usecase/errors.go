package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrConflict              = errors.New("conflict")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// Draft rejection reasons. Each one also matches its category with errors.Is.
var (
	ErrNotCommissioner     = fmt.Errorf("%w: commissioner role required", ErrForbidden)
	ErrNotMember           = fmt.Errorf("%w: not a league member", ErrForbidden)
	ErrNotYourTurn         = fmt.Errorf("%w: not your turn", ErrForbidden)
	ErrNotEnoughMembers    = fmt.Errorf("%w: at least two members are required", ErrConflict)
	ErrDraftAlreadyStarted = fmt.Errorf("%w: draft already started", ErrConflict)
	ErrDraftNotLive        = fmt.Errorf("%w: draft is not live", ErrConflict)
	ErrDraftNotPaused      = fmt.Errorf("%w: draft is not paused", ErrConflict)
	ErrDraftComplete       = fmt.Errorf("%w: draft is completed", ErrConflict)
	ErrSettingsLocked      = fmt.Errorf("%w: settings can only change before start or while paused", ErrConflict)
	ErrDeadlineExpired     = fmt.Errorf("%w: pick deadline expired, waiting for auto pick", ErrConflict)
	ErrAssetAlreadyDrafted = fmt.Errorf("%w: asset already drafted", ErrConflict)
	ErrAssetNotAllowed     = fmt.Errorf("%w: asset not in league pool", ErrInvalidInput)
)
