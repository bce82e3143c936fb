package services

import "errors"

// Error taxonomy shared by the lifecycle services and mapped to HTTP
// statuses in the handlers layer. Validation raises these before any
// mutation is attempted; persistence failures propagate unchanged.
var (
	// Schedule errors
	ErrScheduleInvalid  = errors.New("schedule has an invalid time or timezone")
	ErrScheduleInPast   = errors.New("scheduled date must be in the future")
	ErrInvalidDateRange = errors.New("end date must be after start date")

	// Not found
	ErrMatchNotFound        = errors.New("match not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrBracketMatchNotFound = errors.New("bracket match not found")

	// Conflicts
	ErrAlreadyJoined          = errors.New("user is already a participant")
	ErrNotParticipant         = errors.New("user is not a participant")
	ErrMatchFull              = errors.New("match is full")
	ErrTournamentFull         = errors.New("tournament registration is full")
	ErrWinnerNotParticipant   = errors.New("winner must be a current participant")
	ErrMatchAlreadyCompleted  = errors.New("match is already completed")
	ErrMatchNotCancelled      = errors.New("match can only be deleted once cancelled")
	ErrBracketMatchNotPending = errors.New("bracket match is not ready to be played")
	ErrBracketWinnerNotSeated = errors.New("declared winner is not seated in this bracket match")
	ErrConcurrentUpdate       = errors.New("entity was modified concurrently, retries exhausted")

	// Permission errors
	ErrCreatorOnly          = errors.New("only the match creator can perform this action")
	ErrOrganizerOnly        = errors.New("only the tournament organizer can perform this action")
	ErrCreatorCannotLeave   = errors.New("the match creator cannot leave their own match")
	ErrOrganizerCannotLeave = errors.New("the tournament organizer cannot withdraw from their own tournament")

	// State errors
	ErrMatchNotUpcoming        = errors.New("match is not open for participant changes")
	ErrMatchNotScorable        = errors.New("match is not accepting score updates")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrRegistrationClosed      = errors.New("tournament registration is closed")
	ErrTournamentNotUpcoming   = errors.New("tournament has already started")
	ErrTournamentNotOngoing    = errors.New("tournament is not in progress")
	ErrTournamentCompleted     = errors.New("tournament is already completed")
	ErrTournamentOngoing       = errors.New("tournament is in progress")
	ErrNotEnoughParticipants   = errors.New("at least 2 participants are required to start")

	// Input errors
	ErrSportRequired            = errors.New("sport is required")
	ErrNameRequired             = errors.New("tournament name is required")
	ErrInvalidMatchType         = errors.New("match type must be public or private")
	ErrInvalidCapacity          = errors.New("max participants is out of range")
	ErrUnsupportedFormat        = errors.New("unsupported tournament format")
	ErrInvalidRules             = errors.New("invalid match rules")
	ErrBannerStorageUnavailable = errors.New("banner storage is not configured")
	ErrUnsupportedImageType     = errors.New("unsupported image content type")
)
