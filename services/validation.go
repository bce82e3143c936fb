package services

import (
	"fmt"
	"time"

	"github.com/pickuphub/pickuphub/models"
)

// Pure transition checks against entity snapshots. Nothing here mutates
// state or touches persistence; services call these before any write.

func ValidateSchedule(schedule models.Schedule, now time.Time) error {
	startsAt, err := schedule.StartsAt()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrScheduleInvalid, err)
	}
	if !startsAt.After(now) {
		return ErrScheduleInPast
	}
	return nil
}

func ValidateCanJoinMatch(match *models.Match, userID string) error {
	if match.Status != models.MatchStatusUpcoming {
		return ErrMatchNotUpcoming
	}
	if match.HasParticipant(userID) {
		return ErrAlreadyJoined
	}
	if match.IsFull() {
		return ErrMatchFull
	}
	return nil
}

func ValidateCanLeaveMatch(match *models.Match, userID string) error {
	if !match.HasParticipant(userID) {
		return ErrNotParticipant
	}
	if match.CreatorID == userID {
		return ErrCreatorCannotLeave
	}
	if match.Status != models.MatchStatusUpcoming {
		return ErrMatchNotUpcoming
	}
	return nil
}

var matchTransitions = map[models.MatchStatus][]models.MatchStatus{
	// Expiry is never a caller-supplied target. The service applies it
	// itself when a stale match is loaded.
	models.MatchStatusUpcoming: {
		models.MatchStatusOngoing,
		models.MatchStatusCompleted,
		models.MatchStatusCancelled,
	},
	models.MatchStatusOngoing: {
		models.MatchStatusCompleted,
		models.MatchStatusCancelled,
	},
	models.MatchStatusExpired: {
		models.MatchStatusCompleted,
		models.MatchStatusCancelled,
	},
	models.MatchStatusCompleted: {},
	models.MatchStatusCancelled: {},
}

func ValidateMatchStatusTransition(current, next models.MatchStatus) error {
	for _, allowed := range matchTransitions[current] {
		if next == allowed {
			return nil
		}
	}
	return ErrInvalidStatusTransition
}

func ValidateCanJoinTournament(t *models.Tournament, userID string) error {
	if t.Status != models.TournamentStatusUpcoming {
		return ErrRegistrationClosed
	}
	if t.HasParticipant(userID) {
		return ErrAlreadyJoined
	}
	if t.IsFull() {
		return ErrTournamentFull
	}
	return nil
}

func ValidateCanLeaveTournament(t *models.Tournament, userID string) error {
	if !t.HasParticipant(userID) {
		return ErrNotParticipant
	}
	if t.OrganizerID == userID {
		return ErrOrganizerCannotLeave
	}
	if t.Status != models.TournamentStatusUpcoming {
		return ErrRegistrationClosed
	}
	return nil
}

func ValidateTournamentDates(start time.Time, end *time.Time, now time.Time) error {
	if !start.After(now) {
		return ErrScheduleInPast
	}
	if end != nil && !end.After(start) {
		return ErrInvalidDateRange
	}
	return nil
}
