package events

import "time"

// Event type names. One event is emitted per successful state-changing
// lifecycle call; consumers (notifications, analytics, chat provisioning)
// subscribe by type.
const (
	MatchCreated      = "match.created"
	MatchPlayerJoined = "match.player.joined"
	MatchPlayerLeft   = "match.player.left"
	MatchCompleted    = "match.completed"
	MatchCancelled    = "match.cancelled"

	TournamentCreated           = "tournament.created"
	TournamentParticipantJoined = "tournament.participant.joined"
	TournamentParticipantLeft   = "tournament.participant.left"
	TournamentStarted           = "tournament.started"
	TournamentCompleted         = "tournament.completed"
)

type MatchCreatedPayload struct {
	MatchID       string    `json:"match_id"`
	CreatedBy     string    `json:"created_by"`
	Sport         string    `json:"sport"`
	ScheduledDate time.Time `json:"scheduled_date"`
	Type          string    `json:"type"`
}

type MatchPlayerPayload struct {
	MatchID          string `json:"match_id"`
	UserID           string `json:"user_id"`
	Sport            string `json:"sport"`
	ParticipantCount int    `json:"participant_count,omitempty"`
}

type MatchCompletedPayload struct {
	MatchID      string   `json:"match_id"`
	WinnerID     *string  `json:"winner_id,omitempty"`
	Participants []string `json:"participants"`
	Sport        string   `json:"sport"`
}

type MatchCancelledPayload struct {
	MatchID string `json:"match_id"`
	Reason  string `json:"reason"`
}

type TournamentCreatedPayload struct {
	TournamentID string    `json:"tournament_id"`
	Name         string    `json:"name"`
	Sport        string    `json:"sport"`
	OrganizerID  string    `json:"organizer_id"`
	StartDate    time.Time `json:"start_date"`
}

type TournamentParticipantPayload struct {
	TournamentID     string `json:"tournament_id"`
	UserID           string `json:"user_id"`
	ParticipantCount int    `json:"participant_count,omitempty"`
}

type TournamentStartedPayload struct {
	TournamentID     string `json:"tournament_id"`
	ParticipantCount int    `json:"participant_count"`
}

type TournamentCompletedPayload struct {
	TournamentID string   `json:"tournament_id"`
	WinnerID     string   `json:"winner_id"`
	Participants []string `json:"participants"`
}
