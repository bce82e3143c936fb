package models

import "time"

type TournamentStatus string

const (
	TournamentStatusUpcoming  TournamentStatus = "upcoming"
	TournamentStatusOngoing   TournamentStatus = "ongoing"
	TournamentStatusCompleted TournamentStatus = "completed"
	TournamentStatusCancelled TournamentStatus = "cancelled"
)

type TournamentFormat string

const FormatSingleElimination TournamentFormat = "single_elimination"

const (
	MinTournamentCapacity = 4
	MaxTournamentCapacity = 256
)

// Tournament is a bracketed competition run by an organizer.
// The bracket is a value owned by the tournament; it has no identity
// or lifecycle of its own.
type Tournament struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     *string          `json:"description,omitempty"`
	Sport           string           `json:"sport"`
	Format          TournamentFormat `json:"format"`
	OrganizerID     string           `json:"organizer_id"`
	Participants    []string         `json:"participants"`
	MaxParticipants int              `json:"max_participants"`
	StartDate       time.Time        `json:"start_date"`
	EndDate         *time.Time       `json:"end_date,omitempty"`
	Status          TournamentStatus `json:"status"`
	Bracket         *Bracket         `json:"bracket,omitempty"`
	Standings       []string         `json:"standings,omitempty"`
	BannerKey       *string          `json:"-"`
	BannerURL       *string          `json:"banner_url,omitempty"`
	Version         int              `json:"-"`
	CreatedAt       time.Time        `json:"created_at"`
}

func (t *Tournament) HasParticipant(userID string) bool {
	for _, p := range t.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

func (t *Tournament) IsFull() bool {
	return len(t.Participants) >= t.MaxParticipants
}
