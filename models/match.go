package models

import (
	"fmt"
	"time"
)

type MatchStatus string

const (
	MatchStatusUpcoming  MatchStatus = "upcoming"
	MatchStatusOngoing   MatchStatus = "ongoing"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCancelled MatchStatus = "cancelled"
	MatchStatusExpired   MatchStatus = "expired"
)

type MatchType string

const (
	MatchTypePublic  MatchType = "public"
	MatchTypePrivate MatchType = "private"
)

const (
	DefaultPublicCapacity  = 10
	DefaultPrivateCapacity = 2

	// Minutes a match is assumed to run when no duration is given.
	DefaultDurationMinutes = 120
)

// Schedule describes when a match takes place, in the venue's local time.
type Schedule struct {
	Date            time.Time `json:"date"`
	Time            string    `json:"time"`
	Timezone        string    `json:"timezone"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
}

// StartsAt combines date, local time and timezone into an absolute instant.
func (s Schedule) StartsAt() (time.Time, error) {
	tz := s.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}
	clock, err := time.Parse("15:04", s.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (expected HH:MM): %w", s.Time, err)
	}
	y, m, d := s.Date.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, loc), nil
}

// EndsAt is the instant after which an upcoming match counts as expired.
func (s Schedule) EndsAt() (time.Time, error) {
	start, err := s.StartsAt()
	if err != nil {
		return time.Time{}, err
	}
	duration := s.DurationMinutes
	if duration <= 0 {
		duration = DefaultDurationMinutes
	}
	return start.Add(time.Duration(duration) * time.Minute), nil
}

// Match is an ad-hoc game created and run by a single user.
// The creator is always the first participant.
type Match struct {
	ID              string         `json:"id"`
	Sport           string         `json:"sport"`
	Schedule        Schedule       `json:"schedule"`
	VenueID         *string        `json:"venue_id,omitempty"`
	Type            MatchType      `json:"type"`
	Status          MatchStatus    `json:"status"`
	CreatorID       string         `json:"creator_id"`
	Participants    []string       `json:"participants"`
	MaxParticipants int            `json:"max_participants"`
	Scores          map[string]int `json:"scores,omitempty"`
	WinnerID        *string        `json:"winner_id,omitempty"`
	Rules           Rules          `json:"rules,omitempty"`
	Version         int            `json:"-"`
	CreatedAt       time.Time      `json:"created_at"`
}

func (m *Match) HasParticipant(userID string) bool {
	for _, p := range m.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

func (m *Match) IsFull() bool {
	return len(m.Participants) >= m.MaxParticipants
}
