package services

import (
	"context"

	"github.com/pickuphub/pickuphub/events"
	"github.com/pickuphub/pickuphub/models"
	"github.com/pickuphub/pickuphub/repositories"
)

// ParticipantManager performs the raw add/remove of a participant once
// validation has passed, persists the change, and emits the matching
// event. It checks no business rules itself: it trusts that the calling
// lifecycle service already validated, so it must only ever be invoked
// by those services, never from the API boundary.
type ParticipantManager struct {
	matches     repositories.MatchRepository
	tournaments repositories.TournamentRepository
	publisher   events.Publisher
}

func NewParticipantManager(
	matches repositories.MatchRepository,
	tournaments repositories.TournamentRepository,
	publisher events.Publisher,
) *ParticipantManager {
	return &ParticipantManager{
		matches:     matches,
		tournaments: tournaments,
		publisher:   publisher,
	}
}

func (pm *ParticipantManager) AddMatchParticipant(ctx context.Context, match *models.Match, userID string) error {
	match.Participants = append(match.Participants, userID)
	if err := pm.matches.Update(ctx, nil, match); err != nil {
		return err
	}
	pm.publisher.Publish(ctx, events.MatchPlayerJoined, match.ID, events.MatchPlayerPayload{
		MatchID:          match.ID,
		UserID:           userID,
		Sport:            match.Sport,
		ParticipantCount: len(match.Participants),
	})
	return nil
}

func (pm *ParticipantManager) RemoveMatchParticipant(ctx context.Context, match *models.Match, userID string) error {
	match.Participants = removeString(match.Participants, userID)
	if err := pm.matches.Update(ctx, nil, match); err != nil {
		return err
	}
	pm.publisher.Publish(ctx, events.MatchPlayerLeft, match.ID, events.MatchPlayerPayload{
		MatchID: match.ID,
		UserID:  userID,
		Sport:   match.Sport,
	})
	return nil
}

func (pm *ParticipantManager) AddTournamentParticipant(ctx context.Context, t *models.Tournament, userID string) error {
	t.Participants = append(t.Participants, userID)
	if err := pm.tournaments.Update(ctx, nil, t); err != nil {
		return err
	}
	pm.publisher.Publish(ctx, events.TournamentParticipantJoined, t.ID, events.TournamentParticipantPayload{
		TournamentID:     t.ID,
		UserID:           userID,
		ParticipantCount: len(t.Participants),
	})
	return nil
}

func (pm *ParticipantManager) RemoveTournamentParticipant(ctx context.Context, t *models.Tournament, userID string) error {
	t.Participants = removeString(t.Participants, userID)
	if err := pm.tournaments.Update(ctx, nil, t); err != nil {
		return err
	}
	pm.publisher.Publish(ctx, events.TournamentParticipantLeft, t.ID, events.TournamentParticipantPayload{
		TournamentID: t.ID,
		UserID:       userID,
	})
	return nil
}
