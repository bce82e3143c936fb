package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pickuphub/pickuphub/brackets"
	"github.com/pickuphub/pickuphub/events"
	"github.com/pickuphub/pickuphub/models"
	"github.com/pickuphub/pickuphub/repositories"
	"github.com/pickuphub/pickuphub/storage"
)

type CreateTournamentInput struct {
	Name            string                  `json:"name"`
	Description     *string                 `json:"description,omitempty"`
	Sport           string                  `json:"sport"`
	Format          models.TournamentFormat `json:"format,omitempty"`
	MaxParticipants int                     `json:"max_participants"`
	StartDate       time.Time               `json:"start_date"`
	EndDate         *time.Time              `json:"end_date,omitempty"`
}

type UpdateTournamentInput struct {
	Name            *string    `json:"name,omitempty"`
	Description     *string    `json:"description,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	MaxParticipants *int       `json:"max_participants,omitempty"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, userID string, input CreateTournamentInput) (*models.Tournament, error)
	GetTournamentByID(ctx context.Context, id string) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	JoinTournament(ctx context.Context, userID, tournamentID string) (*models.Tournament, error)
	LeaveTournament(ctx context.Context, userID, tournamentID string) (*models.Tournament, error)
	StartTournament(ctx context.Context, userID, tournamentID string) (*models.Tournament, error)
	AdvanceBracket(ctx context.Context, userID, tournamentID, bracketMatchID, winnerID string) (*models.Tournament, error)
	UpdateTournament(ctx context.Context, userID, tournamentID string, input UpdateTournamentInput) (*models.Tournament, error)
	CancelTournament(ctx context.Context, userID, tournamentID string) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, userID, tournamentID string) error
	UploadBanner(ctx context.Context, userID, tournamentID string, banner io.Reader, contentType string) (*models.Tournament, error)
}

type tournamentService struct {
	repo         repositories.TournamentRepository
	builder      brackets.Builder
	participants *ParticipantManager
	publisher    events.Publisher
	hub          *brackets.Hub
	uploader     storage.FileUploader // nil when banner storage is not configured
	logger       *slog.Logger
	now          func() time.Time
}

func NewTournamentService(
	repo repositories.TournamentRepository,
	builder brackets.Builder,
	participants *ParticipantManager,
	publisher events.Publisher,
	hub *brackets.Hub,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		repo:         repo,
		builder:      builder,
		participants: participants,
		publisher:    publisher,
		hub:          hub,
		uploader:     uploader,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, userID string, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, ErrNameRequired
	}
	if input.Sport == "" {
		return nil, ErrSportRequired
	}

	format := input.Format
	if format == "" {
		format = models.FormatSingleElimination
	}
	if format != models.FormatSingleElimination {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	if input.MaxParticipants < models.MinTournamentCapacity || input.MaxParticipants > models.MaxTournamentCapacity {
		return nil, ErrInvalidCapacity
	}
	if err := ValidateTournamentDates(input.StartDate, input.EndDate, s.now()); err != nil {
		return nil, err
	}

	tournament := &models.Tournament{
		ID:              uuid.NewString(),
		Name:            input.Name,
		Description:     input.Description,
		Sport:           input.Sport,
		Format:          format,
		OrganizerID:     userID,
		Participants:    []string{},
		MaxParticipants: input.MaxParticipants,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Status:          models.TournamentStatusUpcoming,
	}

	if err := s.repo.Create(ctx, tournament); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.TournamentCreated, tournament.ID, events.TournamentCreatedPayload{
		TournamentID: tournament.ID,
		Name:         tournament.Name,
		Sport:        tournament.Sport,
		OrganizerID:  userID,
		StartDate:    tournament.StartDate,
	})
	return tournament, nil
}

func (s *tournamentService) GetTournamentByID(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.loadTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	s.populateBannerURL(t)
	return t, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range tournaments {
		s.populateBannerURL(&tournaments[i])
	}
	return tournaments, nil
}

func (s *tournamentService) JoinTournament(ctx context.Context, userID, tournamentID string) (*models.Tournament, error) {
	var tournament *models.Tournament
	err := withVersionRetry(func() error {
		t, err := s.loadTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		if err := ValidateCanJoinTournament(t, userID); err != nil {
			return err
		}
		if err := s.participants.AddTournamentParticipant(ctx, t, userID); err != nil {
			return err
		}
		tournament = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.populateBannerURL(tournament)
	return tournament, nil
}

func (s *tournamentService) LeaveTournament(ctx context.Context, userID, tournamentID string) (*models.Tournament, error) {
	var tournament *models.Tournament
	err := withVersionRetry(func() error {
		t, err := s.loadTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		if err := ValidateCanLeaveTournament(t, userID); err != nil {
			return err
		}
		if err := s.participants.RemoveTournamentParticipant(ctx, t, userID); err != nil {
			return err
		}
		tournament = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.populateBannerURL(tournament)
	return tournament, nil
}

func (s *tournamentService) StartTournament(ctx context.Context, userID, tournamentID string) (*models.Tournament, error) {
	var tournament *models.Tournament
	err := withVersionRetry(func() error {
		t, err := s.loadTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		if t.OrganizerID != userID {
			return ErrOrganizerOnly
		}
		if t.Status != models.TournamentStatusUpcoming {
			return ErrTournamentNotUpcoming
		}
		if len(t.Participants) < 2 {
			return ErrNotEnoughParticipants
		}

		bracket, err := s.builder.Build(t.Participants)
		if err != nil {
			if errors.Is(err, brackets.ErrNotEnoughParticipants) {
				return ErrNotEnoughParticipants
			}
			return err
		}
		t.Bracket = bracket
		t.Status = models.TournamentStatusOngoing

		if err := s.repo.Update(ctx, nil, t); err != nil {
			return err
		}
		tournament = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.TournamentStarted, tournament.ID, events.TournamentStartedPayload{
		TournamentID:     tournament.ID,
		ParticipantCount: len(tournament.Participants),
	})
	s.broadcastBracket(tournament, "BRACKET_GENERATED")
	s.populateBannerURL(tournament)
	return tournament, nil
}

func (s *tournamentService) AdvanceBracket(ctx context.Context, userID, tournamentID, bracketMatchID, winnerID string) (*models.Tournament, error) {
	var tournament *models.Tournament
	var champion *string
	err := withVersionRetry(func() error {
		t, err := s.loadTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		if t.OrganizerID != userID {
			return ErrOrganizerOnly
		}
		if t.Status != models.TournamentStatusOngoing || t.Bracket == nil {
			return ErrTournamentNotOngoing
		}

		result, err := brackets.AdvanceWinner(t.Bracket, bracketMatchID, winnerID)
		if err != nil {
			switch {
			case errors.Is(err, brackets.ErrMatchNotInBracket):
				return ErrBracketMatchNotFound
			case errors.Is(err, brackets.ErrMatchNotPlayable):
				return ErrBracketMatchNotPending
			case errors.Is(err, brackets.ErrWinnerNotInMatch):
				return ErrBracketWinnerNotSeated
			default:
				return err
			}
		}

		if result.Champion != nil {
			t.Status = models.TournamentStatusCompleted
			t.Standings = buildStandings(t.Participants, *result.Champion, t.Bracket)
		}

		if err := s.repo.Update(ctx, nil, t); err != nil {
			return err
		}
		tournament = t
		champion = result.Champion
		return nil
	})
	if err != nil {
		return nil, err
	}

	if champion != nil {
		s.publisher.Publish(ctx, events.TournamentCompleted, tournament.ID, events.TournamentCompletedPayload{
			TournamentID: tournament.ID,
			WinnerID:     *champion,
			Participants: tournament.Participants,
		})
		s.broadcastBracket(tournament, "TOURNAMENT_COMPLETED")
	} else {
		s.broadcastBracket(tournament, "BRACKET_UPDATED")
	}
	s.populateBannerURL(tournament)
	return tournament, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, userID, tournamentID string, input UpdateTournamentInput) (*models.Tournament, error) {
	var tournament *models.Tournament
	err := withVersionRetry(func() error {
		t, err := s.loadTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		if t.OrganizerID != userID {
			return ErrOrganizerOnly
		}
		if t.Status == models.TournamentStatusCompleted {
			return ErrTournamentCompleted
		}

		if input.Name != nil {
			if *input.Name == "" {
				return ErrNameRequired
			}
			t.Name = *input.Name
		}
		if input.Description != nil {
			t.Description = input.Description
		}
		if input.StartDate != nil || input.EndDate != nil {
			if t.Status != models.TournamentStatusUpcoming {
				return ErrTournamentNotUpcoming
			}
			start := t.StartDate
			if input.StartDate != nil {
				start = *input.StartDate
			}
			end := t.EndDate
			if input.EndDate != nil {
				end = input.EndDate
			}
			if err := ValidateTournamentDates(start, end, s.now()); err != nil {
				return err
			}
			t.StartDate = start
			t.EndDate = end
		}
		if input.MaxParticipants != nil {
			capacity := *input.MaxParticipants
			if capacity < models.MinTournamentCapacity || capacity > models.MaxTournamentCapacity ||
				capacity < len(t.Participants) {
				return ErrInvalidCapacity
			}
			t.MaxParticipants = capacity
		}

		if err := s.repo.Update(ctx, nil, t); err != nil {
			return err
		}
		tournament = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.populateBannerURL(tournament)
	return tournament, nil
}

func (s *tournamentService) CancelTournament(ctx context.Context, userID, tournamentID string) (*models.Tournament, error) {
	var tournament *models.Tournament
	err := withVersionRetry(func() error {
		t, err := s.loadTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		if t.OrganizerID != userID {
			return ErrOrganizerOnly
		}
		switch t.Status {
		case models.TournamentStatusCompleted:
			return ErrTournamentCompleted
		case models.TournamentStatusCancelled:
			return ErrInvalidStatusTransition
		}
		t.Status = models.TournamentStatusCancelled
		if err := s.repo.Update(ctx, nil, t); err != nil {
			return err
		}
		tournament = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.populateBannerURL(tournament)
	return tournament, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, userID, tournamentID string) error {
	t, err := s.loadTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	if t.OrganizerID != userID {
		return ErrOrganizerOnly
	}
	if t.Status == models.TournamentStatusOngoing {
		return ErrTournamentOngoing
	}
	if err := s.repo.Delete(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	if t.BannerKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *t.BannerKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete tournament banner",
				slog.String("tournament_id", tournamentID), slog.Any("error", err))
		}
	}
	return nil
}

func (s *tournamentService) UploadBanner(ctx context.Context, userID, tournamentID string, banner io.Reader, contentType string) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, ErrBannerStorageUnavailable
	}
	ext, err := extensionForContentType(contentType)
	if err != nil {
		return nil, ErrUnsupportedImageType
	}

	key := fmt.Sprintf("tournaments/%s/banner%s", tournamentID, ext)

	var tournament *models.Tournament
	var oldKey *string
	uploaded := false
	err = withVersionRetry(func() error {
		t, err := s.loadTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		if t.OrganizerID != userID {
			return ErrOrganizerOnly
		}

		if !uploaded {
			if err := s.uploader.Upload(ctx, key, banner, contentType); err != nil {
				return fmt.Errorf("failed to upload banner: %w", err)
			}
			uploaded = true
		}

		oldKey = t.BannerKey
		t.BannerKey = &key
		if err := s.repo.Update(ctx, nil, t); err != nil {
			return err
		}
		tournament = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	if oldKey != nil && *oldKey != key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete previous banner",
				slog.String("tournament_id", tournamentID), slog.Any("error", err))
		}
	}
	s.populateBannerURL(tournament)
	return tournament, nil
}

func (s *tournamentService) loadTournament(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *tournamentService) populateBannerURL(t *models.Tournament) {
	if t == nil || t.BannerKey == nil || *t.BannerKey == "" || s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*t.BannerKey); url != "" {
		t.BannerURL = &url
	}
}

func (s *tournamentService) broadcastBracket(t *models.Tournament, messageType string) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(t.ID, brackets.HubMessage{
		Type: messageType,
		Payload: map[string]interface{}{
			"tournament_id": t.ID,
			"status":        t.Status,
			"bracket":       t.Bracket,
			"standings":     t.Standings,
		},
	})
}

// buildStandings orders the champion first, then the runner-up, then the
// remaining participants in registration order.
func buildStandings(participants []string, champion string, bracket *models.Bracket) []string {
	standings := []string{champion}
	if final := bracket.At(bracket.Rounds, 0); final != nil {
		if final.Participant1 != nil && *final.Participant1 != champion {
			standings = append(standings, *final.Participant1)
		} else if final.Participant2 != nil && *final.Participant2 != champion {
			standings = append(standings, *final.Participant2)
		}
	}
	for _, p := range participants {
		if !containsString(standings, p) {
			standings = append(standings, p)
		}
	}
	return standings
}

func extensionForContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("could not determine file extension from content type %q", contentType)
	}
}
