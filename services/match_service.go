package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pickuphub/pickuphub/events"
	"github.com/pickuphub/pickuphub/models"
	"github.com/pickuphub/pickuphub/repositories"
)

type CreateMatchInput struct {
	Sport           string           `json:"sport"`
	Schedule        models.Schedule  `json:"schedule"`
	VenueID         *string          `json:"venue_id,omitempty"`
	Type            models.MatchType `json:"type,omitempty"`
	MaxParticipants *int             `json:"max_participants,omitempty"`
	Rules           models.Rules     `json:"rules,omitempty"`
}

type UpdateScoreInput struct {
	Scores   map[string]int `json:"scores"`
	WinnerID *string        `json:"winner_id,omitempty"`
}

type MatchService interface {
	CreateMatch(ctx context.Context, userID string, input CreateMatchInput) (*models.Match, error)
	GetMatchByID(ctx context.Context, id string) (*models.Match, error)
	ListMatches(ctx context.Context, filter repositories.ListMatchesFilter) ([]models.Match, error)
	JoinMatch(ctx context.Context, userID, matchID string) (*models.Match, error)
	LeaveMatch(ctx context.Context, userID, matchID string) (*models.Match, error)
	UpdateMatchStatus(ctx context.Context, userID, matchID string, status models.MatchStatus) (*models.Match, error)
	UpdateScore(ctx context.Context, userID, matchID string, input UpdateScoreInput) (*models.Match, error)
	CancelMatch(ctx context.Context, userID, matchID string) (*models.Match, error)
	DeleteMatch(ctx context.Context, userID, matchID string) error
}

type matchService struct {
	repo         repositories.MatchRepository
	participants *ParticipantManager
	publisher    events.Publisher
	logger       *slog.Logger
	now          func() time.Time
}

func NewMatchService(
	repo repositories.MatchRepository,
	participants *ParticipantManager,
	publisher events.Publisher,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		repo:         repo,
		participants: participants,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *matchService) CreateMatch(ctx context.Context, userID string, input CreateMatchInput) (*models.Match, error) {
	if input.Sport == "" {
		return nil, ErrSportRequired
	}

	matchType := input.Type
	if matchType == "" {
		matchType = models.MatchTypePublic
	}
	if matchType != models.MatchTypePublic && matchType != models.MatchTypePrivate {
		return nil, ErrInvalidMatchType
	}

	if err := input.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	if err := ValidateSchedule(input.Schedule, s.now()); err != nil {
		return nil, err
	}

	capacity := models.DefaultPublicCapacity
	if matchType == models.MatchTypePrivate {
		capacity = models.DefaultPrivateCapacity
	}
	if input.MaxParticipants != nil {
		capacity = *input.MaxParticipants
		if capacity < 2 {
			return nil, ErrInvalidCapacity
		}
	}

	schedule := input.Schedule
	if schedule.DurationMinutes <= 0 {
		schedule.DurationMinutes = models.DefaultDurationMinutes
	}

	match := &models.Match{
		ID:              uuid.NewString(),
		Sport:           input.Sport,
		Schedule:        schedule,
		VenueID:         input.VenueID,
		Type:            matchType,
		Status:          models.MatchStatusUpcoming,
		CreatorID:       userID,
		Participants:    []string{userID},
		MaxParticipants: capacity,
		Scores:          map[string]int{},
		Rules:           input.Rules,
	}

	if err := s.repo.Create(ctx, match); err != nil {
		return nil, err
	}

	startsAt, _ := schedule.StartsAt()
	s.publisher.Publish(ctx, events.MatchCreated, match.ID, events.MatchCreatedPayload{
		MatchID:       match.ID,
		CreatedBy:     userID,
		Sport:         match.Sport,
		ScheduledDate: startsAt,
		Type:          string(match.Type),
	})
	return match, nil
}

func (s *matchService) GetMatchByID(ctx context.Context, id string) (*models.Match, error) {
	return s.loadMatch(ctx, id)
}

func (s *matchService) ListMatches(ctx context.Context, filter repositories.ListMatchesFilter) ([]models.Match, error) {
	return s.repo.List(ctx, filter)
}

func (s *matchService) JoinMatch(ctx context.Context, userID, matchID string) (*models.Match, error) {
	var match *models.Match
	err := withVersionRetry(func() error {
		m, err := s.loadMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if err := ValidateCanJoinMatch(m, userID); err != nil {
			return err
		}
		if err := s.participants.AddMatchParticipant(ctx, m, userID); err != nil {
			return err
		}
		match = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (s *matchService) LeaveMatch(ctx context.Context, userID, matchID string) (*models.Match, error) {
	var match *models.Match
	err := withVersionRetry(func() error {
		m, err := s.loadMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if err := ValidateCanLeaveMatch(m, userID); err != nil {
			return err
		}
		if err := s.participants.RemoveMatchParticipant(ctx, m, userID); err != nil {
			return err
		}
		match = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (s *matchService) UpdateMatchStatus(ctx context.Context, userID, matchID string, status models.MatchStatus) (*models.Match, error) {
	var match *models.Match
	err := withVersionRetry(func() error {
		m, err := s.loadMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if m.CreatorID != userID {
			return ErrCreatorOnly
		}
		if err := ValidateMatchStatusTransition(m.Status, status); err != nil {
			return err
		}
		m.Status = status
		if err := s.repo.Update(ctx, nil, m); err != nil {
			return err
		}
		match = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch match.Status {
	case models.MatchStatusCompleted:
		s.publisher.Publish(ctx, events.MatchCompleted, match.ID, events.MatchCompletedPayload{
			MatchID:      match.ID,
			WinnerID:     match.WinnerID,
			Participants: match.Participants,
			Sport:        match.Sport,
		})
	case models.MatchStatusCancelled:
		s.publisher.Publish(ctx, events.MatchCancelled, match.ID, events.MatchCancelledPayload{
			MatchID: match.ID,
			Reason:  "cancelled by creator",
		})
	}
	return match, nil
}

func (s *matchService) UpdateScore(ctx context.Context, userID, matchID string, input UpdateScoreInput) (*models.Match, error) {
	var match *models.Match
	err := withVersionRetry(func() error {
		m, err := s.loadMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if !m.HasParticipant(userID) {
			return ErrNotParticipant
		}
		if m.Status != models.MatchStatusUpcoming && m.Status != models.MatchStatusOngoing {
			return ErrMatchNotScorable
		}
		for participantID := range input.Scores {
			if !m.HasParticipant(participantID) {
				return fmt.Errorf("%w: cannot record a score for %s", ErrNotParticipant, participantID)
			}
		}

		if m.Scores == nil {
			m.Scores = map[string]int{}
		}
		for participantID, score := range input.Scores {
			m.Scores[participantID] = score
		}

		if input.WinnerID != nil {
			if !m.HasParticipant(*input.WinnerID) {
				return ErrWinnerNotParticipant
			}
			winner := *input.WinnerID
			m.WinnerID = &winner
			m.Status = models.MatchStatusCompleted
		}

		if err := s.repo.Update(ctx, nil, m); err != nil {
			return err
		}
		match = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	if match.Status == models.MatchStatusCompleted {
		s.publisher.Publish(ctx, events.MatchCompleted, match.ID, events.MatchCompletedPayload{
			MatchID:      match.ID,
			WinnerID:     match.WinnerID,
			Participants: match.Participants,
			Sport:        match.Sport,
		})
	}
	return match, nil
}

func (s *matchService) CancelMatch(ctx context.Context, userID, matchID string) (*models.Match, error) {
	var match *models.Match
	err := withVersionRetry(func() error {
		m, err := s.loadMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if m.CreatorID != userID {
			return ErrCreatorOnly
		}
		if m.Status == models.MatchStatusCompleted {
			return ErrMatchAlreadyCompleted
		}
		if m.Status == models.MatchStatusCancelled {
			return ErrInvalidStatusTransition
		}
		m.Status = models.MatchStatusCancelled
		if err := s.repo.Update(ctx, nil, m); err != nil {
			return err
		}
		match = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.MatchCancelled, match.ID, events.MatchCancelledPayload{
		MatchID: match.ID,
		Reason:  "cancelled by creator",
	})
	return match, nil
}

func (s *matchService) DeleteMatch(ctx context.Context, userID, matchID string) error {
	m, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if m.CreatorID != userID {
		return ErrCreatorOnly
	}
	if m.Status != models.MatchStatusCancelled {
		return ErrMatchNotCancelled
	}
	if err := s.repo.Delete(ctx, matchID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return err
	}
	return nil
}

func (s *matchService) loadMatch(ctx context.Context, id string) (*models.Match, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return s.applyExpiry(ctx, m)
}

// applyExpiry enforces the lazy auto-expiry rule: an upcoming match
// whose scheduled window has fully passed becomes expired before any
// validation sees it. There is no background timer.
func (s *matchService) applyExpiry(ctx context.Context, m *models.Match) (*models.Match, error) {
	if m.Status != models.MatchStatusUpcoming {
		return m, nil
	}
	deadline, err := m.Schedule.EndsAt()
	if err != nil || !s.now().After(deadline) {
		return m, nil
	}

	m.Status = models.MatchStatusExpired
	if err := s.repo.Update(ctx, nil, m); err != nil {
		if errors.Is(err, repositories.ErrVersionConflict) {
			// Another request moved the match first; use its outcome.
			fresh, freshErr := s.repo.GetByID(ctx, m.ID)
			if freshErr != nil {
				if errors.Is(freshErr, repositories.ErrMatchNotFound) {
					return nil, ErrMatchNotFound
				}
				return nil, freshErr
			}
			return fresh, nil
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "match auto-expired",
		slog.String("match_id", m.ID), slog.String("sport", m.Sport))
	return m, nil
}
