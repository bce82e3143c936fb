package services

import (
	"context"

	"github.com/pickuphub/pickuphub/models"
	"github.com/pickuphub/pickuphub/repositories"
	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	GetStats(ctx context.Context) (models.DashboardStats, error)
}

type dashboardService struct {
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
}

func NewDashboardService(
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
) DashboardService {
	return &dashboardService{
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
	}
}

func (s *dashboardService) GetStats(ctx context.Context) (models.DashboardStats, error) {
	var (
		matchCounts      map[models.MatchStatus]int
		tournamentCounts map[models.TournamentStatus]int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.matchRepo.CountByStatus(gCtx)
		if err != nil {
			return err
		}
		matchCounts = counts
		return nil
	})
	g.Go(func() error {
		counts, err := s.tournamentRepo.CountByStatus(gCtx)
		if err != nil {
			return err
		}
		tournamentCounts = counts
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, err
	}

	stats := models.DashboardStats{
		MatchesByStatus:     matchCounts,
		TournamentsByStatus: tournamentCounts,
	}
	for _, n := range matchCounts {
		stats.MatchesTotal += n
	}
	for _, n := range tournamentCounts {
		stats.TournamentsTotal += n
	}
	return stats, nil
}
