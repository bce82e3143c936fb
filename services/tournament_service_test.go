package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pickuphub/pickuphub/brackets"
	"github.com/pickuphub/pickuphub/events"
	"github.com/pickuphub/pickuphub/models"
)

// registrationOrderSeeder makes bracket pairing deterministic for tests.
type registrationOrderSeeder struct{}

func (registrationOrderSeeder) Seed(participants []string) []string {
	out := make([]string, len(participants))
	copy(out, participants)
	return out
}

func newTestTournamentService(t *testing.T) (*tournamentService, *fakeTournamentRepo, *fakePublisher) {
	t.Helper()
	repo := newFakeTournamentRepo()
	pub := &fakePublisher{}
	pm := NewParticipantManager(newFakeMatchRepo(), repo, pub)
	builder := brackets.NewSingleEliminationBuilder(registrationOrderSeeder{})
	svc := NewTournamentService(repo, builder, pm, pub, nil, nil, discardLogger()).(*tournamentService)
	svc.now = func() time.Time { return testNow }
	return svc, repo, pub
}

func validTournamentInput() CreateTournamentInput {
	return CreateTournamentInput{
		Name:            "Spring Open",
		Sport:           "tennis",
		MaxParticipants: 8,
		StartDate:       testNow.Add(72 * time.Hour),
	}
}

func createWithParticipants(t *testing.T, svc *tournamentService, extra ...string) *models.Tournament {
	t.Helper()
	tournament, err := svc.CreateTournament(context.Background(), "org", validTournamentInput())
	require.NoError(t, err)
	for _, userID := range extra {
		_, err := svc.JoinTournament(context.Background(), userID, tournament.ID)
		require.NoError(t, err)
	}
	fresh, err := svc.GetTournamentByID(context.Background(), tournament.ID)
	require.NoError(t, err)
	return fresh
}

func TestCreateTournament(t *testing.T) {
	svc, _, pub := newTestTournamentService(t)

	tournament, err := svc.CreateTournament(context.Background(), "org", validTournamentInput())
	require.NoError(t, err)

	assert.NotEmpty(t, tournament.ID)
	assert.Equal(t, models.TournamentStatusUpcoming, tournament.Status)
	assert.Equal(t, models.FormatSingleElimination, tournament.Format)
	assert.Equal(t, "org", tournament.OrganizerID)
	assert.Empty(t, tournament.Participants)
	assert.Nil(t, tournament.Bracket)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TournamentCreated, pub.events[0].eventType)
}

func TestCreateTournamentValidation(t *testing.T) {
	svc, _, _ := newTestTournamentService(t)

	testCases := []struct {
		name    string
		mutate  func(*CreateTournamentInput)
		wantErr error
	}{
		{
			name:    "name required",
			mutate:  func(in *CreateTournamentInput) { in.Name = "" },
			wantErr: ErrNameRequired,
		},
		{
			name:    "sport required",
			mutate:  func(in *CreateTournamentInput) { in.Sport = "" },
			wantErr: ErrSportRequired,
		},
		{
			name:    "unsupported format",
			mutate:  func(in *CreateTournamentInput) { in.Format = models.TournamentFormat("double_elimination") },
			wantErr: ErrUnsupportedFormat,
		},
		{
			name:    "capacity below minimum",
			mutate:  func(in *CreateTournamentInput) { in.MaxParticipants = 3 },
			wantErr: ErrInvalidCapacity,
		},
		{
			name:    "capacity above maximum",
			mutate:  func(in *CreateTournamentInput) { in.MaxParticipants = 512 },
			wantErr: ErrInvalidCapacity,
		},
		{
			name:    "start date in past",
			mutate:  func(in *CreateTournamentInput) { in.StartDate = testNow.Add(-time.Hour) },
			wantErr: ErrScheduleInPast,
		},
		{
			name: "end before start",
			mutate: func(in *CreateTournamentInput) {
				end := in.StartDate.Add(-time.Hour)
				in.EndDate = &end
			},
			wantErr: ErrInvalidDateRange,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := validTournamentInput()
			tc.mutate(&input)
			_, err := svc.CreateTournament(context.Background(), "org", input)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestJoinAndLeaveTournament(t *testing.T) {
	svc, _, pub := newTestTournamentService(t)

	tournament := createWithParticipants(t, svc, "p1")
	assert.Equal(t, []string{"p1"}, tournament.Participants)
	assert.Contains(t, pub.eventTypes(), events.TournamentParticipantJoined)

	_, err := svc.JoinTournament(context.Background(), "p1", tournament.ID)
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	left, err := svc.LeaveTournament(context.Background(), "p1", tournament.ID)
	require.NoError(t, err)
	assert.Empty(t, left.Participants)
	assert.Contains(t, pub.eventTypes(), events.TournamentParticipantLeft)

	_, err = svc.LeaveTournament(context.Background(), "p1", tournament.ID)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestJoinTournamentCapacity(t *testing.T) {
	svc, _, _ := newTestTournamentService(t)

	tournament, err := svc.CreateTournament(context.Background(), "org", CreateTournamentInput{
		Name:            "Tiny Cup",
		Sport:           "chess",
		MaxParticipants: 4,
		StartDate:       testNow.Add(72 * time.Hour),
	})
	require.NoError(t, err)

	for _, userID := range []string{"p1", "p2", "p3", "p4"} {
		_, err := svc.JoinTournament(context.Background(), userID, tournament.ID)
		require.NoError(t, err)
	}

	_, err = svc.JoinTournament(context.Background(), "p5", tournament.ID)
	assert.ErrorIs(t, err, ErrTournamentFull)
}

func TestStartTournament(t *testing.T) {
	svc, repo, pub := newTestTournamentService(t)

	tournament := createWithParticipants(t, svc, "p1", "p2", "p3", "p4")

	_, err := svc.StartTournament(context.Background(), "p1", tournament.ID)
	assert.ErrorIs(t, err, ErrOrganizerOnly)

	started, err := svc.StartTournament(context.Background(), "org", tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusOngoing, started.Status)
	require.NotNil(t, started.Bracket)
	assert.Equal(t, 2, started.Bracket.Rounds)
	assert.Contains(t, pub.eventTypes(), events.TournamentStarted)

	stored, err := repo.GetByID(context.Background(), tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusOngoing, stored.Status)
	require.NotNil(t, stored.Bracket)

	// Registration closes once started.
	_, err = svc.JoinTournament(context.Background(), "late", tournament.ID)
	assert.ErrorIs(t, err, ErrRegistrationClosed)

	_, err = svc.StartTournament(context.Background(), "org", tournament.ID)
	assert.ErrorIs(t, err, ErrTournamentNotUpcoming)
}

func TestStartTournamentNeedsParticipants(t *testing.T) {
	svc, _, _ := newTestTournamentService(t)

	tournament := createWithParticipants(t, svc, "p1")

	_, err := svc.StartTournament(context.Background(), "org", tournament.ID)
	assert.ErrorIs(t, err, ErrNotEnoughParticipants)
}

func TestAdvanceBracketToCompletion(t *testing.T) {
	svc, _, pub := newTestTournamentService(t)

	tournament := createWithParticipants(t, svc, "p1", "p2", "p3", "p4")
	started, err := svc.StartTournament(context.Background(), "org", tournament.ID)
	require.NoError(t, err)

	_, err = svc.AdvanceBracket(context.Background(), "p1", tournament.ID, started.Bracket.At(1, 0).ID, "p1")
	assert.ErrorIs(t, err, ErrOrganizerOnly)

	_, err = svc.AdvanceBracket(context.Background(), "org", tournament.ID, "missing", "p1")
	assert.ErrorIs(t, err, ErrBracketMatchNotFound)

	_, err = svc.AdvanceBracket(context.Background(), "org", tournament.ID, started.Bracket.At(1, 0).ID, "p4")
	assert.ErrorIs(t, err, ErrBracketWinnerNotSeated)

	// Final cannot be played before both semifinals resolve.
	_, err = svc.AdvanceBracket(context.Background(), "org", tournament.ID, started.Bracket.At(2, 0).ID, "p1")
	assert.ErrorIs(t, err, ErrBracketMatchNotPending)

	current, err := svc.AdvanceBracket(context.Background(), "org", tournament.ID, started.Bracket.At(1, 0).ID, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusOngoing, current.Status)

	current, err = svc.AdvanceBracket(context.Background(), "org", tournament.ID, started.Bracket.At(1, 1).ID, "p4")
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusOngoing, current.Status)

	finalID := current.Bracket.At(2, 0).ID
	completed, err := svc.AdvanceBracket(context.Background(), "org", tournament.ID, finalID, "p4")
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusCompleted, completed.Status)
	assert.Equal(t, []string{"p4", "p1", "p2", "p3"}, completed.Standings)
	assert.Contains(t, pub.eventTypes(), events.TournamentCompleted)

	// No further advancement once completed.
	_, err = svc.AdvanceBracket(context.Background(), "org", tournament.ID, finalID, "p4")
	assert.ErrorIs(t, err, ErrTournamentNotOngoing)
}

func TestAdvanceBracketRequiresOngoing(t *testing.T) {
	svc, _, _ := newTestTournamentService(t)

	tournament := createWithParticipants(t, svc, "p1", "p2")

	_, err := svc.AdvanceBracket(context.Background(), "org", tournament.ID, "any", "p1")
	assert.ErrorIs(t, err, ErrTournamentNotOngoing)
}

func TestUpdateTournament(t *testing.T) {
	svc, _, _ := newTestTournamentService(t)

	tournament := createWithParticipants(t, svc, "p1", "p2", "p3", "p4")

	_, err := svc.UpdateTournament(context.Background(), "p1", tournament.ID, UpdateTournamentInput{
		Name: strPtr("Renamed"),
	})
	assert.ErrorIs(t, err, ErrOrganizerOnly)

	_, err = svc.UpdateTournament(context.Background(), "org", tournament.ID, UpdateTournamentInput{
		Name: strPtr(""),
	})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.UpdateTournament(context.Background(), "org", tournament.ID, UpdateTournamentInput{
		MaxParticipants: intPtr(3),
	})
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	updated, err := svc.UpdateTournament(context.Background(), "org", tournament.ID, UpdateTournamentInput{
		Name:            strPtr("Renamed"),
		MaxParticipants: intPtr(16),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, 16, updated.MaxParticipants)

	_, err = svc.StartTournament(context.Background(), "org", tournament.ID)
	require.NoError(t, err)

	// Dates are frozen once the tournament is underway.
	newStart := testNow.Add(96 * time.Hour)
	_, err = svc.UpdateTournament(context.Background(), "org", tournament.ID, UpdateTournamentInput{
		StartDate: &newStart,
	})
	assert.ErrorIs(t, err, ErrTournamentNotUpcoming)

	// Name changes are still allowed while ongoing.
	updated, err = svc.UpdateTournament(context.Background(), "org", tournament.ID, UpdateTournamentInput{
		Name: strPtr("Renamed Again"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Again", updated.Name)
}

func TestCancelTournament(t *testing.T) {
	svc, _, _ := newTestTournamentService(t)

	tournament := createWithParticipants(t, svc, "p1", "p2")

	_, err := svc.CancelTournament(context.Background(), "p1", tournament.ID)
	assert.ErrorIs(t, err, ErrOrganizerOnly)

	cancelled, err := svc.CancelTournament(context.Background(), "org", tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusCancelled, cancelled.Status)

	_, err = svc.CancelTournament(context.Background(), "org", tournament.ID)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestDeleteTournament(t *testing.T) {
	svc, repo, _ := newTestTournamentService(t)

	tournament := createWithParticipants(t, svc, "p1", "p2")
	_, err := svc.StartTournament(context.Background(), "org", tournament.ID)
	require.NoError(t, err)

	err = svc.DeleteTournament(context.Background(), "org", tournament.ID)
	assert.ErrorIs(t, err, ErrTournamentOngoing)

	finalID := ""
	current, err := svc.GetTournamentByID(context.Background(), tournament.ID)
	require.NoError(t, err)
	finalID = current.Bracket.At(1, 0).ID
	_, err = svc.AdvanceBracket(context.Background(), "org", tournament.ID, finalID, "p1")
	require.NoError(t, err)

	err = svc.DeleteTournament(context.Background(), "p1", tournament.ID)
	assert.ErrorIs(t, err, ErrOrganizerOnly)

	err = svc.DeleteTournament(context.Background(), "org", tournament.ID)
	require.NoError(t, err)
	assert.Empty(t, repo.tournaments)
}

func TestUploadBanner(t *testing.T) {
	t.Run("storage not configured", func(t *testing.T) {
		svc, _, _ := newTestTournamentService(t)
		tournament := createWithParticipants(t, svc)

		_, err := svc.UploadBanner(context.Background(), "org", tournament.ID, strings.NewReader("img"), "image/png")
		assert.ErrorIs(t, err, ErrBannerStorageUnavailable)
	})

	t.Run("uploads and exposes public url", func(t *testing.T) {
		svc, _, _ := newTestTournamentService(t)
		uploader := newFakeUploader()
		svc.uploader = uploader
		tournament := createWithParticipants(t, svc)

		_, err := svc.UploadBanner(context.Background(), "p1", tournament.ID, strings.NewReader("img"), "image/png")
		assert.ErrorIs(t, err, ErrOrganizerOnly)

		_, err = svc.UploadBanner(context.Background(), "org", tournament.ID, strings.NewReader("img"), "application/pdf")
		assert.ErrorIs(t, err, ErrUnsupportedImageType)

		updated, err := svc.UploadBanner(context.Background(), "org", tournament.ID, strings.NewReader("img"), "image/png")
		require.NoError(t, err)
		require.NotNil(t, updated.BannerURL)

		key := "tournaments/" + tournament.ID + "/banner.png"
		assert.Equal(t, "https://cdn.test/"+key, *updated.BannerURL)
		assert.Contains(t, uploader.objects, key)
	})
}

func TestGetTournamentNotFound(t *testing.T) {
	svc, _, _ := newTestTournamentService(t)

	_, err := svc.GetTournamentByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
