package services

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/pickuphub/pickuphub/models"
	"github.com/pickuphub/pickuphub/repositories"
)

// In-memory repository fakes honoring the same compare-and-swap version
// semantics as the Postgres implementations.

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[string]*models.Match

	// forceConflicts makes the next N updates fail with a version
	// conflict without applying anything.
	forceConflicts int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: map[string]*models.Match{}}
}

func copyMatch(m *models.Match) *models.Match {
	out := *m
	out.Participants = append([]string(nil), m.Participants...)
	if m.Scores != nil {
		out.Scores = make(map[string]int, len(m.Scores))
		for k, v := range m.Scores {
			out.Scores[k] = v
		}
	}
	return &out
}

func (r *fakeMatchRepo) Create(ctx context.Context, m *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.Version = 1
	r.matches[m.ID] = copyMatch(m)
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id string) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return copyMatch(m), nil
}

func (r *fakeMatchRepo) List(ctx context.Context, filter repositories.ListMatchesFilter) ([]models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Match{}
	for _, m := range r.matches {
		out = append(out, *copyMatch(m))
	}
	return out, nil
}

func (r *fakeMatchRepo) Update(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.forceConflicts > 0 {
		r.forceConflicts--
		return repositories.ErrVersionConflict
	}
	stored, ok := r.matches[m.ID]
	if !ok || stored.Version != m.Version {
		return repositories.ErrVersionConflict
	}
	m.Version++
	r.matches[m.ID] = copyMatch(m)
	return nil
}

func (r *fakeMatchRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.matches, id)
	return nil
}

func (r *fakeMatchRepo) CountByStatus(ctx context.Context) (map[models.MatchStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[models.MatchStatus]int{}
	for _, m := range r.matches {
		counts[m.Status]++
	}
	return counts, nil
}

type fakeTournamentRepo struct {
	mu          sync.Mutex
	tournaments map[string]*models.Tournament

	forceConflicts int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: map[string]*models.Tournament{}}
}

func copyTournament(t *models.Tournament) *models.Tournament {
	out := *t
	out.Participants = append([]string(nil), t.Participants...)
	out.Standings = append([]string(nil), t.Standings...)
	if t.Bracket != nil {
		bracket := *t.Bracket
		bracket.Matches = append([]models.BracketMatch(nil), t.Bracket.Matches...)
		out.Bracket = &bracket
	}
	return &out
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.Version = 1
	r.tournaments[t.ID] = copyTournament(t)
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return copyTournament(t), nil
}

func (r *fakeTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Tournament{}
	for _, t := range r.tournaments {
		out = append(out, *copyTournament(t))
	}
	return out, nil
}

func (r *fakeTournamentRepo) Update(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.forceConflicts > 0 {
		r.forceConflicts--
		return repositories.ErrVersionConflict
	}
	stored, ok := r.tournaments[t.ID]
	if !ok || stored.Version != t.Version {
		return repositories.ErrVersionConflict
	}
	t.Version++
	r.tournaments[t.ID] = copyTournament(t)
	return nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

func (r *fakeTournamentRepo) CountByStatus(ctx context.Context) (map[models.TournamentStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[models.TournamentStatus]int{}
	for _, t := range r.tournaments {
		counts[t.Status]++
	}
	return counts, nil
}

type publishedEvent struct {
	eventType   string
	aggregateID string
	payload     interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) Publish(ctx context.Context, eventType, aggregateID string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{eventType: eventType, aggregateID: aggregateID, payload: payload})
}

func (p *fakePublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.eventType
	}
	return out
}

type fakeUploader struct {
	mu        sync.Mutex
	objects   map[string]string // key -> content type
	deleted   []string
	baseURL   string
	uploadErr error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: map[string]string{}, baseURL: "https://cdn.test"}
}

func (u *fakeUploader) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.uploadErr != nil {
		return u.uploadErr
	}
	u.objects[key] = contentType
	return nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return u.baseURL + "/" + key
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
