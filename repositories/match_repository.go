package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pickuphub/pickuphub/models"
)

var ErrMatchNotFound = errors.New("match not found")

type ListMatchesFilter struct {
	Sport     *string
	Status    *models.MatchStatus
	Type      *models.MatchType
	CreatorID *string
	Limit     int
	Offset    int
}

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id string) (*models.Match, error)
	List(ctx context.Context, filter ListMatchesFilter) ([]models.Match, error)
	// Update compares-and-swaps on the version column and returns
	// ErrVersionConflict when the row changed since it was read.
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[models.MatchStatus]int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Create(ctx context.Context, m *models.Match) error {
	scores, err := json.Marshal(m.Scores)
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}
	rules, err := json.Marshal(m.Rules)
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}

	query := `
		INSERT INTO matches (
			id, sport, scheduled_date, scheduled_time, timezone, duration_minutes,
			venue_id, type, status, creator_id, participants, max_participants,
			scores, winner_id, rules
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING version, created_at`

	return r.db.QueryRowContext(ctx, query,
		m.ID, m.Sport, m.Schedule.Date, m.Schedule.Time, m.Schedule.Timezone, m.Schedule.DurationMinutes,
		m.VenueID, m.Type, m.Status, m.CreatorID, pq.Array(m.Participants), m.MaxParticipants,
		scores, m.WinnerID, rules,
	).Scan(&m.Version, &m.CreatedAt)
}

const matchColumns = `
	id, sport, scheduled_date, scheduled_time, timezone, duration_minutes,
	venue_id, type, status, creator_id, participants, max_participants,
	scores, winner_id, rules, version, created_at`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	var scores, rules []byte
	err := row.Scan(
		&m.ID, &m.Sport, &m.Schedule.Date, &m.Schedule.Time, &m.Schedule.Timezone, &m.Schedule.DurationMinutes,
		&m.VenueID, &m.Type, &m.Status, &m.CreatorID, pq.Array(&m.Participants), &m.MaxParticipants,
		&scores, &m.WinnerID, &rules, &m.Version, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(scores) > 0 {
		if err := json.Unmarshal(scores, &m.Scores); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scores: %w", err)
		}
	}
	if len(rules) > 0 {
		if err := json.Unmarshal(rules, &m.Rules); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rules: %w", err)
		}
	}
	return m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`
	m, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, filter ListMatchesFilter) ([]models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.Sport != nil {
		query += fmt.Sprintf(" AND sport = $%d", argID)
		args = append(args, *filter.Sport)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.Type != nil {
		query += fmt.Sprintf(" AND type = $%d", argID)
		args = append(args, *filter.Type)
		argID++
	}
	if filter.CreatorID != nil {
		query += fmt.Sprintf(" AND creator_id = $%d", argID)
		args = append(args, *filter.CreatorID)
		argID++
	}

	query += " ORDER BY scheduled_date, scheduled_time"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := []models.Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)

	scores, err := json.Marshal(m.Scores)
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}

	query := `
		UPDATE matches
		SET status = $1, participants = $2, scores = $3, winner_id = $4,
		    version = version + 1
		WHERE id = $5 AND version = $6`

	result, err := executor.ExecContext(ctx, query,
		m.Status, pq.Array(m.Participants), scores, m.WinnerID,
		m.ID, m.Version,
	)
	if err != nil {
		return err
	}
	if err := checkAffectedRows(result, ErrVersionConflict); err != nil {
		return err
	}
	m.Version++
	return nil
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) CountByStatus(ctx context.Context) (map[models.MatchStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM matches GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.MatchStatus]int)
	for rows.Next() {
		var status models.MatchStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
