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

var ErrTournamentNotFound = errors.New("tournament not found")

type ListTournamentsFilter struct {
	Sport       *string
	Status      *models.TournamentStatus
	OrganizerID *string
	Limit       int
	Offset      int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	// Update compares-and-swaps on the version column and returns
	// ErrVersionConflict when the row changed since it was read.
	Update(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[models.TournamentStatus]int, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func marshalBracket(b *models.Bracket) ([]byte, error) {
	if b == nil {
		return nil, nil
	}
	return json.Marshal(b)
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	bracket, err := marshalBracket(t.Bracket)
	if err != nil {
		return fmt.Errorf("failed to marshal bracket: %w", err)
	}

	query := `
		INSERT INTO tournaments (
			id, name, description, sport, format, organizer_id, participants,
			max_participants, start_date, end_date, status, bracket, standings, banner_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING version, created_at`

	return r.db.QueryRowContext(ctx, query,
		t.ID, t.Name, t.Description, t.Sport, t.Format, t.OrganizerID, pq.Array(t.Participants),
		t.MaxParticipants, t.StartDate, t.EndDate, t.Status, bracket, pq.Array(t.Standings), t.BannerKey,
	).Scan(&t.Version, &t.CreatedAt)
}

const tournamentColumns = `
	id, name, description, sport, format, organizer_id, participants,
	max_participants, start_date, end_date, status, bracket, standings,
	banner_key, version, created_at`

func scanTournament(row interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	t := &models.Tournament{}
	var bracket []byte
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.Sport, &t.Format, &t.OrganizerID, pq.Array(&t.Participants),
		&t.MaxParticipants, &t.StartDate, &t.EndDate, &t.Status, &bracket, pq.Array(&t.Standings),
		&t.BannerKey, &t.Version, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(bracket) > 0 {
		t.Bracket = &models.Bracket{}
		if err := json.Unmarshal(bracket, t.Bracket); err != nil {
			return nil, fmt.Errorf("failed to unmarshal bracket: %w", err)
		}
	}
	return t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	t, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE 1=1`
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
	if filter.OrganizerID != nil {
		query += fmt.Sprintf(" AND organizer_id = $%d", argID)
		args = append(args, *filter.OrganizerID)
		argID++
	}

	query += " ORDER BY start_date"
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

	tournaments := []models.Tournament{}
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		tournaments = append(tournaments, *t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)

	bracket, err := marshalBracket(t.Bracket)
	if err != nil {
		return fmt.Errorf("failed to marshal bracket: %w", err)
	}

	query := `
		UPDATE tournaments
		SET name = $1, description = $2, participants = $3, max_participants = $4,
		    start_date = $5, end_date = $6, status = $7, bracket = $8,
		    standings = $9, banner_key = $10, version = version + 1
		WHERE id = $11 AND version = $12`

	result, err := executor.ExecContext(ctx, query,
		t.Name, t.Description, pq.Array(t.Participants), t.MaxParticipants,
		t.StartDate, t.EndDate, t.Status, bracket,
		pq.Array(t.Standings), t.BannerKey,
		t.ID, t.Version,
	)
	if err != nil {
		return err
	}
	if err := checkAffectedRows(result, ErrVersionConflict); err != nil {
		return err
	}
	t.Version++
	return nil
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) CountByStatus(ctx context.Context) (map[models.TournamentStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM tournaments GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.TournamentStatus]int)
	for rows.Next() {
		var status models.TournamentStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
