package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pickuphub/pickuphub/models"
)

// stubConnector serves canned rows through database/sql so the scan
// helpers see the same driver value types lib/pq produces per column
// type: time.Time for date and timestamptz, int64 for integer, []byte
// for array and jsonb literals, nil for NULL.
type stubConnector struct {
	columns []string
	rows    [][]driver.Value
}

func (c *stubConnector) Connect(context.Context) (driver.Conn, error) {
	return &stubConn{connector: c}, nil
}

func (c *stubConnector) Driver() driver.Driver { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("open not supported")
}

type stubConn struct {
	connector *stubConnector
}

func (c *stubConn) QueryContext(_ context.Context, _ string, _ []driver.NamedValue) (driver.Rows, error) {
	return &stubRows{columns: c.connector.columns, rows: c.connector.rows}, nil
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}

func (c *stubConn) Close() error { return nil }

func (c *stubConn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions not supported")
}

type stubRows struct {
	columns []string
	rows    [][]driver.Value
	pos     int
}

func (r *stubRows) Columns() []string { return r.columns }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}

func stubDB(t *testing.T, columns []string, rows ...[]driver.Value) *sql.DB {
	t.Helper()
	db := sql.OpenDB(&stubConnector{columns: columns, rows: rows})
	t.Cleanup(func() { db.Close() })
	return db
}

var matchColumnNames = []string{
	"id", "sport", "scheduled_date", "scheduled_time", "timezone", "duration_minutes",
	"venue_id", "type", "status", "creator_id", "participants", "max_participants",
	"scores", "winner_id", "rules", "version", "created_at",
}

func TestGetMatchScansPostgresColumnTypes(t *testing.T) {
	date := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, time.August, 20, 9, 30, 0, 0, time.UTC)

	db := stubDB(t, matchColumnNames, []driver.Value{
		"match-1", "soccer", date, "18:00", "Europe/Lisbon", int64(90),
		nil, "public", "upcoming", "alice",
		[]byte("{alice,bob}"), int64(10),
		[]byte(`{"alice":2,"bob":1}`), nil, []byte(`{"scoring":"first_to_3"}`),
		int64(4), created,
	})
	repo := NewPostgresMatchRepository(db)

	m, err := repo.GetByID(context.Background(), "match-1")
	require.NoError(t, err)

	assert.Equal(t, "match-1", m.ID)
	assert.Equal(t, "soccer", m.Sport)
	assert.True(t, date.Equal(m.Schedule.Date))
	assert.Equal(t, "18:00", m.Schedule.Time)
	assert.Equal(t, "Europe/Lisbon", m.Schedule.Timezone)
	assert.Equal(t, 90, m.Schedule.DurationMinutes)
	assert.Nil(t, m.VenueID)
	assert.Equal(t, models.MatchTypePublic, m.Type)
	assert.Equal(t, models.MatchStatusUpcoming, m.Status)
	assert.Equal(t, "alice", m.CreatorID)
	assert.Equal(t, []string{"alice", "bob"}, m.Participants)
	assert.Equal(t, 10, m.MaxParticipants)
	assert.Equal(t, map[string]int{"alice": 2, "bob": 1}, m.Scores)
	assert.Nil(t, m.WinnerID)
	assert.Equal(t, models.Rules{models.RuleScoring: "first_to_3"}, m.Rules)
	assert.Equal(t, 4, m.Version)
	assert.True(t, created.Equal(m.CreatedAt))
}

func TestGetMatchNotFound(t *testing.T) {
	repo := NewPostgresMatchRepository(stubDB(t, matchColumnNames))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}
