package oracle

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupOracleMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func profileRows(id, userID int, name string, isAI bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "owner_user_id", "display_name", "specialty", "bio",
		"personality", "system_prompt", "is_ai", "is_online", "price_per_question", "created_at",
	}).AddRow(id, userID, nil, name, "tarot", "", "", "", isAI, false, int64(25), time.Now())
}

func TestCreateProfile(t *testing.T) {
	repo, mock, closer := setupOracleMock(t)
	defer closer()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO oracle_profiles")).
		WithArgs(30, nil, "Vovó Luz", "tarot", "", "", "Speak warmly.", true, int64(25)).
		WillReturnRows(profileRows(3, 30, "Vovó Luz", true))

	p, err := repo.Create(context.Background(), CreateProfileRequest{
		UserID:           30,
		DisplayName:      "Vovó Luz",
		Specialty:        "tarot",
		SystemPrompt:     "Speak warmly.",
		IsAI:             true,
		PricePerQuestion: 25,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, p.ID)
	assert.True(t, p.IsAI)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, closer := setupOracleMock(t)
	defer closer()

	mock.ExpectQuery("SELECT .+ FROM oracle_profiles WHERE id =").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrOracleNotFound)
}

func TestSetOnline_MissingOracle(t *testing.T) {
	repo, mock, closer := setupOracleMock(t)
	defer closer()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE oracle_profiles SET is_online = $1 WHERE id = $2")).
		WithArgs(true, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetOnline(context.Background(), 99, true)
	assert.ErrorIs(t, err, ErrOracleNotFound)
}

func TestAddAndGetSchedules(t *testing.T) {
	repo, mock, closer := setupOracleMock(t)
	defer closer()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO oracle_schedules (oracle_id, weekday, start_minute, end_minute)")).
		WithArgs(3, 3, 540, 1080).
		WillReturnRows(sqlmock.NewRows([]string{"id", "oracle_id", "weekday", "start_minute", "end_minute"}).
			AddRow(1, 3, 3, 540, 1080))

	entry, err := repo.AddSchedule(context.Background(), 3, CreateScheduleRequest{
		Weekday: 3, StartMinute: 540, EndMinute: 1080,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, entry.Weekday)

	mock.ExpectQuery("SELECT id, oracle_id, weekday, start_minute, end_minute").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "oracle_id", "weekday", "start_minute", "end_minute"}).
			AddRow(1, 3, 3, 540, 1080))

	entries, err := repo.GetSchedules(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 540, entries[0].StartMinute)
}
