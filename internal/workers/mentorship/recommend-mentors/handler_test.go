package recommendmentors

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/Barlow1/hoots-sub000/internal/common/errors"
	"github.com/Barlow1/hoots-sub000/internal/common/logger"
	"github.com/Barlow1/hoots-sub000/internal/engine"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:  5 * time.Second,
		CacheTTL: 10 * time.Minute,
		Policy:   engine.DefaultMatchPolicy,
	}
}

func setupHandler(t *testing.T) (*Handler, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewHandler(createTestConfig(), db, rdb, logger.NewTestLogger(t)), mock, mr
}

func candidateRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "bio", "industry", "cost", "experience", "tags"}).
		AddRow("m-1", "Ada", "compilers", "software", 50.0, 10.0, "{go,systems}").
		AddRow("m-2", "Grace", nil, "software", 200.0, 12.0, "{}").
		AddRow("m-3", "Linus", "kernels", "software", nil, nil, nil).
		AddRow("m-4", "Barbara", "", "finance", 50.0, 10.0, "{}")
}

// ==========================
// Execute
// ==========================

func TestExecute_InlineData(t *testing.T) {
	h, _, _ := setupHandler(t)

	input := &Input{
		UserID: "u-1",
		Preferences: &engine.Preferences{
			Industry:          "software",
			MentorPreferences: engine.MentorPreferences{Cost: 40, Experience: 8},
		},
		Candidates: []engine.Mentor{
			{ID: "a", Industry: "software", Cost: 60, Experience: 13},
			{ID: "b", Industry: "software", Cost: 61, Experience: 8},
			{ID: "c", Industry: "Software", Cost: 40, Experience: 8},
			{ID: "d", Industry: "software", Cost: 20, Experience: 3},
		},
	}

	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 2, out.MatchCount)
	assert.Equal(t, 4, out.CandidateCount)
	assert.True(t, out.HasMatches)
	assert.Equal(t, "a", out.Matches[0].ID)
	assert.Equal(t, "d", out.Matches[1].ID)
}

func TestExecute_EmptyInlineCandidatesSkipsDatabase(t *testing.T) {
	h, mock, _ := setupHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		Preferences: &engine.Preferences{Industry: "software"},
		Candidates:  []engine.Mentor{},
	})
	require.NoError(t, err)
	assert.False(t, out.HasMatches)
	assert.NotNil(t, out.Matches)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_LoadsFromDatabaseAndCaches(t *testing.T) {
	h, mock, mr := setupHandler(t)

	mock.ExpectQuery("SELECT industry, mentor_cost, mentor_experience FROM users").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"industry", "mentor_cost", "mentor_experience"}).
			AddRow("software", 40.0, 8.0))
	mock.ExpectQuery("FROM mentors").
		WithArgs("u-1").
		WillReturnRows(candidateRows())

	out, err := h.Execute(context.Background(), &Input{UserID: "u-1"})
	require.NoError(t, err)
	assert.Equal(t, 4, out.CandidateCount)
	require.Equal(t, 1, out.MatchCount)
	assert.Equal(t, "m-1", out.Matches[0].ID)
	assert.Equal(t, []string{"go", "systems"}, out.Matches[0].Tags)
	assert.NoError(t, mock.ExpectationsWereMet())

	raw, err := mr.Get("user:preferences:u-1")
	require.NoError(t, err)
	var cached engine.Preferences
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, "software", cached.Industry)
	assert.Equal(t, 40.0, cached.MentorPreferences.Cost)
}

func TestExecute_PreferencesFromCache(t *testing.T) {
	h, mock, mr := setupHandler(t)

	require.NoError(t, mr.Set("user:preferences:u-2",
		`{"industry":"software","mentorPreferences":{"cost":0,"experience":0}}`))
	mock.ExpectQuery("FROM mentors").
		WillReturnRows(candidateRows())

	out, err := h.Execute(context.Background(), &Input{UserID: "u-2"})
	require.NoError(t, err)
	require.Equal(t, 1, out.MatchCount)
	assert.Equal(t, "m-3", out.Matches[0].ID, "missing cost and experience count as zero")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_ExcludesRequestingUser(t *testing.T) {
	h, _, _ := setupHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		UserID:      "u-9",
		Preferences: &engine.Preferences{Industry: "x"},
		Candidates:  []engine.Mentor{{ID: "u-9", Industry: "x"}, {ID: "m-1", Industry: "x"}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, out.MatchCount)
	assert.Equal(t, "m-1", out.Matches[0].ID)
	assert.Equal(t, 1, out.CandidateCount)
}

func TestExecute_StoreCandidatesSkipOwnMentorProfile(t *testing.T) {
	h, mock, _ := setupHandler(t)

	// u-1 owns mentor profile m-1; the store filters it by mentors.user_id
	mock.ExpectQuery(`FROM mentors\s+WHERE is_active AND user_id <> \$1`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "bio", "industry", "cost", "experience", "tags"}).
			AddRow("m-2", "Grace", nil, "software", 45.0, 9.0, "{}"))

	out, err := h.Execute(context.Background(), &Input{
		UserID: "u-1",
		Preferences: &engine.Preferences{
			Industry:          "software",
			MentorPreferences: engine.MentorPreferences{Cost: 40, Experience: 8},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, out.MatchCount)
	assert.Equal(t, "m-2", out.Matches[0].ID)
	assert.Equal(t, 1, out.CandidateCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_Limit(t *testing.T) {
	h, _, _ := setupHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		Preferences: &engine.Preferences{Industry: "x"},
		Candidates: []engine.Mentor{
			{ID: "1", Industry: "x"}, {ID: "2", Industry: "x"}, {ID: "3", Industry: "x"},
		},
		Limit: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.MatchCount)
	assert.Equal(t, 3, out.CandidateCount)
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		setup    func(mock sqlmock.Sqlmock)
		wantCode errors.ErrorCode
	}{
		{
			name:     "no user and no preferences",
			input:    &Input{},
			wantCode: errors.ErrCodePreferencesNotFound,
		},
		{
			name:  "unknown user",
			input: &Input{UserID: "ghost"},
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM users").WithArgs("ghost").WillReturnError(sql.ErrNoRows)
			},
			wantCode: errors.ErrCodePreferencesNotFound,
		},
		{
			name:  "mentor query fails",
			input: &Input{UserID: "u-1", Preferences: &engine.Preferences{Industry: "x"}},
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM mentors").WillReturnError(sql.ErrConnDone)
			},
			wantCode: errors.ErrCodeMentorLookupFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock, _ := setupHandler(t)
			if tt.setup != nil {
				tt.setup(mock)
			}

			_, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}
