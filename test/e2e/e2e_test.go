//go:build e2e

// Package e2e runs the store-backed workers against live Postgres and Redis.
// Start them with docker compose and run: go test -tags e2e ./test/e2e/...
package e2e

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Barlow1/hoots-sub000/internal/common/config"
	"github.com/Barlow1/hoots-sub000/internal/common/database"
	stderrors "github.com/Barlow1/hoots-sub000/internal/common/errors"
	"github.com/Barlow1/hoots-sub000/internal/common/logger"
	"github.com/Barlow1/hoots-sub000/internal/models"

	validatesubscription "github.com/Barlow1/hoots-sub000/internal/workers/billing/validate-subscription"
	calculategoalprogress "github.com/Barlow1/hoots-sub000/internal/workers/goals/calculate-goal-progress"
	creatementorshipapplication "github.com/Barlow1/hoots-sub000/internal/workers/mentorship/create-mentorship-application"
	recommendmentors "github.com/Barlow1/hoots-sub000/internal/workers/mentorship/recommend-mentors"
)

type stores struct {
	cfg *config.Config
	db  *sql.DB
	rdb *redis.Client
	// suffix keeps seeded rows apart between runs.
	suffix string
}

func setup(t *testing.T) *stores {
	t.Helper()
	ctx := context.Background()

	cfg, err := config.Load()
	require.NoError(t, err)

	// 🔧 FORCE LOCALHOST FOR E2E TESTS
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "❌ PostgreSQL connection failed")
	require.NoError(t, pg.Ping(ctx), "❌ PostgreSQL ping failed")
	t.Cleanup(func() { pg.Close() })

	rc := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, rc.Ping(ctx), "❌ Redis ping failed")
	t.Cleanup(func() { rc.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_init.sql"))
	require.NoError(t, err)
	_, err = pg.DB.ExecContext(ctx, string(schema))
	require.NoError(t, err, "❌ migration failed")

	return &stores{cfg: cfg, db: pg.DB, rdb: rc.Client, suffix: uuid.NewString()[:8]}
}

func (s *stores) id(prefix string) string { return prefix + "-" + s.suffix }

func (s *stores) exec(t *testing.T, query string, args ...interface{}) {
	t.Helper()
	_, err := s.db.Exec(query, args...)
	require.NoError(t, err, query)
}

func TestMentorshipFlow(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	log := logger.NewTestLogger(t)

	mentee, mentorUser, mentor, goal := s.id("mentee"), s.id("mentor-user"), s.id("mentor"), s.id("goal")

	s.exec(t, `INSERT INTO users (id, email, industry, mentor_cost, mentor_experience) VALUES ($1, $2, 'Tech', 50, 5)`,
		mentee, mentee+"@example.com")
	s.exec(t, `INSERT INTO users (id, email) VALUES ($1, $2)`, mentorUser, mentorUser+"@example.com")
	s.exec(t, `INSERT INTO mentors (id, user_id, name, industry, cost, experience, tags) VALUES ($1, $2, 'Ada', 'Tech', 60, 7, '{go}')`,
		mentor, mentorUser)
	s.exec(t, `INSERT INTO mentors (id, user_id, name, industry, cost, experience) VALUES ($1, $2, 'Self', 'Tech', 50, 5)`,
		s.id("self-mentor"), mentee)
	s.exec(t, `INSERT INTO goals (id, user_id, name) VALUES ($1, $2, 'Ship a side project')`, goal, mentee)
	s.exec(t, `INSERT INTO milestones (id, goal_id, name, completed, position) VALUES ($1, $2, 'Pick idea', TRUE, 0), ($3, $2, 'Build MVP', FALSE, 1), ($4, $2, 'Launch', FALSE, 2)`,
		s.id("ms1"), goal, s.id("ms2"), s.id("ms3"))
	t.Cleanup(func() {
		s.db.Exec(`DELETE FROM applications WHERE mentee_id = $1`, mentee)
		s.db.Exec(`DELETE FROM goals WHERE id = $1`, goal)
		s.db.Exec(`DELETE FROM mentors WHERE id IN ($1, $2)`, mentor, s.id("self-mentor"))
		s.db.Exec(`DELETE FROM subscriptions WHERE user_id = $1`, mentee)
		s.db.Exec(`DELETE FROM users WHERE id IN ($1, $2)`, mentee, mentorUser)
		s.rdb.Del(ctx, "user:preferences:"+mentee, "sub:"+mentee)
	})

	t.Run("recommend-mentors", func(t *testing.T) {
		h := recommendmentors.NewHandler(recommendmentors.LoadConfig(s.cfg), s.db, s.rdb, log)
		out, err := h.Execute(ctx, &recommendmentors.Input{UserID: mentee})
		require.NoError(t, err)

		var ids []string
		for _, m := range out.Matches {
			ids = append(ids, m.ID)
		}
		assert.Contains(t, ids, mentor)
		assert.NotContains(t, ids, s.id("self-mentor"))
		assert.Equal(t, int64(1), s.rdb.Exists(ctx, "user:preferences:"+mentee).Val(), "preferences cached")
	})

	t.Run("create-mentorship-application", func(t *testing.T) {
		h := creatementorshipapplication.NewHandler(creatementorshipapplication.LoadConfig(s.cfg), s.db, log)
		input := &creatementorshipapplication.Input{
			MenteeID:        mentee,
			MentorID:        mentor,
			ApplicationData: map[string]interface{}{"goals": "Learn Go"},
		}

		out, err := h.Execute(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, "pending", out.ApplicationStatus)

		_, err = h.Execute(ctx, input)
		require.Error(t, err)
		assert.True(t, stderrors.HasCode(err, stderrors.ErrCodeDuplicateApplication))
	})

	t.Run("calculate-goal-progress", func(t *testing.T) {
		h := calculategoalprogress.NewHandler(calculategoalprogress.LoadConfig(s.cfg), s.db, log)
		out, err := h.Execute(ctx, &calculategoalprogress.Input{GoalID: goal})
		require.NoError(t, err)
		assert.Equal(t, 34, out.Progress)
		assert.Equal(t, 1, out.CompletedCount)

		var stored int
		require.NoError(t, s.db.QueryRow(`SELECT progress FROM goals WHERE id = $1`, goal).Scan(&stored))
		assert.Equal(t, 34, stored)
	})

	t.Run("validate-subscription", func(t *testing.T) {
		h := validatesubscription.NewHandler(validatesubscription.LoadConfig(s.cfg), s.db, s.rdb, log)

		out, err := h.Execute(ctx, &validatesubscription.Input{UserID: mentee})
		require.NoError(t, err)
		assert.Equal(t, models.TierFree, out.TierLevel)

		s.exec(t, `INSERT INTO subscriptions (user_id, tier, status, current_period_end) VALUES ($1, 'premium', 'active', $2)`,
			mentee, time.Now().Add(30*24*time.Hour))
		s.rdb.Del(ctx, "sub:"+mentee)

		out, err = h.Execute(ctx, &validatesubscription.Input{UserID: mentee, RequiredTier: models.TierPremium})
		require.NoError(t, err)
		assert.True(t, out.IsValid)
	})
}
