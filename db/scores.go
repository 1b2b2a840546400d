package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/onnwee/quizbot/failure"
	"github.com/onnwee/quizbot/quiz"
)

// ScoreStore persists and aggregates per-channel quiz scores.
type ScoreStore struct {
	db *sql.DB
}

func NewScoreStore(db *sql.DB) *ScoreStore {
	return &ScoreStore{db: db}
}

// IncrementScore atomically adds delta to (channel, username), creating the
// row at delta when absent.
func (s *ScoreStore) IncrementScore(ctx context.Context, channel, username string, delta int) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO quiz_scores (channel, username, score) VALUES ($1, $2, $3)
		ON CONFLICT (channel, username) DO UPDATE SET score = quiz_scores.score + $3`,
		channel, username, delta); err != nil {
		return failure.WrapKind(failure.KindStore, err, "db.IncrementScore", "channel %q username %q", channel, username)
	}
	return nil
}

// SetScore overwrites the score for (channel, username).
func (s *ScoreStore) SetScore(ctx context.Context, channel, username string, score int) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO quiz_scores (channel, username, score) VALUES ($1, $2, $3)
		ON CONFLICT (channel, username) DO UPDATE SET score = $3`,
		channel, username, score); err != nil {
		return failure.WrapKind(failure.KindStore, err, "db.SetScore", "channel %q username %q", channel, username)
	}
	return nil
}

// DeleteScore removes the row for (channel, username).
func (s *ScoreStore) DeleteScore(ctx context.Context, channel, username string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM quiz_scores WHERE channel = $1 AND username = $2`, channel, username); err != nil {
		return failure.WrapKind(failure.KindStore, err, "db.DeleteScore", "channel %q username %q", channel, username)
	}
	return nil
}

// ChannelScore returns the user's score in one channel, zero when absent.
func (s *ScoreStore) ChannelScore(ctx context.Context, channel, username string) (int, error) {
	var score int
	err := s.db.QueryRowContext(ctx,
		`SELECT score FROM quiz_scores WHERE channel = $1 AND username = $2`, channel, username).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, failure.WrapKind(failure.KindStore, err, "db.ChannelScore", "channel %q username %q", channel, username)
	}
	return score, nil
}

// GlobalScore returns the user's score summed across all channels.
func (s *ScoreStore) GlobalScore(ctx context.Context, username string) (int, error) {
	var score int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(score), 0) FROM quiz_scores WHERE username = $1`, username).Scan(&score)
	if err != nil {
		return 0, failure.WrapKind(failure.KindStore, err, "db.GlobalScore", "username %q", username)
	}
	return score, nil
}

// ChannelLeaderboard returns the channel's top three distinct scores with
// tied usernames grouped.
func (s *ScoreStore) ChannelLeaderboard(ctx context.Context, channel string) (quiz.Leaderboard, error) {
	return s.leaderboard(ctx, `
		SELECT score, string_agg(username, ',' ORDER BY username)
		FROM quiz_scores
		WHERE channel = $1
		GROUP BY score
		ORDER BY score DESC
		LIMIT 3`, channel)
}

// GlobalLeaderboard aggregates per-user totals across channels first, then
// groups by distinct total.
func (s *ScoreStore) GlobalLeaderboard(ctx context.Context) (quiz.Leaderboard, error) {
	return s.leaderboard(ctx, `
		SELECT score, string_agg(username, ',' ORDER BY username)
		FROM (
			SELECT username, SUM(score) AS score FROM quiz_scores GROUP BY username
		) totals
		GROUP BY score
		ORDER BY score DESC
		LIMIT 3`)
}

func (s *ScoreStore) leaderboard(ctx context.Context, query string, args ...any) (quiz.Leaderboard, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return quiz.Leaderboard{}, failure.WrapKind(failure.KindStore, err, "db.leaderboard", "query failed")
	}
	defer rows.Close()

	var lb quiz.Leaderboard
	for rows.Next() {
		var score int
		var usernames string
		if err := rows.Scan(&score, &usernames); err != nil {
			return quiz.Leaderboard{}, failure.WrapKind(failure.KindStore, err, "db.leaderboard", "scan failed")
		}
		lb.Positions = append(lb.Positions, quiz.LeaderboardPosition{
			Score:     score,
			Usernames: strings.Split(usernames, ","),
		})
	}
	if err := rows.Err(); err != nil {
		return quiz.Leaderboard{}, failure.WrapKind(failure.KindStore, err, "db.leaderboard", "row iteration failed")
	}
	return lb, nil
}
