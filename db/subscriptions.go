package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/onnwee/quizbot/bot"
	"github.com/onnwee/quizbot/failure"
)

// SubscriptionStore persists which channels joined the bot and which
// features each has enabled.
type SubscriptionStore struct {
	db *sql.DB
}

func NewSubscriptionStore(db *sql.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

// Users returns every subscribed channel with its enabled feature ids.
func (s *SubscriptionStore) Users(ctx context.Context) ([]bot.UserRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT users.channel, COALESCE(string_agg(features.feature_id, ','), '')
		FROM users
		LEFT OUTER JOIN features ON users.channel = features.channel
		GROUP BY users.channel
		ORDER BY users.channel`)
	if err != nil {
		return nil, failure.WrapKind(failure.KindStore, err, "db.Users", "query failed")
	}
	defer rows.Close()

	var out []bot.UserRecord
	for rows.Next() {
		var row bot.UserRecord
		var ids string
		if err := rows.Scan(&row.Channel, &ids); err != nil {
			return nil, failure.WrapKind(failure.KindStore, err, "db.Users", "scan failed")
		}
		if ids != "" {
			row.FeatureIDs = strings.Split(ids, ",")
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, failure.WrapKind(failure.KindStore, err, "db.Users", "row iteration failed")
	}
	return out, nil
}

func (s *SubscriptionStore) AddUser(ctx context.Context, channel string) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (channel) VALUES ($1) ON CONFLICT (channel) DO NOTHING`, channel); err != nil {
		return failure.WrapKind(failure.KindStore, err, "db.AddUser", "channel %q", channel)
	}
	return nil
}

// RemoveUser deletes the user row and all of its feature enablement rows.
func (s *SubscriptionStore) RemoveUser(ctx context.Context, channel string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE channel = $1`, channel); err != nil {
		return failure.WrapKind(failure.KindStore, err, "db.RemoveUser", "channel %q", channel)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM features WHERE channel = $1`, channel); err != nil {
		return failure.WrapKind(failure.KindStore, err, "db.RemoveUser", "features for channel %q", channel)
	}
	return nil
}

func (s *SubscriptionStore) AddFeature(ctx context.Context, channel, featureID string) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO features (channel, feature_id) VALUES ($1, $2) ON CONFLICT (channel, feature_id) DO NOTHING`,
		channel, featureID); err != nil {
		return failure.WrapKind(failure.KindStore, err, "db.AddFeature", "channel %q feature %q", channel, featureID)
	}
	return nil
}

func (s *SubscriptionStore) RemoveFeature(ctx context.Context, channel, featureID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM features WHERE channel = $1 AND feature_id = $2`, channel, featureID); err != nil {
		return failure.WrapKind(failure.KindStore, err, "db.RemoveFeature", "channel %q feature %q", channel, featureID)
	}
	return nil
}
