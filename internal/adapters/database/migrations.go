package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applies the schema. Every statement is idempotent, so running
// it on every startup is safe.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS chat_logs (
		id           uuid PRIMARY KEY,
		email        text NOT NULL,
		thread_uuid  text NOT NULL,
		role         text NOT NULL,
		chat_history jsonb NOT NULL DEFAULT '[]',
		is_deleted   boolean NOT NULL DEFAULT false,
		created_at   timestamptz,
		updated_at   timestamptz
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_logs_created_at ON chat_logs (created_at) WHERE created_at IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_chat_logs_email ON chat_logs (email)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_logs_thread ON chat_logs (thread_uuid)`,

	`CREATE TABLE IF NOT EXISTS feature_interactions (
		id          uuid PRIMARY KEY,
		thread_uuid text,
		email       text,
		timestamp   timestamptz NOT NULL,
		interaction jsonb NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_feature_interactions_timestamp ON feature_interactions (timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_feature_interactions_name ON feature_interactions ((interaction->>'interaction'))`,

	`CREATE TABLE IF NOT EXISTS user_feedbacks (
		id          uuid PRIMARY KEY,
		email       text NOT NULL,
		thread_uuid text NOT NULL,
		turn_uuid   text NOT NULL,
		is_liked    boolean NOT NULL,
		feedback    jsonb NOT NULL DEFAULT '{}',
		created_at  timestamptz NOT NULL,
		UNIQUE (thread_uuid, turn_uuid)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_user_feedbacks_created_at ON user_feedbacks (created_at)`,

	`CREATE TABLE IF NOT EXISTS users (
		id                 uuid PRIMARY KEY,
		email              text NOT NULL UNIQUE,
		name               text NOT NULL DEFAULT '',
		profession         text NOT NULL DEFAULT '',
		role               text NOT NULL DEFAULT 'user',
		status             text NOT NULL DEFAULT 'active',
		signup_date        timestamptz,
		num_logins         integer NOT NULL DEFAULT 0,
		usage              integer NOT NULL DEFAULT 0,
		follow_up_usage    integer NOT NULL DEFAULT 0,
		feedback_count     integer NOT NULL DEFAULT 0,
		source_click_count integer NOT NULL DEFAULT 0,
		saved_sources      jsonb NOT NULL DEFAULT '[]',
		clicked_sources    jsonb NOT NULL DEFAULT '[]',
		stripe_customer_id text,
		created_at         timestamptz NOT NULL DEFAULT now(),
		updated_at         timestamptz NOT NULL DEFAULT now(),
		deleted_at         timestamptz
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_status ON users (status) WHERE deleted_at IS NULL`,

	`CREATE TABLE IF NOT EXISTS beta_users (
		id            uuid PRIMARY KEY,
		name          text NOT NULL DEFAULT '',
		email         text NOT NULL,
		cohort        text NOT NULL DEFAULT '',
		status        text NOT NULL DEFAULT '',
		profession    text NOT NULL DEFAULT '',
		invite_sent   boolean NOT NULL DEFAULT false,
		usage         integer NOT NULL DEFAULT 0,
		source        text NOT NULL DEFAULT 'dashboard',
		is_deleted    boolean NOT NULL DEFAULT false,
		date_added    timestamptz NOT NULL DEFAULT now(),
		date_modified timestamptz
	)`,
	`CREATE INDEX IF NOT EXISTS idx_beta_users_cohort ON beta_users (cohort) WHERE is_deleted = false`,

	`CREATE TABLE IF NOT EXISTS usage_entries (
		id           uuid PRIMARY KEY,
		timestamp    timestamptz NOT NULL,
		api_key      text NOT NULL,
		input_count  integer NOT NULL DEFAULT 0,
		output_count integer NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_usage_entries_timestamp ON usage_entries (timestamp)`,

	`CREATE TABLE IF NOT EXISTS api_customers (
		id             uuid PRIMARY KEY,
		customer_email text NOT NULL,
		customer_name  text NOT NULL DEFAULT '',
		api_key        text NOT NULL UNIQUE,
		customer_id    text NOT NULL DEFAULT '',
		status         text NOT NULL DEFAULT '',
		permissions    text NOT NULL DEFAULT '',
		rate_limit     text NOT NULL DEFAULT '',
		date_created   timestamptz NOT NULL DEFAULT now(),
		date_expires   timestamptz
	)`,
}
