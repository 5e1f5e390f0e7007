package postgres

var schema = []string{
	`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		channel_id TEXT NOT NULL,
		slack_ts TEXT NOT NULL,
		ts_micros BIGINT NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (channel_id, slack_ts)
	)`,
	`CREATE INDEX IF NOT EXISTS messages_channel_ts_idx ON messages (channel_id, ts_micros DESC)`,
	`CREATE TABLE IF NOT EXISTS photos (
		id TEXT PRIMARY KEY,
		message_id TEXT,
		source_key TEXT NOT NULL UNIQUE,
		image_url TEXT NOT NULL,
		blob_name TEXT NOT NULL DEFAULT '',
		raw_text TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		store_id TEXT,
		brands TEXT[] NOT NULL DEFAULT '{}',
		rejection_reason TEXT NOT NULL DEFAULT '',
		reviewed_by TEXT NOT NULL DEFAULT '',
		reviewed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS photos_status_created_idx ON photos (status, created_at)`,
	`CREATE INDEX IF NOT EXISTS photos_store_created_idx ON photos (store_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS stores (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		name_key TEXT NOT NULL UNIQUE,
		eligible_brands TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS brands (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		name_key TEXT NOT NULL UNIQUE,
		payout_amount BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sync_checkpoints (
		channel_id TEXT PRIMARY KEY,
		oldest TEXT NOT NULL DEFAULT '',
		latest TEXT NOT NULL DEFAULT '',
		cursor TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sync_locks (
		lock_key TEXT PRIMARY KEY,
		holder TEXT NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tokens (
		id TEXT PRIMARY KEY,
		secret TEXT NOT NULL,
		sub TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}
