package postgres

// GetMigrations returns all embedded migrations in order.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_sync_journal",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_event_log",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
	}
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS sync_journal (
    id                BIGSERIAL PRIMARY KEY,
    operation         TEXT        NOT NULL,
    course_id         TEXT        NOT NULL,
    student_email     TEXT        NOT NULL,
    progress          INTEGER     NOT NULL DEFAULT 0,
    completed_modules INTEGER     NOT NULL DEFAULT 0,
    remote_id         TEXT        NOT NULL DEFAULT '',
    remote_error      TEXT        NOT NULL DEFAULT '',
    applied_at        TIMESTAMPTZ NOT NULL,
    recorded_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_sync_journal_student
    ON sync_journal (student_email, applied_at DESC);

CREATE INDEX IF NOT EXISTS idx_sync_journal_pending
    ON sync_journal (applied_at)
    WHERE remote_error <> '';
`

const migration001Down = `
DROP TABLE IF EXISTS sync_journal;
`

const migration002Up = `
CREATE TABLE IF NOT EXISTS event_log (
    id           BIGSERIAL PRIMARY KEY,
    event_type   TEXT        NOT NULL,
    aggregate_id TEXT        NOT NULL,
    occurred_at  TIMESTAMPTZ NOT NULL,
    payload      JSONB       NOT NULL DEFAULT '{}'::jsonb,
    recorded_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_event_log_type
    ON event_log (event_type, occurred_at DESC);
`

const migration002Down = `
DROP TABLE IF EXISTS event_log;
`
