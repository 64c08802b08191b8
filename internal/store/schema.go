package store

const (
	tableProgress = "gym_progress"
	tableHistory  = "gym_history"
	tableFeedback = "gym_feedback"
)

// schemaDDL creates the tables. Timestamps are Unix milliseconds.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS gym_progress (
		engine_id   TEXT    NOT NULL,
		skill_key   TEXT    NOT NULL,
		box_level   INTEGER NOT NULL DEFAULT 1,
		highest_box INTEGER NOT NULL DEFAULT 1,
		next_review INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL,
		PRIMARY KEY (engine_id, skill_key)
	)`,
	`CREATE INDEX IF NOT EXISTS gym_progress_next_review ON gym_progress (next_review)`,
	`CREATE TABLE IF NOT EXISTS gym_history (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		engine_id     TEXT    NOT NULL,
		skill_key     TEXT    NOT NULL,
		is_correct    INTEGER NOT NULL,
		time_taken_ms INTEGER NOT NULL,
		score         INTEGER NOT NULL,
		metrics       TEXT,
		timestamp     INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS gym_history_engine ON gym_history (engine_id)`,
	`CREATE INDEX IF NOT EXISTS gym_history_timestamp ON gym_history (timestamp)`,
	`CREATE TABLE IF NOT EXISTS gym_feedback (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		engine_id  TEXT NOT NULL,
		problem_id TEXT NOT NULL,
		kind       TEXT NOT NULL,
		sentiment  TEXT NOT NULL,
		timestamp  INTEGER NOT NULL
	)`,
}
