package database

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) string

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// SupportsLastInsertId returns true if the driver supports LastInsertId()
	SupportsLastInsertId() bool

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the subdirectory name for migrations (e.g., "sqlite", "postgres")
	MigrationsSubdir() string

	// GooseDialect names the dialect for the migration runner
	GooseDialect() goose.Dialect

	// UpsertMasteredWordQuery inserts a mastered word or bumps its counter.
	// Args: user_id, word, definition, origin, phonics_pattern.
	UpsertMasteredWordQuery() string

	// AccumulatePracticeQuery adds minutes and activities to a practice day.
	// Args: user_id, practice_date, minutes, activities.
	AccumulatePracticeQuery() string

	// UpsertContentQuery stores a content pack, last writer wins.
	// Args: content_type, grade, level, content_json.
	UpsertContentQuery() string

	// InsertAvatarIfAbsentQuery creates the starting avatar unless one exists.
	// Args: user_id, appearance.
	InsertAvatarIfAbsentQuery() string
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

func rebind(driverName, query string) string {
	return sqlx.Rebind(sqlx.BindType(driverName), query)
}

const (
	insertMasteredWord = `INSERT INTO mastered_words
		(user_id, word, definition, origin, phonics_pattern, times_spelled_correctly, last_reviewed, mastered_at)
		VALUES (?, ?, ?, ?, ?, 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`

	insertPractice = `INSERT INTO daily_practice
		(user_id, practice_date, minutes_practiced, activities_completed)
		VALUES (?, ?, ?, ?)`

	insertContent = `INSERT INTO content_cache
		(content_type, grade, level, content_json, created_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`

	avatarColumns = `avatar_state
		(user_id, total_xp, current_level, appearance, accessories, updated_at)
		VALUES (?, 0, 1, ?, '[]', CURRENT_TIMESTAMP)`
)

// onConflictQueries are shared by SQLite and PostgreSQL, which both
// understand ON CONFLICT with the excluded pseudo-table.
type onConflictQueries struct{}

func (onConflictQueries) UpsertMasteredWordQuery() string {
	return insertMasteredWord + `
		ON CONFLICT (user_id, word) DO UPDATE SET
			times_spelled_correctly = mastered_words.times_spelled_correctly + 1,
			last_reviewed = CURRENT_TIMESTAMP`
}

func (onConflictQueries) AccumulatePracticeQuery() string {
	return insertPractice + `
		ON CONFLICT (user_id, practice_date) DO UPDATE SET
			minutes_practiced = daily_practice.minutes_practiced + excluded.minutes_practiced,
			activities_completed = daily_practice.activities_completed + excluded.activities_completed`
}

func (onConflictQueries) UpsertContentQuery() string {
	return insertContent + `
		ON CONFLICT (content_type, grade, level) DO UPDATE SET
			content_json = excluded.content_json,
			created_at = CURRENT_TIMESTAMP`
}

func (onConflictQueries) InsertAvatarIfAbsentQuery() string {
	return "INSERT INTO " + avatarColumns + " ON CONFLICT (user_id) DO NOTHING"
}
