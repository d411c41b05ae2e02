package database

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"
)

// MySQLDialect implements Dialect for MySQL
type MySQLDialect struct{}

// NewMySQLDialect creates a new MySQL dialect
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

// DSN makes sure DATETIME columns scan into time.Time
func (d *MySQLDialect) DSN(config DialectConfig) string {
	if strings.Contains(config.URL, "parseTime=") {
		return config.URL
	}
	if strings.Contains(config.URL, "?") {
		return config.URL + "&parseTime=true"
	}
	return config.URL + "?parseTime=true"
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	return rebind(d.DriverName(), query)
}

func (d *MySQLDialect) SupportsLastInsertId() bool {
	return true
}

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	if _, err := db.Exec("SET FOREIGN_KEY_CHECKS = 1;"); err != nil {
		return err
	}

	return nil
}

func (d *MySQLDialect) MigrationsSubdir() string {
	return "mysql"
}

func (d *MySQLDialect) GooseDialect() goose.Dialect {
	return goose.DialectMySQL
}

func (d *MySQLDialect) UpsertMasteredWordQuery() string {
	return insertMasteredWord + `
		ON DUPLICATE KEY UPDATE
			times_spelled_correctly = times_spelled_correctly + 1,
			last_reviewed = CURRENT_TIMESTAMP`
}

func (d *MySQLDialect) AccumulatePracticeQuery() string {
	return insertPractice + `
		ON DUPLICATE KEY UPDATE
			minutes_practiced = minutes_practiced + VALUES(minutes_practiced),
			activities_completed = activities_completed + VALUES(activities_completed)`
}

func (d *MySQLDialect) UpsertContentQuery() string {
	return insertContent + `
		ON DUPLICATE KEY UPDATE
			content_json = VALUES(content_json),
			created_at = CURRENT_TIMESTAMP`
}

func (d *MySQLDialect) InsertAvatarIfAbsentQuery() string {
	return "INSERT IGNORE INTO " + avatarColumns
}
