package datastore

import (
	"context"
	"log/slog"
	"time"

	"github.com/atelierops/maillink-go/internal/logging"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQueryThreshold defines the duration after which a query is
// considered slow. Batch runs over large message sets issue many small
// queries; one second keeps the log signal useful.
const DefaultSlowQueryThreshold = 1 * time.Second

// slogGormLogger adapts the application's slog logger to GORM's logger
// interface.
type slogGormLogger struct {
	log           *slog.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() gormlogger.Interface {
	return &slogGormLogger{
		log:           logging.ForService("datastore"),
		level:         gormlogger.Warn,
		slowThreshold: DefaultSlowQueryThreshold,
	}
}

func (l *slogGormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *slogGormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.log.Info(msg, "args", args)
	}
}

func (l *slogGormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.log.Warn(msg, "args", args)
	}
}

func (l *slogGormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.log.Error(msg, "args", args)
	}
}

func (l *slogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormlogger.Error:
		sql, rows := fc()
		l.log.Error("query failed", "error", err, "sql", sql, "rows", rows, "elapsed", elapsed)
	case elapsed > l.slowThreshold && l.slowThreshold > 0 && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.log.Warn("slow query", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}

// performAutoMigration automates database migrations with error handling.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	migrationStart := time.Now()
	log := logging.ForService("datastore")

	tableMappings := []struct {
		model any
		name  string
	}{
		{&BusinessEntity{}, "business_entities"},
		{&Message{}, "messages"},
		{&MatchPattern{}, "match_patterns"},
		{&Link{}, "links"},
		{&Suggestion{}, "suggestions"},
	}

	for _, table := range tableMappings {
		if err := db.AutoMigrate(table.model); err != nil {
			return dbError(err, "auto_migrate_table", "critical",
				"db_type", dbType,
				"table", table.name,
				"connection", connectionInfo)
		}
	}

	if debug {
		log.Debug("database migration completed",
			"db_type", dbType,
			"tables", len(tableMappings),
			"duration", time.Since(migrationStart))
	}

	return nil
}
