package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// gormLogger sends gorm's output to zerolog. Every query is traced at debug,
// slow ones at warn and failures at error. Outcomes the repositories turn
// into domain errors stay at debug.
type gormLogger struct {
	log   zerolog.Logger
	level logger.LogLevel
	slow  time.Duration
}

var _ logger.Interface = (*gormLogger)(nil)

func newGormLogger(log zerolog.Logger) *gormLogger {
	return &gormLogger{
		log:   log.With().Str("component", "gorm").Logger(),
		level: logger.Info,
		slow:  slowQueryThreshold,
	}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		l.log.Info().Msgf(msg, args...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		l.log.Warn().Msgf(msg, args...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		l.log.Error().Msgf(msg, args...)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var ev *zerolog.Event
	msg := "query"
	switch {
	case err != nil && !expectedQueryError(err) && l.level >= logger.Error:
		ev, msg = l.log.Error().Err(err), "query failed"
	case l.slow > 0 && elapsed > l.slow && l.level >= logger.Warn:
		ev, msg = l.log.Warn(), "slow query"
	case l.level >= logger.Info:
		ev = l.log.Debug()
		if err != nil {
			ev = ev.Err(err)
		}
	default:
		return
	}
	if !ev.Enabled() {
		return
	}

	sql, rows := fc()
	ev.Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg(msg)
}

// expectedQueryError reports errors that are part of normal operation:
// misses, unique conflicts and NOWAIT lock failures.
func expectedQueryError(err error) bool {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "55P03" || pgErr.Code == "23505"
	}
	return false
}
