package infra

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormLogger routes GORM's query log into zerolog. Only errors and queries
// slower than the threshold are logged; record-not-found is not an error.
type GormLogger struct {
	slowThreshold time.Duration
	level         logger.LogLevel
}

func NewGormLogger(slowThreshold time.Duration) *GormLogger {
	return &GormLogger{slowThreshold: slowThreshold, level: logger.Warn}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		log.Info().Msgf(msg, args...)
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		log.Warn().Msgf(msg, args...)
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		log.Error().Msgf(msg, args...)
	}
}

func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var event *zerolog.Event
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		event = log.Error().Err(err)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= logger.Warn:
		event = log.Warn().Dur("threshold", l.slowThreshold)
	case l.level >= logger.Info:
		event = log.Debug()
	default:
		return
	}

	sql, rows := fc()
	event.Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("gorm query")
}
