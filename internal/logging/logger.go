package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

// New builds the application logger. Debug mode writes human readable
// console output, everything else writes JSON lines to stdout.
func New(level, ginMode string) zerolog.Logger {
	return NewWithWriter(os.Stdout, level, ginMode)
}

// NewWithWriter is New with an explicit output
func NewWithWriter(out io.Writer, level, ginMode string) zerolog.Logger {
	zerolog.TimestampFieldName = "timestamp"

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	w := out
	if ginMode == "debug" {
		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = out
		w = consoleWriter
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger()
}

// gormWriter routes GORM log lines through zerolog
type gormWriter struct {
	logger zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Warn().Str("component", "gorm").Msgf(format, args...)
}

// GormLogger returns a GORM logger that reports slow queries and errors
func GormLogger(logger zerolog.Logger) gormlogger.Interface {
	return gormlogger.New(gormWriter{logger: logger}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
