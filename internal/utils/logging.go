package utils

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/natefinch/lumberjack"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	zeroLogger      *zerolog.Logger
	zeroLoggerLevel = zerolog.InfoLevel
	logWriters      []io.Writer
	logContext      map[string]string
	logMutex        sync.Mutex
)

// SetLogContext adds key/value pairs to every line emitted by Logger().
func SetLogContext(key, value string) {
	logMutex.Lock()
	defer logMutex.Unlock()
	if logContext == nil {
		logContext = make(map[string]string)
	}
	logContext[key] = value
	zeroLogger = nil
}

// SetLogVerbosity specifies the verbosity of the global logger, using the
// go-ethereum log levels (0 crit .. 5 trace).
func SetLogVerbosity(verbosity log.Lvl) {
	logMutex.Lock()
	defer logMutex.Unlock()
	zeroLoggerLevel = zerologLevel(verbosity)
	if zeroLogger != nil {
		l := zeroLogger.Level(zeroLoggerLevel)
		zeroLogger = &l
	}
}

// AddLogFile creates a rotating log file of the given maximum size (in MB)
// and makes it the destination of the global logger.
func AddLogFile(filePath string, rotateSize int) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return errors.Wrapf(err, "cannot create directory for %s", filePath)
	}
	logMutex.Lock()
	defer logMutex.Unlock()
	logWriters = append(logWriters, &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    rotateSize,
		MaxBackups: 10,
		MaxAge:     30,
		Compress:   true,
	})
	zeroLogger = nil
	return nil
}

// SetLogOutput replaces every configured destination with w. Tests use it to
// capture output.
func SetLogOutput(w io.Writer) {
	logMutex.Lock()
	defer logMutex.Unlock()
	logWriters = []io.Writer{w}
	zeroLogger = nil
}

// Logger returns a zerolog.Logger singleton.
func Logger() *zerolog.Logger {
	logMutex.Lock()
	defer logMutex.Unlock()
	if zeroLogger == nil {
		var w io.Writer
		switch len(logWriters) {
		case 0:
			w = zerolog.ConsoleWriter{Out: os.Stderr}
		case 1:
			w = logWriters[0]
		default:
			w = zerolog.MultiLevelWriter(logWriters...)
		}
		ctx := zerolog.New(w).Level(zeroLoggerLevel).With().Timestamp()
		for k, v := range logContext {
			ctx = ctx.Str(k, v)
		}
		l := ctx.Logger()
		zeroLogger = &l
	}
	return zeroLogger
}

func zerologLevel(verbosity log.Lvl) zerolog.Level {
	switch verbosity {
	case log.LvlCrit:
		return zerolog.FatalLevel
	case log.LvlError:
		return zerolog.ErrorLevel
	case log.LvlWarn:
		return zerolog.WarnLevel
	case log.LvlInfo:
		return zerolog.InfoLevel
	case log.LvlDebug, log.LvlTrace:
		return zerolog.DebugLevel
	}
	return zerolog.Disabled
}

// FatalErrMsg prints the error and a formatted message, then exits the program.
func FatalErrMsg(err error, format string, args ...interface{}) {
	Logger().Fatal().Err(err).Msgf(format, args...)
}
