package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tracker/internal/config"
)

var globalLogger zerolog.Logger

// InitDefaultLogger sets up a JSON logger usable before the config is read.
func InitDefaultLogger() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimestampFieldName = "timestamp"
	zerolog.DurationFieldUnit = time.Millisecond

	globalLogger = zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger()
	globalLogger.Debug().Msg("initialized default logger")
}

func MustInitApplicationLogger() {
	env := config.Global().Env

	level, w, err := loggerOutput(env, os.Stdout)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("env", env).
			Msg("failed to init application logger")
		panic(err)
	}

	zerolog.SetGlobalLevel(level)
	globalLogger = globalLogger.Output(w).
		With().
		Str("env", env).
		Logger()
	globalLogger.Info().
		Str("level", level.String()).
		Msg("initialized application logger")
}

// loggerOutput picks the level and writer for env. Local runs get a
// human readable console writer, other envs keep JSON on out.
func loggerOutput(env string, out io.Writer) (zerolog.Level, io.Writer, error) {
	switch env {
	case config.EnvDev:
		return zerolog.DebugLevel, out, nil
	case config.EnvProd:
		return zerolog.InfoLevel, out, nil
	case config.EnvLocal:
		return zerolog.TraceLevel, zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.DateTime,
		}, nil
	default:
		return zerolog.NoLevel, nil, fmt.Errorf("unknown env: %q", env)
	}
}

// componentLogger tags every entry with the component that wrote it.
func componentLogger(component string) zerolog.Logger {
	return globalLogger.With().
		Str("component", component).
		Logger()
}
