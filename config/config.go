// Package config loads the harness settings from the environment and from an
// optional .env file.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Environment variables read by FromEnv.
const (
	EnvWaitTimeout = "STREAMTEST_WAIT_TIMEOUT"
	EnvTraceDB     = "STREAMTEST_TRACE_DB"
	EnvLogTasks    = "STREAMTEST_LOG_TASKS"
)

// DefaultWaitTimeout is how long a recorder waits when no timeout is given.
const DefaultWaitTimeout = time.Second

// Config holds the harness settings.
type Config struct {
	// WaitTimeout bounds a recorder wait that did not specify a timeout.
	WaitTimeout time.Duration

	// TraceDB is the SQLite database that receives the task trace. Tracing
	// is off when it is empty.
	TraceDB string

	// LogTasks prints every task run by the CLI scheduler.
	LogTasks bool
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		WaitTimeout: DefaultWaitTimeout,
	}
}

// Load reads the given .env files, or ".env" in the working directory when
// none is given, and then the environment. A missing default .env file is not
// an error. Variables already set in the environment win over the files.
func Load(files ...string) (Config, error) {
	err := godotenv.Load(files...)
	if err != nil && (len(files) > 0 || !os.IsNotExist(err)) {
		return Config{}, errors.Wrap(err, "loading env file")
	}

	return FromEnv()
}

// FromEnv builds the settings from the environment only.
func FromEnv() (Config, error) {
	c := Default()

	if v, ok := os.LookupEnv(EnvWaitTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "parsing %s", EnvWaitTimeout)
		}

		if d <= 0 {
			return Config{}, errors.Errorf(
				"%s must be positive, got %s", EnvWaitTimeout, v)
		}

		c.WaitTimeout = d
	}

	c.TraceDB = os.Getenv(EnvTraceDB)

	if v, ok := os.LookupEnv(EnvLogTasks); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "parsing %s", EnvLogTasks)
		}

		c.LogTasks = b
	}

	return c, nil
}
