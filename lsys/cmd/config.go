package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/hunterpope03/c-l-system-studio/lsystem"
)

// Environment variables read by LoadConfig.
const (
	EnvRecordPath    = "LSYS_RECORD_PATH"
	EnvMonitorPort   = "LSYS_MONITOR_PORT"
	EnvMaxIterations = "LSYS_MAX_ITERATIONS"
	EnvMemoryBudget  = "LSYS_MEMORY_BUDGET"
)

// Config holds the defaults of the command-line flags.
type Config struct {
	// RecordPath is the recording database, without the .sqlite3 extension.
	// Empty disables recording.
	RecordPath string

	// MonitorPort is the port of the monitoring server. Zero picks a random
	// port.
	MonitorPort int

	// MaxIterations bounds the iterations of user-entered systems.
	MaxIterations int

	// MemoryBudget limits the bytes an expansion may hold. Zero means no
	// limit.
	MemoryBudget int
}

// DefaultConfig returns the configuration used when no variable is set.
func DefaultConfig() Config {
	return Config{
		MaxIterations: lsystem.DefaultMaxIterations,
	}
}

// LoadConfig loads envFile into the environment, if it exists, and builds a
// Config from the environment. Variables already set take precedence over the
// file.
func LoadConfig(envFile string) (Config, error) {
	err := godotenv.Load(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
	}

	cfg := DefaultConfig()

	if v, ok := os.LookupEnv(EnvRecordPath); ok {
		cfg.RecordPath = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{EnvMonitorPort, &cfg.MonitorPort},
		{EnvMaxIterations, &cfg.MaxIterations},
		{EnvMemoryBudget, &cfg.MemoryBudget},
	}

	for _, e := range ints {
		v, ok := os.LookupEnv(e.name)
		if !ok || v == "" {
			continue
		}

		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf(
				"%s must be a non-negative integer, got %q", e.name, v)
		}

		*e.dst = n
	}

	return cfg, nil
}
