package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DefaultDotEnvFile is read by the CLI before anything else.
const DefaultDotEnvFile = ".env"

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error. With replace set, variables that are
// already defined are overwritten.
func LoadDotEnv(path string, replace bool) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	load := godotenv.Load
	if replace {
		load = godotenv.Overload
	}
	if err := load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ReadDotEnv parses path without touching the environment.
func ReadDotEnv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return values, nil
}
