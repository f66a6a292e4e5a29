package testenv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// ErrNotFound is returned by Load when no .env.test exists up the tree.
var ErrNotFound = errors.New("env file not found")

// Load finds the nearest .env.test above the working directory and applies
// it, overriding variables that are already set.
func Load() error {
	path, err := findUp(".env.test")
	if err != nil {
		return err
	}
	return LoadFile(path)
}

func LoadFile(path string) error {
	if err := godotenv.Overload(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func findUp(filename string) (string, error) {
	start, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}
	dir := start
	for {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, filename)
}
