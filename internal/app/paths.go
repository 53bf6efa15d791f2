package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	appDirName = "calorix"
	dbFileName = "calorix.db"
)

// DBPath picks the database location: the flag, then CALORIX_DB, then
// the user config directory.
func DBPath(flag, env string) (string, error) {
	if p := strings.TrimSpace(flag); p != "" {
		return p, nil
	}
	if p := strings.TrimSpace(env); p != "" {
		return p, nil
	}
	return DefaultDBPath()
}

func DefaultDBPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName, dbFileName), nil
}

func EnsureDBDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return nil
}
