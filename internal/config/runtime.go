package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	runtimeEnv     = "LOBUG_RUNTIME_PATH"
	defaultRuntime = ".lobug"
	envFileName    = ".env"
	memoryFileName = "memory.yaml"
)

// GetRuntimePath resolves the runtime directory. Relative paths are taken
// from the user's home.
func GetRuntimePath() string {
	path := os.Getenv(runtimeEnv)
	if path == "" {
		path = defaultRuntime
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}

func EnvFilePath(runtime string) string {
	return filepath.Join(runtime, envFileName)
}

func MemoryFilePath(runtime string) string {
	return filepath.Join(runtime, memoryFileName)
}

// LoadDotEnv loads <runtime>/.env into the process environment. Variables
// already set win. A missing file is not an error.
func LoadDotEnv(runtime string) error {
	err := godotenv.Load(EnvFilePath(runtime))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
