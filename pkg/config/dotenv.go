package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// EnvFile names an optional dotenv file read before the environment. Values
// already set in the process environment win.
const EnvFile = "ENV_FILE"

const DefaultEnvFile = ".env"

func loadDotEnv() error {
	path := os.Getenv(EnvFile)
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
