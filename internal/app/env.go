package app

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the commands read.
const EnvPrefix = "ROADNET_"

// LoadEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set win over the file. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Env returns ROADNET_<name>, or def when it is unset or empty.
func Env(name, def string) string {
	if v := os.Getenv(EnvPrefix + name); v != "" {
		return v
	}
	return def
}

// EnvInt is Env for integers. Values that do not parse fall back to def.
func EnvInt(name string, def int) int {
	if n, err := strconv.Atoi(Env(name, "")); err == nil {
		return n
	}
	return def
}

// EnvDuration is Env for durations such as "2s". Values that do not parse fall back to def.
func EnvDuration(name string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(Env(name, "")); err == nil {
		return d
	}
	return def
}
