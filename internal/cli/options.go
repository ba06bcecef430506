package cli

import (
	"os"
	"strconv"
	"time"
)

// Environment fallbacks for flags.
const (
	EnvRules      = "PARLEY_RULES"
	EnvRedisAddr  = "PARLEY_REDIS_ADDR"
	EnvSessionDir = "PARLEY_SESSION_DIR"
)

// Options carries the configuration shared by the commands that build an engine.
type Options struct {
	RulesPath     string
	Fallback      string
	Debug         bool
	JSONLogs      bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration
	SessionDir    string
	MaxInputSize  int
}

// EnvString returns the value of key, or def when it is unset or empty.
func EnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvInt returns the integer value of key, or def when it is unset or invalid.
func EnvInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}
