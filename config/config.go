// Package config loads runtime settings. Later layers override earlier
// ones: defaults, a .env file, an INI file, then TALEFORGE_* variables.
// Command-line flags are applied by the caller.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pixil98/go-errors"
	"gopkg.in/ini.v1"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TALEFORGE_"

// Save backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

type Config struct {
	GameDir     string
	MoveMinutes int
	WrapWidth   int

	SaveBackend string
	SaveDir     string
	RedisAddr   string
	RedisPrefix string

	LogLevel  slog.Level
	LogFormat string
	LogFile   string
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		GameDir:     "games/lantern",
		MoveMinutes: 1,
		WrapWidth:   80,
		SaveBackend: BackendFile,
		SaveDir:     "saves",
		RedisAddr:   "localhost:6379",
		RedisPrefix: "taleforge",
		LogLevel:    slog.LevelInfo,
		LogFormat:   "text",
	}
}

// Load builds the configuration. iniPath may be empty; a named INI file
// that cannot be read is an error.
func Load(iniPath string) (*Config, error) {
	// The .env file is optional.
	_ = godotenv.Load()

	cfg := Default()
	if iniPath != "" {
		if err := cfg.applyINI(iniPath); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyINI(path string) error {
	f, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("loading config %s: %w", path, err)
	}

	game := f.Section("game")
	c.GameDir = game.Key("dir").MustString(c.GameDir)
	c.MoveMinutes = game.Key("move_minutes").MustInt(c.MoveMinutes)
	c.WrapWidth = game.Key("wrap_width").MustInt(c.WrapWidth)

	save := f.Section("save")
	c.SaveBackend = save.Key("backend").MustString(c.SaveBackend)
	c.SaveDir = save.Key("dir").MustString(c.SaveDir)
	c.RedisAddr = save.Key("redis_addr").MustString(c.RedisAddr)
	c.RedisPrefix = save.Key("redis_prefix").MustString(c.RedisPrefix)

	log := f.Section("log")
	if log.HasKey("level") {
		c.LogLevel = ParseLogLevel(log.Key("level").String())
	}
	c.LogFormat = log.Key("format").MustString(c.LogFormat)
	c.LogFile = log.Key("file").MustString(c.LogFile)
	return nil
}

func (c *Config) applyEnv() error {
	c.GameDir = getEnv("GAME_DIR", c.GameDir)
	c.SaveBackend = getEnv("SAVE_BACKEND", c.SaveBackend)
	c.SaveDir = getEnv("SAVE_DIR", c.SaveDir)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPrefix = getEnv("REDIS_PREFIX", c.RedisPrefix)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = ParseLogLevel(v)
	}

	el := errors.NewErrorList()
	var err error
	if c.MoveMinutes, err = getEnvInt("MOVE_MINUTES", c.MoveMinutes); err != nil {
		el.Add(err)
	}
	if c.WrapWidth, err = getEnvInt("WRAP_WIDTH", c.WrapWidth); err != nil {
		el.Add(err)
	}
	return el.Err()
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	el := errors.NewErrorList()
	if c.GameDir == "" {
		el.Add(fmt.Errorf("game dir is required"))
	}
	if c.MoveMinutes < 0 {
		el.Add(fmt.Errorf("move_minutes must not be negative"))
	}
	if c.WrapWidth < 0 {
		el.Add(fmt.Errorf("wrap_width must not be negative"))
	}
	switch c.SaveBackend {
	case BackendFile:
		if c.SaveDir == "" {
			el.Add(fmt.Errorf("save dir is required for the file backend"))
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			el.Add(fmt.Errorf("redis_addr is required for the redis backend"))
		}
	default:
		el.Add(fmt.Errorf("unknown save backend %q", c.SaveBackend))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		el.Add(fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	return el.Err()
}

// ParseLogLevel maps a level name to a slog level, defaulting to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(EnvPrefix + key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return n, nil
}
