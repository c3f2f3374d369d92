package spool

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvLogLevel      = "SPOOL_LOG_LEVEL"
	EnvResolverCache = "SPOOL_RESOLVER_CACHE"
	EnvDetectCycles  = "SPOOL_DETECT_CYCLES"
	EnvMaxDepth      = "SPOOL_MAX_DEPTH"
)

// Config is the file form of the container settings.
type Config struct {
	LogLevel      string `yaml:"log_level"`
	ResolverCache bool   `yaml:"resolver_cache"`
	DetectCycles  bool   `yaml:"detect_cycles"`
	MaxDepth      int    `yaml:"max_depth"`
}

func DefaultConfig() Config {
	return Config{
		ResolverCache: true,
		DetectCycles:  true,
		MaxDepth:      256,
	}
}

// ParseConfig decodes YAML on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errConfigInvalid("cannot decode config", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a YAML file (skipped when path is empty) and overlays the
// SPOOL_* environment variables. Values from envFiles apply only where the
// process environment does not set the variable.
func LoadConfig(path string, envFiles ...string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errConfigInvalid("cannot read config file "+path, err)
		}
		if cfg, err = ParseConfig(data); err != nil {
			return Config{}, err
		}
	}

	fileEnv := map[string]string{}
	if len(envFiles) > 0 {
		var err error
		if fileEnv, err = godotenv.Read(envFiles...); err != nil {
			return Config{}, errConfigInvalid("cannot read env files", err)
		}
	}

	lookup := func(name string) (string, bool) {
		if v, ok := os.LookupEnv(name); ok {
			return v, true
		}
		v, ok := fileEnv[name]
		return v, ok
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvResolverCache); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errConfigInvalid(EnvResolverCache+" is not a boolean", err)
		}
		c.ResolverCache = b
	}
	if v, ok := lookup(EnvDetectCycles); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errConfigInvalid(EnvDetectCycles+" is not a boolean", err)
		}
		c.DetectCycles = b
	}
	if v, ok := lookup(EnvMaxDepth); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errConfigInvalid(EnvMaxDepth+" is not an integer", err)
		}
		c.MaxDepth = n
	}
	return nil
}

func (c Config) Validate() error {
	if c.MaxDepth < 0 {
		return errConfigInvalid(fmt.Sprintf("max_depth must not be negative, got %d", c.MaxDepth), nil)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel. An empty level is info.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(c.LogLevel) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, errConfigInvalid("invalid log_level "+strconv.Quote(c.LogLevel), err)
	}
	return level, nil
}
