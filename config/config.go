// Package config loads tripmate settings from .env, the environment and flags.
package config

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Token store backends.
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config holds the runtime configuration of the local UI.
type Config struct {
	Addr           string        `env:"TRIPMATE_ADDR" envDefault:"localhost:5173"`
	APIBaseURL     string        `env:"TRIPMATE_API_BASE_URL" envDefault:"http://localhost:8000"`
	TokenStore     string        `env:"TRIPMATE_TOKEN_STORE" envDefault:"file"`
	TokenDir       string        `env:"TRIPMATE_TOKEN_DIR"`
	RedisAddr      string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	MongoURI       string        `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase  string        `env:"TRIPMATE_MONGO_DB" envDefault:"tripmate"`
	AllowedOrigins []string      `env:"TRIPMATE_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://127.0.0.1:5173"`
	HTTPTimeout    time.Duration `env:"TRIPMATE_HTTP_TIMEOUT" envDefault:"0s"`
}

// Load reads an optional .env file, then the process environment, then flags.
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment only")
	}
	cfg, err := Parse(env.Options{})
	if err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "local UI listen address")
	fs.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "remote API base URL")
	fs.StringVar(&cfg.TokenStore, "token-store", cfg.TokenStore, "token store backend: file|redis|mongo|memory")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse builds a Config from the environment described by opts.
func Parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if cfg.TokenDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.TokenDir = filepath.Join(home, ".tripmate")
	}
	return cfg, nil
}

// Validate rejects settings the client cannot start with.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API base URL %q", c.APIBaseURL)
	}
	switch c.TokenStore {
	case StoreFile, StoreRedis, StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("unknown token store %q", c.TokenStore)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("negative HTTP timeout %s", c.HTTPTimeout)
	}
	return nil
}
