// Package config loads service and CLI settings from AGENTGRAPH_*
// environment variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/agentgraph/agentgraph/internal/adapters/repository/postgres"
	"github.com/agentgraph/agentgraph/internal/codegen"
	"github.com/agentgraph/agentgraph/internal/log"
	"github.com/agentgraph/agentgraph/pkg/serialization"
)

// Prefix is prepended to every variable name.
const Prefix = "AGENTGRAPH_"

// Store backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds every setting of the server and the CLI.
type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	Serializer SerializerConfig
	Generator  GeneratorConfig
	LogLevel   string
	Workers    int
}

type ServerConfig struct {
	Addr            string
	CORSOrigins     []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
}

type StoreConfig struct {
	Backend   string
	SQLiteDSN string
	TableName string
	Postgres  postgres.PoolConfig
}

type SerializerConfig struct {
	Codec       string
	Compression string
	Key         string
}

type GeneratorConfig struct {
	Ordering          string
	DisambiguateNames bool
	WorkflowName      string
}

// Load reads files into the environment (missing files are ignored;
// variables already set win) and then builds the configuration.
func Load(files ...string) (*Config, error) {
	_ = godotenv.Load(files...)

	cfg := FromEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a configuration from getenv without validating it.
func FromEnv(getenv func(string) string) *Config {
	e := env(getenv)
	return &Config{
		Server: ServerConfig{
			Addr:            e.get("ADDR", ":8080"),
			CORSOrigins:     e.getList("CORS_ORIGINS", []string{"*"}),
			ReadTimeout:     e.getDuration("READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    e.getDuration("WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: e.getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			MaxBodyBytes:    int64(e.getInt("MAX_BODY_BYTES", 8<<20)),
		},
		Store: StoreConfig{
			Backend:   strings.ToLower(e.get("STORE", BackendMemory)),
			SQLiteDSN: e.get("SQLITE_DSN", "file:agentgraph.db?_pragma=busy_timeout(5000)"),
			TableName: e.get("TABLE", "projects"),
			Postgres: postgres.PoolConfig{
				URL:               e.get("POSTGRES_URL", ""),
				MaxConns:          int32(e.getInt("POSTGRES_MAX_CONNS", 0)),
				MinConns:          int32(e.getInt("POSTGRES_MIN_CONNS", 0)),
				MaxConnIdleTime:   e.getDuration("POSTGRES_MAX_CONN_IDLE_TIME", 0),
				MaxConnLifetime:   e.getDuration("POSTGRES_MAX_CONN_LIFETIME", 0),
				HealthCheckPeriod: e.getDuration("POSTGRES_HEALTH_CHECK_PERIOD", 0),
				ConnectTimeout:    e.getDuration("POSTGRES_CONNECT_TIMEOUT", 10*time.Second),
			},
		},
		Serializer: SerializerConfig{
			Codec:       e.get("CODEC", "msgpack"),
			Compression: e.get("COMPRESSION", string(serialization.CompressionZstd)),
			Key:         e.get("ENCRYPTION_KEY", ""),
		},
		Generator: GeneratorConfig{
			Ordering:          e.get("ORDERING", string(codegen.OrderTopological)),
			DisambiguateNames: e.getBool("DISAMBIGUATE_NAMES", true),
			WorkflowName:      e.get("WORKFLOW_NAME", codegen.DefaultWorkflowName),
		},
		LogLevel: strings.ToLower(e.get("LOG_LEVEL", log.LevelInfo)),
		Workers:  e.getInt("WORKERS", runtime.NumCPU()),
	}
}

// Validate checks that every setting has a usable value.
func (c *Config) Validate() error {
	var problems []string
	switch c.Store.Backend {
	case BackendMemory, BackendSQLite:
	case BackendPostgres:
		if c.Store.Postgres.URL == "" {
			problems = append(problems, Prefix+"POSTGRES_URL is required for the postgres store")
		}
	default:
		problems = append(problems, fmt.Sprintf("%sSTORE must be memory, sqlite or postgres, got %q", Prefix, c.Store.Backend))
	}
	if c.Store.Backend == BackendSQLite && c.Store.SQLiteDSN == "" {
		problems = append(problems, Prefix+"SQLITE_DSN is required for the sqlite store")
	}
	if _, err := c.SerializationConfig(); err != nil {
		problems = append(problems, err.Error())
	}
	switch codegen.Ordering(c.Generator.Ordering) {
	case codegen.OrderTopological, codegen.OrderTiered:
	default:
		problems = append(problems, fmt.Sprintf("%sORDERING must be topological or tiered, got %q", Prefix, c.Generator.Ordering))
	}
	if !log.ValidLevel(c.LogLevel) {
		problems = append(problems, fmt.Sprintf("%sLOG_LEVEL %q is not a known level", Prefix, c.LogLevel))
	}
	if c.Workers <= 0 {
		problems = append(problems, Prefix+"WORKERS must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		problems = append(problems, Prefix+"MAX_BODY_BYTES must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// SerializationConfig resolves the serializer settings.
func (c *Config) SerializationConfig() (serialization.Config, error) {
	codec, err := serialization.CodecByName(c.Serializer.Codec)
	if err != nil {
		return serialization.Config{}, err
	}
	compression, err := serialization.ParseCompression(c.Serializer.Compression)
	if err != nil {
		return serialization.Config{}, err
	}
	key, err := serialization.ParseKey(c.Serializer.Key)
	if err != nil {
		return serialization.Config{}, err
	}
	return serialization.Config{Codec: codec, Compression: compression, Key: key}, nil
}

// NewSerializer builds the configured serializer.
func (c *Config) NewSerializer() (*serialization.Serializer, error) {
	sc, err := c.SerializationConfig()
	if err != nil {
		return nil, err
	}
	return serialization.New(sc)
}

// GenerateOptions returns the configured generator options.
func (c *Config) GenerateOptions() codegen.Options {
	return codegen.Options{
		Ordering:          codegen.Ordering(c.Generator.Ordering),
		DisambiguateNames: c.Generator.DisambiguateNames,
		WorkflowName:      c.Generator.WorkflowName,
	}
}

// env reads prefixed variables; malformed values fall back to defaults.
type env func(string) string

func (e env) get(key, defaultValue string) string {
	if value := strings.TrimSpace(e(Prefix + key)); value != "" {
		return value
	}
	return defaultValue
}

func (e env) getInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(e.get(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func (e env) getBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(e.get(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func (e env) getDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(e.get(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func (e env) getList(key string, defaultValue []string) []string {
	raw := e.get(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
