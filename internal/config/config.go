package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

var envFiles = []string{".env.local", ".env"}

type Config struct {
	Env        string `yaml:"env"`
	APIToken   string `yaml:"api_token"`
	LogLevel   string `yaml:"log_level"`
	Storage    `yaml:"storage"`
	HTTPServer `yaml:"http_server"`
	Postgres   `yaml:"postgres"`
	SQLite     `yaml:"sqlite"`
}

type Storage struct {
	Driver string `yaml:"driver"`
}

type HTTPServer struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	CertFile       string        `yaml:"cert_file"`
	KeyFile        string        `yaml:"key_file"`
	SwaggerEnabled bool          `yaml:"swagger_enabled"`
}

var defaultHTTPServer = HTTPServer{
	Port:           8080,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type Postgres struct {
	// URL overrides the connection settings below when set.
	URL             string        `yaml:"dsn"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	DB              string        `yaml:"db"`
	SSLMode         string        `yaml:"sslmode"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
}

var defaultPostgres = Postgres{
	Host:            "localhost",
	Port:            5432,
	SSLMode:         "disable",
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
}

func (p *Postgres) DSN() string {
	if p.URL != "" {
		return p.URL
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

type SQLite struct {
	Path string `yaml:"path"`
}

var defaultSQLite = SQLite{
	Path: "bookmarks.db",
}

func (s *SQLite) DSN() string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", s.Path)
}

// DatabaseDSN returns the connection string of the configured SQL backend.
// It is empty for the memory backend.
func (c *Config) DatabaseDSN() string {
	switch c.Storage.Driver {
	case DriverPostgres:
		return c.Postgres.DSN()
	case DriverSQLite:
		return c.SQLite.DSN()
	default:
		return ""
	}
}

// Load reads the config file at path on top of the defaults and applies
// environment overrides. An empty path yields defaults plus environment.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("%s: failed to load env files: %w", op, err)
	}

	var cfg Config
	setDefaults(&cfg)

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
		}
	}

	applyEnv(&cfg)

	return &cfg, nil
}

// Validate reports settings the service cannot start with.
func (c *Config) Validate() error {
	const op = "config.Validate"

	switch c.Storage.Driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("%s: unsupported storage driver %q", op, c.Storage.Driver)
	}

	if c.Env == EnvProd && c.APIToken == "" {
		return fmt.Errorf("%s: api token is required in %s", op, EnvProd)
	}

	return nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.LogLevel = "info"
	cfg.Storage = Storage{Driver: DriverSQLite}
	cfg.HTTPServer = defaultHTTPServer
	cfg.Postgres = defaultPostgres
	cfg.SQLite = defaultSQLite
}

// loadEnvFiles populates the process environment from local env files.
// Variables that are already set win, missing files are skipped.
func loadEnvFiles() error {
	for _, name := range envFiles {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	return nil
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("API_TOKEN"); ok {
		cfg.APIToken = v
	}
	if v, ok := os.LookupEnv("STORAGE_DRIVER"); ok && v != "" {
		cfg.Storage.Driver = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok && v != "" {
		switch cfg.Storage.Driver {
		case DriverPostgres:
			cfg.Postgres.URL = v
		case DriverSQLite:
			cfg.SQLite.Path = v
		}
	}
}
