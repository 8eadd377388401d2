package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFile = "config.yaml"
	defaultPort       = "8080"
	defaultDBName     = "expense_tracker"
	defaultDBPort     = "3306"
	defaultEnv        = "development"
	defaultLogLevel   = "info"

	StorageMySQL    = "mysql"
	StorageInMemory = "inmemory"
)

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	FullDSN  string `yaml:"full-dsn"`
}

type Config struct {
	Env       string         `yaml:"env"`
	Port      string         `yaml:"port"`
	LogLevel  string         `yaml:"log-level"`
	Storage   string         `yaml:"storage"`
	JWTSecret string         `yaml:"jwt-secret"`
	Database  DatabaseConfig `yaml:"database"`
}

// Load reads an optional .env file, an optional YAML file and finally the
// process environment. Later sources win.
func Load() (*Config, error) {
	if err := gotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "loading .env file")
	}

	cfg := &Config{}

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = defaultConfigFile
	}
	if err := cfg.readFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	rawYAML, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "reading config file")
	}

	if err := yaml.Unmarshal(rawYAML, c); err != nil {
		return errors.Wrap(err, "parsing yaml")
	}
	return nil
}

func (c *Config) applyEnv() {
	override(&c.Env, "APP_ENV")
	override(&c.Port, "APP_PORT")
	override(&c.LogLevel, "LOG_LEVEL")
	override(&c.Storage, "STORAGE_TYPE")
	override(&c.JWTSecret, "JWT_SECRET")
	override(&c.Database.Host, "DB_HOST")
	override(&c.Database.Port, "DB_PORT")
	override(&c.Database.User, "DB_USER")
	override(&c.Database.Password, "DB_PASSWORD")
	override(&c.Database.Name, "DB_NAME")
	override(&c.Database.FullDSN, "FULL_DSN")
}

func (c *Config) applyDefaults() {
	if c.Env == "" {
		c.Env = defaultEnv
	}
	if c.Port == "" {
		c.Port = defaultPort
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Storage == "" {
		c.Storage = StorageMySQL
	}
	if c.Database.Name == "" {
		c.Database.Name = defaultDBName
	}
	if c.Database.Port == "" {
		c.Database.Port = defaultDBPort
	}
	c.Env = strings.ToLower(c.Env)
	c.Storage = strings.ToLower(c.Storage)
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.Storage {
	case StorageMySQL:
		if c.Database.FullDSN == "" && (c.Database.Host == "" || c.Database.User == "") {
			return errors.New("missing required DB settings: DB_HOST and DB_USER (or FULL_DSN)")
		}
	case StorageInMemory:
	default:
		return errors.Errorf("unknown storage type %q", c.Storage)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func override(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
