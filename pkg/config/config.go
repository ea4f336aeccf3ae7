package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable the service reads
const EnvPrefix = "ARCHIVA"

// Config holds the configuration for all services
type Config struct {
	Server              ServerConfig              `mapstructure:"server"`
	Database            DatabaseConfig            `mapstructure:"database"`
	Redis               RedisConfig               `mapstructure:"redis"`
	Storage             StorageConfig             `mapstructure:"storage"`
	Auth                AuthConfig                `mapstructure:"auth"`
	Logging             LoggingConfig             `mapstructure:"logging"`
	Index               IndexConfig               `mapstructure:"index"`
	ManagedRepositories []ManagedRepositoryConfig `mapstructure:"managed_repositories"`
	RemoteRepositories  []RemoteRepositoryConfig  `mapstructure:"remote_repositories"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"` // postgres, sqlite
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	DBName     string `mapstructure:"dbname"`
	SSLMode    string `mapstructure:"sslmode"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig holds blob storage configuration
type StorageConfig struct {
	Type string `mapstructure:"type"` // local
}

// AuthConfig holds authentication settings
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, text
}

// IndexConfig holds artifact index settings
type IndexConfig struct {
	Dir         string        `mapstructure:"dir"`
	MaxHits     int           `mapstructure:"max_hits"`
	OpenIndexes int           `mapstructure:"open_indexes"`
	Parallelism int           `mapstructure:"parallelism"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

// ManagedRepositoryConfig describes a repository hosted by this server
type ManagedRepositoryConfig struct {
	ID        string `mapstructure:"id"`
	Name      string `mapstructure:"name"`
	Layout    string `mapstructure:"layout"`
	Location  string `mapstructure:"location"`
	Releases  bool   `mapstructure:"releases"`
	Snapshots bool   `mapstructure:"snapshots"`
	Scanned   bool   `mapstructure:"scanned"`
}

// RemoteRepositoryConfig describes a repository proxied by this server
type RemoteRepositoryConfig struct {
	ID       string        `mapstructure:"id"`
	Name     string        `mapstructure:"name"`
	Layout   string        `mapstructure:"layout"`
	URL      string        `mapstructure:"url"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from defaults, an optional config file, ARCHIVA_*
// environment variables and, if given, command line flags (highest priority).
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v, err := newViper(path, flags)
	if err != nil {
		return nil, err
	}
	return decode(v)
}

func newViper(path string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		_ = v.BindPFlag("server.host", flags.Lookup("host"))
		_ = v.BindPFlag("server.port", flags.Lookup("port"))
		_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))
		_ = v.BindPFlag("index.dir", flags.Lookup("index-dir"))
	}

	if path == "" {
		return v, nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.applyRepositoryDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "archiva")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "archiva")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.sqlite_path", "./data/archiva.db")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.type", "local")
	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("index.dir", "./data/indexes")
	v.SetDefault("index.max_hits", 1000)
	v.SetDefault("index.open_indexes", 16)
	v.SetDefault("index.parallelism", 4)
	v.SetDefault("index.cache_ttl", 10*time.Minute)
}

func (c *Config) applyRepositoryDefaults() {
	for i := range c.ManagedRepositories {
		if c.ManagedRepositories[i].Layout == "" {
			c.ManagedRepositories[i].Layout = "default"
		}
		if c.ManagedRepositories[i].Name == "" {
			c.ManagedRepositories[i].Name = c.ManagedRepositories[i].ID
		}
	}
	for i := range c.RemoteRepositories {
		if c.RemoteRepositories[i].Layout == "" {
			c.RemoteRepositories[i].Layout = "default"
		}
		if c.RemoteRepositories[i].Name == "" {
			c.RemoteRepositories[i].Name = c.RemoteRepositories[i].ID
		}
	}
}

// Validate checks repository ids are present and unique across both sections
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	for _, r := range c.ManagedRepositories {
		if r.ID == "" {
			return fmt.Errorf("managed repository without id")
		}
		if r.Location == "" {
			return fmt.Errorf("managed repository %s has no location", r.ID)
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate repository id: %s", r.ID)
		}
		seen[r.ID] = true
	}
	for _, r := range c.RemoteRepositories {
		if r.ID == "" {
			return fmt.Errorf("remote repository without id")
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate repository id: %s", r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}

// FindManagedRepository returns the managed repository with the given id
func (c *Config) FindManagedRepository(id string) (ManagedRepositoryConfig, bool) {
	for _, r := range c.ManagedRepositories {
		if r.ID == id {
			return r, true
		}
	}
	return ManagedRepositoryConfig{}, false
}

// FindRemoteRepository returns the remote repository with the given id
func (c *Config) FindRemoteRepository(id string) (RemoteRepositoryConfig, bool) {
	for _, r := range c.RemoteRepositories {
		if r.ID == id {
			return r, true
		}
	}
	return RemoteRepositoryConfig{}, false
}

// DatabaseURL returns a PostgreSQL connection string
func (d *DatabaseConfig) DatabaseURL() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// RedisAddr returns the Redis address
func (r *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
