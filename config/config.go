// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	configPath        = pflag.String("config", "", "Path to a config.toml file (defaults to ./config.toml when present)")
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"sftp", "s3"}
	validDrivers      = []string{"sqlite", "postgres"}
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Host       HostConfig       `mapstructure:"host"`
	DB         DBConfig         `mapstructure:"db"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Argon      ArgonConfig      `mapstructure:"argon"`
	Upload     UploadConfig     `mapstructure:"upload"`
	Storage    StorageConfig    `mapstructure:"storage"`
	StorageBox StorageBoxConfig `mapstructure:"storagebox"`
	S3         S3Config         `mapstructure:"s3"`
	Security   SecurityConfig   `mapstructure:"security"`
}

type AppConfig struct {
	LogLevel    string `mapstructure:"log_level"`
	Environment string `mapstructure:"environment"`
}

type HostConfig struct {
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DBConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type ArgonConfig struct {
	Memory      uint32 `mapstructure:"memory"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
}

type UploadConfig struct {
	// MaxSize is given in MiB and converted to bytes by Load.
	MaxSize   int64  `mapstructure:"max_size"`
	Directory string `mapstructure:"directory"`
}

type StorageConfig struct {
	Type string `mapstructure:"type"`
}

// StorageBoxConfig holds the SFTP credentials of the remote storage box.
type StorageBoxConfig struct {
	Host       string        `mapstructure:"host"`
	User       string        `mapstructure:"user"`
	Password   string        `mapstructure:"password"`
	Port       int           `mapstructure:"port"`
	KnownHosts string        `mapstructure:"known_hosts"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type SecurityConfig struct {
	RateLimit int `mapstructure:"rate_limit"`
	RateBurst int `mapstructure:"rate_burst"`
}

// envAliases lets deployments of the previous service keep their variable names
var envAliases = map[string][]string{
	"app.environment":     {"APP_ENVIRONMENT", "NODE_ENV"},
	"jwt.secret":          {"JWT_SECRET", "JWT_SECRET_KEY"},
	"storagebox.host":     {"STORAGEBOX_HOST", "HETZNER_HOST"},
	"storagebox.user":     {"STORAGEBOX_USER", "HETZNER_USER"},
	"storagebox.password": {"STORAGEBOX_PASSWORD", "HETZNER_PASSWORD"},
	"storagebox.port":     {"STORAGEBOX_PORT", "HETZNER_PORT"},
}

var keys = []string{
	"app.log_level",
	"app.environment",
	"host.port",
	"host.cors_origins",
	"db.driver",
	"db.dsn",
	"jwt.secret",
	"jwt.ttl",
	"argon.memory",
	"argon.iterations",
	"argon.parallelism",
	"upload.max_size",
	"upload.directory",
	"storage.type",
	"storagebox.host",
	"storagebox.user",
	"storagebox.password",
	"storagebox.port",
	"storagebox.known_hosts",
	"storagebox.timeout",
	"s3.bucket",
	"s3.region",
	"s3.endpoint",
	"s3.access_key_id",
	"s3.secret_access_key",
	"security.rate_limit",
	"security.rate_burst",
}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup parses the command line flags and loads the configuration
// from the file given with --config (or ./config.toml) and the environment.
func Setup() (*Config, error) {
	pflag.Parse()
	return Load(*configPath)
}

// Load builds a Config from an optional toml file at path and the environment.
// Environment variables take precedence over the file. An error is returned if
// something is critically wrong and the application can't run because of that.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	v.SetConfigType("toml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	//
	// ENVS
	//
	for _, k := range keys {
		if aliases, ok := envAliases[k]; ok {
			v.BindEnv(append([]string{k}, aliases...)...)
			continue
		}

		v.BindEnv(k)
	}

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.environment", "development")

	v.SetDefault("host.port", 5000)
	v.SetDefault("host.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "data.db")

	v.SetDefault("jwt.ttl", 8*time.Hour)

	v.SetDefault("argon.memory", 64*1024)
	v.SetDefault("argon.iterations", 3)
	v.SetDefault("argon.parallelism", 2)

	v.SetDefault("upload.max_size", 100)
	v.SetDefault("upload.directory", "/upload")

	v.SetDefault("storage.type", "sftp")

	v.SetDefault("storagebox.port", 22)
	v.SetDefault("storagebox.timeout", 30*time.Second)

	v.SetDefault("s3.region", "auto")

	v.SetDefault("security.rate_limit", 10)
	v.SetDefault("security.rate_burst", 20)

	if err := v.ReadInConfig(); err != nil {
		// The file is optional unless it was asked for explicitly
		var notFound viper.ConfigFileNotFoundError
		if path != "" || (!errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config, %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.Upload.MaxSize <<= 20
	return &cfg, nil
}

func (c *Config) validate() error {
	if !slices.Contains(validLogLevels, c.App.LogLevel) {
		return errors.New("invalid log level provided")
	}

	if c.Host.Port <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDrivers, c.DB.Driver) {
		return errors.New("invalid database driver provided")
	}

	if c.DB.DSN == "" {
		return errors.New("db.dsn can't be empty")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is not set. Set JWT_SECRET or add it to config.toml, for example:\n\n%s", genSecret())
	}

	if c.JWT.TTL <= 0 {
		return errors.New("jwt.ttl must be bigger than 0")
	}

	if c.Argon.Memory == 0 || c.Argon.Iterations == 0 || c.Argon.Parallelism == 0 {
		return errors.New("argon parameters must be bigger than 0")
	}

	if c.Upload.MaxSize <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if c.Upload.Directory == "" {
		return errors.New("upload.directory can't be empty")
	}

	if c.Security.RateLimit < 0 || c.Security.RateBurst < 0 {
		return errors.New("rate limit values can't be negative")
	}

	switch c.Storage.Type {
	case "sftp":
		{
			if c.StorageBox.Host == "" {
				return errors.New("storagebox.host can't be empty")
			}
			if c.StorageBox.User == "" {
				return errors.New("storagebox.user can't be empty")
			}
			if c.StorageBox.Password == "" {
				return errors.New("storagebox.password can't be empty")
			}
			if c.StorageBox.Port <= 0 || c.StorageBox.Port > 65535 {
				return errors.New("invalid storagebox.port provided")
			}
		}
	case "s3":
		{
			if c.S3.Bucket == "" {
				return errors.New("s3.bucket can't be empty")
			}
			if c.S3.AccessKeyID == "" {
				return errors.New("s3.access_key_id can't be empty")
			}
			if c.S3.SecretAccessKey == "" {
				return errors.New("s3.secret_access_key can't be empty")
			}
		}
	}

	if !slices.Contains(validStorageTypes, c.Storage.Type) {
		return errors.New("invalid storage type provided")
	}

	return nil
}
