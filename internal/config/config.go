package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var ErrSessionSecretMissing = errors.New("SESSION_SECRET is not set")

type Config struct {
	ServerPort    string
	SessionSecret string
	DataDir       string

	Blob     BlobConfig
	Registry RegistryConfig
	DB       DBConfig
	Metrics  MetricsConfig
	Logger   LoggerConfig

	BcryptCost int
}

type BlobConfig struct {
	Driver      string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
}

// RegistryConfig picks where the credential registry lives: the users CSV
// file or the users table of DB.
type RegistryConfig struct {
	Driver    string
	UsersFile string
}

type DBConfig struct {
	Driver string
	DSN    string
}

type MetricsConfig struct {
	File  string
	Sheet string
}

type LoggerConfig struct {
	Level      string
	Format     string
	Output     string
	FilePath   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
	Color      bool
	Stacktrace bool
	TimeZone   string
	TimeFormat string
}

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:    getenv("SERVER_PORT", "8080"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		DataDir:       getenv("DATA_DIR", "./data"),
		Blob: BlobConfig{
			Driver:     getenv("BLOB_DRIVER", "fs"),
			S3Bucket:   os.Getenv("BLOB_S3_BUCKET"),
			S3Region:   os.Getenv("BLOB_S3_REGION"),
			S3Endpoint: os.Getenv("BLOB_S3_ENDPOINT"),
		},
		Registry: RegistryConfig{
			Driver:    getenv("REGISTRY_DRIVER", "csv"),
			UsersFile: getenv("USERS_FILE", "./users.csv"),
		},
		DB: DBConfig{
			Driver: getenv("DB_DRIVER", "sqlite"),
		},
		Metrics: MetricsConfig{
			File:  getenv("METRICS_FILE", "./Metricas.xlsx"),
			Sheet: getenv("METRICS_SHEET", "Core"),
		},
		Logger: LoggerConfig{
			Level:    getenv("LOG_LEVEL", "info"),
			Format:   getenv("LOG_FORMAT", "json"),
			Output:   getenv("LOG_OUTPUT", "stdout"),
			FilePath: getenv("LOG_FILE", "./logs/portal.log"),
		},
	}
	cfg.DB.DSN = getenv("DB_DSN", filepath.Join(cfg.DataDir, "portal.db"))

	var err error
	if cfg.Blob.S3PathStyle, err = getbool("BLOB_S3_PATH_STYLE"); err != nil {
		return nil, err
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if cfg.BcryptCost, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("BCRYPT_COST: %w", err)
		}
	}

	switch cfg.Blob.Driver {
	case "fs", "s3", "memory":
	default:
		return nil, fmt.Errorf("BLOB_DRIVER %q: want fs, s3 or memory", cfg.Blob.Driver)
	}
	if cfg.Blob.Driver == "s3" && cfg.Blob.S3Bucket == "" {
		return nil, errors.New("BLOB_S3_BUCKET is required for the s3 driver")
	}
	switch cfg.Registry.Driver {
	case "csv", "sql":
	default:
		return nil, fmt.Errorf("REGISTRY_DRIVER %q: want csv or sql", cfg.Registry.Driver)
	}
	switch cfg.DB.Driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("DB_DRIVER %q: want sqlite or postgres", cfg.DB.Driver)
	}
	return cfg, nil
}

// RequireSessionSecret is checked by the HTTP server only; the CLI has no
// cookies to sign.
func (c *Config) RequireSessionSecret() error {
	if c.SessionSecret == "" {
		return ErrSessionSecretMissing
	}
	return nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getbool(key string) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
