package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Catalog sources.
const (
	CatalogSourceFile     = "file"
	CatalogSourcePostgres = "postgres"
)

// Plan stores.
const (
	PlanStorePostgres = "postgres"
	PlanStoreMemory   = "memory"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Log          LogConfig
	Catalog      CatalogConfig
	Requirements RequirementsConfig
	Plans        PlansConfig
	AuditCache   AuditCacheConfig
	Exports      ExportsConfig
	Docs         DocsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds the verification settings for tokens minted by the login service.
type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CatalogConfig selects where the course catalog is loaded from.
type CatalogConfig struct {
	Source string
	Path   string
}

// RequirementsConfig points at an optional requirement table override.
// An empty path uses the embedded tables.
type RequirementsConfig struct {
	Path string
}

// PlansConfig selects the degree plan store.
type PlansConfig struct {
	Store string
}

// AuditCacheConfig toggles the Redis audit report cache.
type AuditCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// ExportsConfig configures plan exports and their signed download links.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// DocsConfig toggles the swagger UI.
type DocsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Catalog = CatalogConfig{
		Source: strings.ToLower(v.GetString("CATALOG_SOURCE")),
		Path:   v.GetString("CATALOG_PATH"),
	}

	cfg.Requirements = RequirementsConfig{Path: v.GetString("REQUIREMENTS_PATH")}

	cfg.Plans = PlansConfig{Store: strings.ToLower(v.GetString("PLAN_STORE"))}

	cfg.AuditCache = AuditCacheConfig{
		Enabled: v.GetBool("ENABLE_AUDIT_CACHE"),
		TTL:     parseDuration(v.GetString("AUDIT_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), time.Hour),
		ResultTTL:       parseDuration(v.GetString("EXPORTS_RESULT_TTL"), 24*time.Hour),
		CleanupInterval: parseDuration(v.GetString("EXPORTS_CLEANUP_INTERVAL"), time.Hour),
	}

	cfg.Docs = DocsConfig{Enabled: v.GetBool("ENABLE_DOCS")}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects option values the server cannot start with.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case CatalogSourceFile:
		if c.Catalog.Path == "" {
			return errors.New("CATALOG_PATH is required when CATALOG_SOURCE=file")
		}
	case CatalogSourcePostgres:
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.Catalog.Source)
	}
	switch c.Plans.Store {
	case PlanStorePostgres, PlanStoreMemory:
	default:
		return fmt.Errorf("unknown PLAN_STORE %q", c.Plans.Store)
	}
	if c.Env == EnvProduction && c.JWT.Secret == "dev_secret" {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}

// NeedsDatabase reports whether any component reads from Postgres.
func (c *Config) NeedsDatabase() bool {
	return c.Catalog.Source == CatalogSourcePostgres || c.Plans.Store == PlanStorePostgres
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "degree_advisor")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CATALOG_SOURCE", CatalogSourceFile)
	v.SetDefault("CATALOG_PATH", "./data/courses.csv")
	v.SetDefault("REQUIREMENTS_PATH", "")
	v.SetDefault("PLAN_STORE", PlanStorePostgres)

	v.SetDefault("ENABLE_AUDIT_CACHE", false)
	v.SetDefault("AUDIT_CACHE_TTL", "10m")

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "1h")
	v.SetDefault("EXPORTS_RESULT_TTL", "24h")
	v.SetDefault("EXPORTS_CLEANUP_INTERVAL", "1h")

	v.SetDefault("ENABLE_DOCS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
