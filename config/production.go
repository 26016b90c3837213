// Package config provides configuration management and environment variable handling for the application
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/amirphl/masuk10/utils"
	"github.com/joho/godotenv"
)

// ProductionConfig holds all configuration for production environment
type ProductionConfig struct {
	Database   DatabaseConfig   `json:"database"`
	Server     ServerConfig     `json:"server"`
	Security   SecurityConfig   `json:"security"`
	JWT        JWTConfig        `json:"jwt"`
	Logging    LoggingConfig    `json:"logging"`
	Metrics    MetricsConfig    `json:"metrics"`
	Cache      CacheConfig      `json:"cache"`
	Deployment DeploymentConfig `json:"deployment"`
	Admin      AdminConfig      `json:"admin"`
	Shortlink  ShortlinkConfig  `json:"shortlink"`
	Media      MediaConfig      `json:"media"`
}

type DatabaseConfig struct {
	Driver          string        `json:"driver"` // postgres, sqlite
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"ssl_mode"`
	SQLitePath      string        `json:"sqlite_path"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	SlowQueryLog    bool          `json:"slow_query_log"`
	SlowQueryTime   time.Duration `json:"slow_query_time"`
}

// PostgresDSN is the keyword/value DSN used by gorm's postgres driver.
func (c DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// PostgresURL is the URL form accepted by lib/pq.
func (c DatabaseConfig) PostgresURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

type ServerConfig struct {
	Host              string        `json:"host"`
	Port              int           `json:"port"`
	ReadTimeout       time.Duration `json:"read_timeout"`
	WriteTimeout      time.Duration `json:"write_timeout"`
	IdleTimeout       time.Duration `json:"idle_timeout"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout"`
	BodyLimit         int           `json:"body_limit"`
	TrustedProxies    []string      `json:"trusted_proxies"`
	ProxyHeader       string        `json:"proxy_header"`
	EnableCompression bool          `json:"enable_compression"`
}

// Address returns host:port for the listener
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type SecurityConfig struct {
	// CORS
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	CORSMaxAge       int      `json:"cors_max_age"`

	// Rate Limiting
	AuthRateLimit   int           `json:"auth_rate_limit"`   // requests per minute
	GlobalRateLimit int           `json:"global_rate_limit"` // requests per minute
	RateLimitWindow time.Duration `json:"rate_limit_window"`

	// Password & Auth
	PasswordMinLength int `json:"password_min_length"`
	BcryptCost        int `json:"bcrypt_cost"`
}

type JWTConfig struct {
	SecretKey       string        `json:"secret_key"`
	PrivateKey      string        `json:"private_key"`  // RSA private key in PEM format
	PublicKey       string        `json:"public_key"`   // RSA public key in PEM format
	UseRSAKeys      bool          `json:"use_rsa_keys"` // Whether to use RSA keys instead of secret key
	AccessTokenTTL  time.Duration `json:"access_token_ttl"`
	RefreshTokenTTL time.Duration `json:"refresh_token_ttl"`
	Issuer          string        `json:"issuer"`
	Audience        string        `json:"audience"`
}

type LoggingConfig struct {
	Level            string `json:"level"`  // debug, info, warn, error
	Format           string `json:"format"` // json, console
	Output           string `json:"output"` // stdout, file
	FilePath         string `json:"file_path"`
	MaxSize          int    `json:"max_size"` // MB
	MaxBackups       int    `json:"max_backups"`
	MaxAge           int    `json:"max_age"` // days
	Compress         bool   `json:"compress"`
	EnableCaller     bool   `json:"enable_caller"`
	EnableStacktrace bool   `json:"enable_stacktrace"`
	EnableAccessLog  bool   `json:"enable_access_log"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type CacheConfig struct {
	Enabled      bool          `json:"enabled"`
	RedisURL     string        `json:"redis_url"`
	RedisDB      int           `json:"redis_db"`
	RedisPrefix  string        `json:"redis_prefix"`
	DefaultTTL   time.Duration `json:"default_ttl"`
	PingInterval time.Duration `json:"ping_interval"`
}

type DeploymentConfig struct {
	Environment   string `json:"environment"`
	PublicBaseURL string `json:"public_base_url"`
	Version       string `json:"version"`
	CommitHash    string `json:"commit_hash"`
	BuildTime     string `json:"build_time"`
}

// IsDevelopment reports whether API docs and other local conveniences are enabled
func (c DeploymentConfig) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "local"
}

type AdminConfig struct {
	Email           string `json:"email"`
	Password        string `json:"-"`
	CaptchaRequired bool   `json:"captcha_required"`
}

type ShortlinkConfig struct {
	FallbackURL       string        `json:"fallback_url"`
	ClickWriteTimeout time.Duration `json:"click_write_timeout"` // 0 leaves timeouts to the storage client
}

type MediaConfig struct {
	UploadDir string `json:"upload_dir"`
	MaxSize   int64  `json:"max_size"`
}

// LoadProductionConfig loads and validates configuration from environment variables
func LoadProductionConfig() (*ProductionConfig, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &ProductionConfig{
		Database: DatabaseConfig{
			Driver:          getEnvString("DB_DRIVER", "postgres"),
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnvString("DB_NAME", "masuk10"),
			User:            getEnvString("DB_USER", "postgres"),
			Password:        getEnvString("DB_PASSWORD", ""),
			SSLMode:         getEnvString("DB_SSL_MODE", "require"),
			SQLitePath:      getEnvString("DB_SQLITE_PATH", "masuk10.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
			SlowQueryLog:    getEnvBool("DB_SLOW_QUERY_LOG", true),
			SlowQueryTime:   getEnvDuration("DB_SLOW_QUERY_TIME", 1*time.Second),
		},
		Server: ServerConfig{
			Host:              getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:              getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:       getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:      getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:       getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout:   getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			BodyLimit:         getEnvInt("SERVER_BODY_LIMIT", 8*1024*1024), // 8MB
			TrustedProxies:    getEnvStringSlice("SERVER_TRUSTED_PROXIES", []string{"127.0.0.1"}),
			ProxyHeader:       getEnvString("SERVER_PROXY_HEADER", "X-Real-IP"),
			EnableCompression: getEnvBool("SERVER_ENABLE_COMPRESSION", true),
		},
		Security: SecurityConfig{
			AllowedOrigins:    getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"https://masuk10.com", "https://admin.masuk10.com"}),
			AllowedMethods:    getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders:    getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Request-ID"}),
			AllowCredentials:  getEnvBool("CORS_ALLOW_CREDENTIALS", true),
			CORSMaxAge:        getEnvInt("CORS_MAX_AGE", utils.CORSMaxAge),
			AuthRateLimit:     getEnvInt("AUTH_RATE_LIMIT", 20),
			GlobalRateLimit:   getEnvInt("GLOBAL_RATE_LIMIT", 2000),
			RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
			PasswordMinLength: getEnvInt("PASSWORD_MIN_LENGTH", utils.MinPasswordLength),
			BcryptCost:        getEnvInt("BCRYPT_COST", 10),
		},
		JWT: JWTConfig{
			SecretKey:       getEnvString("JWT_SECRET_KEY", ""),
			PrivateKey:      getEnvString("JWT_PRIVATE_KEY", ""),
			PublicKey:       getEnvString("JWT_PUBLIC_KEY", ""),
			UseRSAKeys:      getEnvBool("JWT_USE_RSA_KEYS", false),
			AccessTokenTTL:  getEnvDuration("JWT_ACCESS_TOKEN_TTL", utils.AccessTokenTTL),
			RefreshTokenTTL: getEnvDuration("JWT_REFRESH_TOKEN_TTL", utils.RefreshTokenTTL),
			Issuer:          getEnvString("JWT_ISSUER", "masuk10"),
			Audience:        getEnvString("JWT_AUDIENCE", "masuk10-admin"),
		},
		Logging: LoggingConfig{
			Level:            getEnvString("LOG_LEVEL", "info"),
			Format:           getEnvString("LOG_FORMAT", "json"),
			Output:           getEnvString("LOG_OUTPUT", "stdout"),
			FilePath:         getEnvString("LOG_FILE_PATH", "/var/log/masuk10/app.log"),
			MaxSize:          getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups:       getEnvInt("LOG_MAX_BACKUPS", 10),
			MaxAge:           getEnvInt("LOG_MAX_AGE", 30),
			Compress:         getEnvBool("LOG_COMPRESS", true),
			EnableCaller:     getEnvBool("LOG_ENABLE_CALLER", true),
			EnableStacktrace: getEnvBool("LOG_ENABLE_STACKTRACE", false),
			EnableAccessLog:  getEnvBool("LOG_ENABLE_ACCESS", true),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnvString("METRICS_PATH", "/metrics"),
		},
		Cache: CacheConfig{
			Enabled:      getEnvBool("CACHE_ENABLED", true),
			RedisURL:     getEnvString("CACHE_REDIS_URL", "redis://localhost:6379"),
			RedisDB:      getEnvInt("CACHE_REDIS_DB", 0),
			RedisPrefix:  getEnvString("CACHE_REDIS_PREFIX", "masuk10:"),
			DefaultTTL:   getEnvDuration("CACHE_DEFAULT_TTL", 5*time.Minute),
			PingInterval: getEnvDuration("CACHE_PING_INTERVAL", 30*time.Second),
		},
		Deployment: DeploymentConfig{
			Environment:   getEnvString("APP_ENV", "production"),
			PublicBaseURL: strings.TrimRight(getEnvString("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
			Version:       getEnvString("VERSION", "1.0.0"),
			CommitHash:    getEnvString("COMMIT_HASH", "unknown"),
			BuildTime:     getEnvString("BUILD_TIME", "unknown"),
		},
		Admin: AdminConfig{
			Email:           getEnvString("ADMIN_EMAIL", ""),
			Password:        getEnvString("ADMIN_PASSWORD", ""),
			CaptchaRequired: getEnvBool("ADMIN_CAPTCHA_REQUIRED", false),
		},
		Shortlink: ShortlinkConfig{
			FallbackURL:       getEnvString("SHORTLINK_FALLBACK_URL", "/"),
			ClickWriteTimeout: getEnvDuration("SHORTLINK_CLICK_WRITE_TIMEOUT", 0),
		},
		Media: MediaConfig{
			UploadDir: getEnvString("MEDIA_UPLOAD_DIR", "./uploads"),
			MaxSize:   int64(getEnvInt("MEDIA_MAX_SIZE", 5*1024*1024)),
		},
	}

	if err := ValidateProductionConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadEnvFile loads variables from path when it exists. Variables already set
// in the environment win over the file.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// ValidateProductionConfig collects every configuration problem into one error
func ValidateProductionConfig(cfg *ProductionConfig) error {
	var errors []string

	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.Host == "" {
			errors = append(errors, "DB_HOST is required")
		}
		if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
			errors = append(errors, "DB_PORT must be between 1 and 65535")
		}
		if cfg.Database.Name == "" {
			errors = append(errors, "DB_NAME is required")
		}
		if cfg.Database.User == "" {
			errors = append(errors, "DB_USER is required")
		}
		if cfg.Database.Password == "" {
			errors = append(errors, "DB_PASSWORD is required")
		}
	case "sqlite":
		if cfg.Database.SQLitePath == "" {
			errors = append(errors, "DB_SQLITE_PATH is required when DB_DRIVER is sqlite")
		}
	default:
		errors = append(errors, "DB_DRIVER must be one of: postgres, sqlite")
	}

	// Validate JWT configuration
	if cfg.JWT.UseRSAKeys {
		if cfg.JWT.PrivateKey == "" || cfg.JWT.PublicKey == "" {
			errors = append(errors, "JWT_PRIVATE_KEY and JWT_PUBLIC_KEY are required when JWT_USE_RSA_KEYS is true")
		}
	} else if len(cfg.JWT.SecretKey) < 32 {
		errors = append(errors, "JWT_SECRET_KEY must be at least 32 characters long")
	}
	if cfg.JWT.AccessTokenTTL <= 0 {
		errors = append(errors, "JWT_ACCESS_TOKEN_TTL must be positive")
	}
	if cfg.JWT.RefreshTokenTTL <= 0 {
		errors = append(errors, "JWT_REFRESH_TOKEN_TTL must be positive")
	}
	if cfg.JWT.Issuer == "" {
		errors = append(errors, "JWT_ISSUER is required")
	}
	if cfg.JWT.Audience == "" {
		errors = append(errors, "JWT_AUDIENCE is required")
	}

	// Validate server configuration
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errors = append(errors, "SERVER_PORT must be between 1 and 65535")
	}
	if cfg.Server.ReadTimeout <= 0 {
		errors = append(errors, "SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.Server.WriteTimeout <= 0 {
		errors = append(errors, "SERVER_WRITE_TIMEOUT must be positive")
	}
	if cfg.Server.IdleTimeout <= 0 {
		errors = append(errors, "SERVER_IDLE_TIMEOUT must be positive")
	}

	// Validate security configuration
	if cfg.Security.PasswordMinLength < 6 {
		errors = append(errors, "PASSWORD_MIN_LENGTH must be at least 6")
	}
	if cfg.Security.BcryptCost < 10 || cfg.Security.BcryptCost > 14 {
		errors = append(errors, "BCRYPT_COST must be between 10 and 14")
	}

	// Validate logging configuration
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, "LOG_LEVEL must be one of: debug, info, warn, error")
	}
	if cfg.Logging.Output != "stdout" && cfg.Logging.Output != "file" {
		errors = append(errors, "LOG_OUTPUT must be one of: stdout, file")
	}
	if cfg.Logging.Output == "file" && cfg.Logging.FilePath == "" {
		errors = append(errors, "LOG_FILE_PATH is required when LOG_OUTPUT is file")
	}

	if cfg.Cache.Enabled && cfg.Cache.RedisURL == "" {
		errors = append(errors, "CACHE_REDIS_URL is required when cache is enabled")
	}

	if u, err := url.Parse(cfg.Deployment.PublicBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, "PUBLIC_BASE_URL must be an absolute URL")
	}
	if cfg.Shortlink.FallbackURL == "" {
		errors = append(errors, "SHORTLINK_FALLBACK_URL is required")
	}
	if cfg.Shortlink.ClickWriteTimeout < 0 {
		errors = append(errors, "SHORTLINK_CLICK_WRITE_TIMEOUT cannot be negative")
	}
	if cfg.Media.UploadDir == "" {
		errors = append(errors, "MEDIA_UPLOAD_DIR is required")
	}
	if cfg.Media.MaxSize <= 0 {
		errors = append(errors, "MEDIA_MAX_SIZE must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}
