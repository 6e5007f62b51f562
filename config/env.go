// Package config loads the shop API settings.
//
// Values are resolved in increasing priority: built-in defaults,
// config/app.json, .env, then the process environment. Load returns an
// explicit *Config that callers pass to the components that need it.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const (
	DefaultJSONPath = "config/app.json"
	DefaultEnvPath  = ".env"
)

// Config is the fully-resolved application configuration.
type Config struct {
	AppEnv string

	Database  DatabaseConfig
	API       APIConfig
	JWT       JWTConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	CORS      CORSConfig
	Storage   StorageConfig
	WeChat    WeChatConfig
	LogMongo  MongoLogConfig

	MaxBodyBytes int64
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	// DSN overrides the DSN built from the fields above when set.
	DSN string
}

type APIConfig struct {
	Host     string
	Port     int
	GRPCPort int
}

// Addr returns the HTTP listen address.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type JWTConfig struct {
	Secret    string
	Algorithm string
	TTL       time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// CacheConfig controls the product read cache. A zero TTL disables it.
type CacheConfig struct {
	TTL time.Duration
}

type StorageConfig struct {
	Disk      string
	LocalRoot string
	URL       string

	S3Bucket   string
	S3Region   string
	S3Key      string
	S3Secret   string
	S3Endpoint string
	S3URL      string
}

type WeChatConfig struct {
	AppID  string
	MchID  string
	APIKey string
}

type MongoLogConfig struct {
	URI        string
	Database   string
	Collection string
}

// IsProduction reports whether APP_ENV names a production environment.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.AppEnv) {
	case "production", "prod":
		return true
	}
	return false
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_ENV": "local",

		"DB_DRIVER":    "mysql",
		"DB_HOST":      "localhost",
		"DB_PORT":      "3306",
		"DB_USER":      "root",
		"DB_PASSWORD":  "Pp123456",
		"DB_NAME":      "ruizhu",
		"DATABASE_DSN": "",

		"API_HOST":  "0.0.0.0",
		"API_PORT":  "8000",
		"GRPC_PORT": "9000",

		"SECRET_KEY": "your-secret-key-here",
		"ALGORITHM":  "HS256",
		"JWT_TTL":    "24h",

		"REDIS_ADDR":     "",
		"REDIS_PASSWORD": "",

		"RATE_LIMIT":  "200",
		"RATE_WINDOW": "1m",

		"CACHE_TTL": "0",

		"CORS_ALLOWED_ORIGINS":   "*",
		"CORS_ALLOW_CREDENTIALS": "true",
		"CORS_MAX_AGE":           "10m",

		"MAX_BODY_BYTES": "4194304",

		"STORAGE_DISK":       "local",
		"STORAGE_LOCAL_ROOT": "storage",
		"STORAGE_URL":        "http://localhost:8000/storage",
		"S3_REGION":          "us-east-1",

		"WECHAT_APP_ID":  "wx_mock_appid",
		"WECHAT_MCH_ID":  "mock_mch_id",
		"WECHAT_API_KEY": "mock_api_key",

		"LOG_MONGO_DB":         "shop",
		"LOG_MONGO_COLLECTION": "logs",
	}
}

// Load resolves the configuration from the given files and the process
// environment. Missing files are skipped.
func Load(jsonPath, envPath string) (*Config, error) {
	values := defaultValues()

	if err := mergeJSONConfig(jsonPath, values); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err := mergeDotEnv(envPath, values); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	for key := range values {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = strings.TrimSpace(v)
		}
	}
	for _, key := range []string{"S3_BUCKET", "S3_KEY", "S3_SECRET", "S3_ENDPOINT", "S3_URL", "LOG_MONGO_URI"} {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = strings.TrimSpace(v)
		}
	}

	return build(values)
}

func build(v map[string]string) (*Config, error) {
	dbPort, err := cast.ToIntE(v["DB_PORT"])
	if err != nil {
		return nil, fmt.Errorf("config: DB_PORT: %w", err)
	}
	apiPort, err := cast.ToIntE(v["API_PORT"])
	if err != nil {
		return nil, fmt.Errorf("config: API_PORT: %w", err)
	}
	grpcPort, err := cast.ToIntE(v["GRPC_PORT"])
	if err != nil {
		return nil, fmt.Errorf("config: GRPC_PORT: %w", err)
	}
	ttl, err := cast.ToDurationE(v["JWT_TTL"])
	if err != nil {
		return nil, fmt.Errorf("config: JWT_TTL: %w", err)
	}
	rateLimit, err := cast.ToIntE(v["RATE_LIMIT"])
	if err != nil {
		return nil, fmt.Errorf("config: RATE_LIMIT: %w", err)
	}
	rateWindow, err := cast.ToDurationE(v["RATE_WINDOW"])
	if err != nil {
		return nil, fmt.Errorf("config: RATE_WINDOW: %w", err)
	}
	cacheTTL, err := cast.ToDurationE(v["CACHE_TTL"])
	if err != nil {
		return nil, fmt.Errorf("config: CACHE_TTL: %w", err)
	}
	corsCredentials, err := cast.ToBoolE(v["CORS_ALLOW_CREDENTIALS"])
	if err != nil {
		return nil, fmt.Errorf("config: CORS_ALLOW_CREDENTIALS: %w", err)
	}
	corsMaxAge, err := cast.ToDurationE(v["CORS_MAX_AGE"])
	if err != nil {
		return nil, fmt.Errorf("config: CORS_MAX_AGE: %w", err)
	}
	maxBody, err := cast.ToInt64E(v["MAX_BODY_BYTES"])
	if err != nil || maxBody <= 0 {
		maxBody = 4 << 20
	}

	driver := strings.ToLower(v["DB_DRIVER"])
	switch driver {
	case "mysql", "postgres", "sqlite", "sqlserver":
	default:
		return nil, fmt.Errorf("config: unsupported DB_DRIVER %q (supported: mysql, postgres, sqlite, sqlserver)", driver)
	}

	return &Config{
		AppEnv: v["APP_ENV"],
		Database: DatabaseConfig{
			Driver:   driver,
			Host:     v["DB_HOST"],
			Port:     dbPort,
			User:     v["DB_USER"],
			Password: v["DB_PASSWORD"],
			Name:     v["DB_NAME"],
			DSN:      v["DATABASE_DSN"],
		},
		API: APIConfig{
			Host:     v["API_HOST"],
			Port:     apiPort,
			GRPCPort: grpcPort,
		},
		JWT: JWTConfig{
			Secret:    v["SECRET_KEY"],
			Algorithm: v["ALGORITHM"],
			TTL:       ttl,
		},
		Redis: RedisConfig{
			Addr:     v["REDIS_ADDR"],
			Password: v["REDIS_PASSWORD"],
		},
		RateLimit: RateLimitConfig{
			Requests: rateLimit,
			Window:   rateWindow,
		},
		Cache: CacheConfig{TTL: cacheTTL},
		CORS: CORSConfig{
			AllowedOrigins:   splitList(v["CORS_ALLOWED_ORIGINS"]),
			AllowCredentials: corsCredentials,
			MaxAge:           corsMaxAge,
		},
		Storage: StorageConfig{
			Disk:       strings.ToLower(v["STORAGE_DISK"]),
			LocalRoot:  v["STORAGE_LOCAL_ROOT"],
			URL:        strings.TrimRight(v["STORAGE_URL"], "/"),
			S3Bucket:   v["S3_BUCKET"],
			S3Region:   v["S3_REGION"],
			S3Key:      v["S3_KEY"],
			S3Secret:   v["S3_SECRET"],
			S3Endpoint: v["S3_ENDPOINT"],
			S3URL:      strings.TrimRight(v["S3_URL"], "/"),
		},
		WeChat: WeChatConfig{
			AppID:  v["WECHAT_APP_ID"],
			MchID:  v["WECHAT_MCH_ID"],
			APIKey: v["WECHAT_API_KEY"],
		},
		LogMongo: MongoLogConfig{
			URI:        v["LOG_MONGO_URI"],
			Database:   v["LOG_MONGO_DB"],
			Collection: v["LOG_MONGO_COLLECTION"],
		},
		MaxBodyBytes: maxBody,
	}, nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}

	for key, val := range raw {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		s, err := cast.ToStringE(val)
		if err != nil {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}
	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	for key, value := range env {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = value
	}
	return nil
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
