package config

import (
	"crypto/subtle"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config アプリケーション全体の設定
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	AdminAPI      AdminAPIConfig
	OpenTelemetry OpenTelemetryConfig
	Mobipaid      MobipaidConfig
	Environment   string
	LogLevel      string
}

// ServerConfig サーバー設定
type ServerConfig struct {
	Port          int
	GRPCPort      int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	PublicBaseURL string // ショップの公開URL（戻り先URLの組み立てに使用）
}

// DatabaseConfig データベース設定
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	AutoMigrate     bool
}

// RedisConfig Redis設定（注文ロック用）
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
	LockTTL  time.Duration
}

// JWTConfig JWT設定
type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

// AdminAPIConfig 管理API（プラットフォームからのフック呼び出し）設定
type AdminAPIConfig struct {
	Enabled    bool
	APIKey     string
	AllowedIPs []string
}

// OpenTelemetryConfig OpenTelemetry設定
type OpenTelemetryConfig struct {
	Enabled         bool
	ServiceName     string
	ServiceVersion  string
	OTLPEndpoint    string
	OTLPInsecure    bool
	TraceExporter   string // "otlp", "stdout"
	MetricsExporter string // "otlp", "stdout"
	SampleRatio     float64
	MetricsInterval time.Duration
}

// MobipaidConfig Mobipaidゲートウェイ設定
type MobipaidConfig struct {
	Enabled       bool
	Title         string
	Description   string
	AccessKey     string
	EnableLogging bool
	LiveAPIURL    string
	TestAPIURL    string
	HTTPTimeout   time.Duration // 注文ロックのTTLより短くする
}

// Load 設定を読み込む
func Load() (*Config, error) {
	// .envファイルを読み込む（存在しない場合は無視）
	_ = godotenv.Load()

	env := getEnv("ENVIRONMENT", "development")
	port := getEnvAsInt("SERVER_PORT", 8080)

	cfg := &Config{
		Environment: env,
		LogLevel:    strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
		Server: ServerConfig{
			Port:          port,
			GRPCPort:      getEnvAsInt("GRPC_PORT", port+1),
			ReadTimeout:   getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:  getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:   getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", fmt.Sprintf("http://localhost:%d", port)), "/"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 3306),
			User:            getEnv("DB_USER", "root"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "shop_db"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),
			AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			LockTTL:  getEnvAsDuration("ORDER_LOCK_TTL", 30*time.Second),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", ""),
			Issuer:     getEnv("JWT_ISSUER", "mobipaid-gateway"),
			Expiration: getEnvAsDuration("JWT_EXPIRATION", time.Hour),
		},
		AdminAPI: AdminAPIConfig{
			Enabled:    getEnvAsBool("ADMIN_API_ENABLED", false),
			APIKey:     getEnv("ADMIN_API_KEY", ""),
			AllowedIPs: getEnvAsList("ADMIN_API_ALLOWED_IPS"),
		},
		OpenTelemetry: OpenTelemetryConfig{
			Enabled:         getEnvAsBool("OTEL_ENABLED", true),
			ServiceName:     getEnv("OTEL_SERVICE_NAME", "mobipaid-gateway"),
			ServiceVersion:  getEnv("OTEL_SERVICE_VERSION", "1.0.8"),
			OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			OTLPInsecure:    getEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			TraceExporter:   getEnv("OTEL_TRACES_EXPORTER", "otlp"),
			MetricsExporter: getEnv("OTEL_METRICS_EXPORTER", "otlp"),
			SampleRatio:     getEnvAsFloat("OTEL_TRACES_SAMPLE_RATIO", 1.0),
			MetricsInterval: getEnvAsDuration("OTEL_METRIC_EXPORT_INTERVAL", time.Minute),
		},
		Mobipaid: MobipaidConfig{
			Enabled:       getEnvAsBool("MOBIPAID_ENABLED", false),
			Title:         getEnv("MOBIPAID_TITLE", "Mobipaid"),
			Description:   getEnv("MOBIPAID_DESCRIPTION", "Pay with Mobipaid"),
			AccessKey:     getEnv("MOBIPAID_ACCESS_KEY", ""),
			EnableLogging: getEnvAsBool("MOBIPAID_ENABLE_LOGGING", false),
			LiveAPIURL:    strings.TrimRight(getEnv("MOBIPAID_LIVE_API_URL", "https://live.mobipaid.io/v2"), "/"),
			TestAPIURL:    strings.TrimRight(getEnv("MOBIPAID_TEST_API_URL", "https://test.mobipaid.io/v2"), "/"),
			HTTPTimeout:   getEnvAsDuration("MOBIPAID_HTTP_TIMEOUT", 20*time.Second),
		},
	}

	// 必須設定の検証
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate 設定の検証
func (c *Config) validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.AdminAPI.Enabled && c.AdminAPI.APIKey == "" {
		return fmt.Errorf("ADMIN_API_KEY is required when ADMIN_API_ENABLED is true")
	}
	// 決済API呼び出しは注文ロックの失効より先に打ち切る
	if c.Mobipaid.HTTPTimeout <= 0 {
		return fmt.Errorf("MOBIPAID_HTTP_TIMEOUT must be positive")
	}
	if c.Mobipaid.HTTPTimeout >= c.Redis.LockTTL {
		return fmt.Errorf("MOBIPAID_HTTP_TIMEOUT (%s) must be shorter than ORDER_LOCK_TTL (%s)", c.Mobipaid.HTTPTimeout, c.Redis.LockTTL)
	}
	return nil
}

// Warnings 起動を妨げない設定上の警告を返す
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Mobipaid.AccessKey == "" {
		warnings = append(warnings, "Please enter an access key!")
	}
	if c.AdminAPI.Enabled && c.AdminAPI.APIKey == "" {
		warnings = append(warnings, "ADMIN_API_KEY is empty; admin API requests will be rejected")
	}
	return warnings
}

// VerifyKey APIキーを定数時間で比較する。キー未設定の場合は常にfalse
func (c *AdminAPIConfig) VerifyKey(key string) bool {
	if c.APIKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(c.APIKey)) == 1
}

// AllowsIP 許可リスト（単一IPまたはCIDR）に含まれるか。リストが空なら全て許可
func (c *AdminAPIConfig) AllowsIP(ip string) bool {
	if len(c.AllowedIPs) == 0 {
		return true
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, allowed := range c.AllowedIPs {
		if strings.Contains(allowed, "/") {
			if _, network, err := net.ParseCIDR(allowed); err == nil && network.Contains(parsed) {
				return true
			}
			continue
		}
		if other := net.ParseIP(allowed); other != nil && other.Equal(parsed) {
			return true
		}
	}
	return false
}

// DSN データベース接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address Redis接続アドレスを返す
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv 環境変数を取得（デフォルト値付き）
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt 環境変数を整数として取得
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat 環境変数を浮動小数点数として取得
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool 環境変数を真偽値として取得
// WordPressの設定値に合わせて "yes"/"no" も受け付ける
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.ToLower(getEnv(key, ""))
	switch valueStr {
	case "":
		return defaultValue
	case "yes":
		return true
	case "no":
		return false
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration 環境変数を時間として取得
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList カンマ区切りの環境変数をリストとして取得
func getEnvAsList(key string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return nil
	}
	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
