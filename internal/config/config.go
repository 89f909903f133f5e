package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/washpoint-loyalty/internal/constants"
	"github.com/washpoint-loyalty/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
	Loyalty  LoyaltyConfig  `mapstructure:"loyalty"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver   string             `mapstructure:"driver"`    // 数据库驱动（sqlite/postgres）
	DSN      string             `mapstructure:"dsn"`       // 数据库连接串
	LogLevel string             `mapstructure:"log_level"` // SQL 日志级别（silent/error/warn/info）
	Pool     DatabasePoolConfig `mapstructure:"pool"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	RedeemRateLimit    RateLimitConfig `mapstructure:"redeem_rate_limit"`
	CouponUseRateLimit RateLimitConfig `mapstructure:"coupon_use_rate_limit"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
	BlockSeconds  int `mapstructure:"block_seconds"`
}

// LoyaltyConfig 积分引擎配置
type LoyaltyConfig struct {
	MaxCommitAttempts      int                 `mapstructure:"max_commit_attempts"`
	RetryBackoffMS         int                 `mapstructure:"retry_backoff_ms"`
	CodeGenerateAttempts   int                 `mapstructure:"code_generate_attempts"`
	ConfigCacheTTLSeconds  int                 `mapstructure:"config_cache_ttl_seconds"`
	CatalogCacheTTLSeconds int                 `mapstructure:"catalog_cache_ttl_seconds"`
	TransactionListDefault int                 `mapstructure:"transaction_list_default"`
	TransactionListMax     int                 `mapstructure:"transaction_list_max"`
	DefaultPolicy          LoyaltyPolicyConfig `mapstructure:"default_policy"`
}

// LoyaltyPolicyConfig 启动时写入的全局默认积分策略
type LoyaltyPolicyConfig struct {
	PointsPerBaht      int64  `mapstructure:"points_per_baht"`
	GoldThreshold      int64  `mapstructure:"gold_threshold"`
	PlatinumThreshold  int64  `mapstructure:"platinum_threshold"`
	GoldMultiplier     string `mapstructure:"gold_multiplier"`
	PlatinumMultiplier string `mapstructure:"platinum_multiplier"`
	StampsForFreeWash  int    `mapstructure:"stamps_for_free_wash"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// RetryBackoff 冲突重试间隔
func (c LoyaltyConfig) RetryBackoff() time.Duration {
	if c.RetryBackoffMS <= 0 {
		return 0
	}
	return time.Duration(c.RetryBackoffMS) * time.Millisecond
}

// ConfigCacheTTL 策略缓存时长
func (c LoyaltyConfig) ConfigCacheTTL() time.Duration {
	return time.Duration(c.ConfigCacheTTLSeconds) * time.Second
}

// CatalogCacheTTL 模板列表缓存时长
func (c LoyaltyConfig) CatalogCacheTTL() time.Duration {
	return time.Duration(c.CatalogCacheTTLSeconds) * time.Second
}

// Load 从 .env 与 config.yml 加载配置
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warnw("dotenv_load_failed", "error", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")     // 从当前目录查找
	viper.AddConfigPath("./")    // 备用路径
	viper.AddConfigPath("../")   // 如果从 cmd/server 运行
	viper.AddConfigPath("./etc") // etc 文件夹

	setDefaults(viper.GetViper())

	// 环境变量支持
	viper.AutomaticEnv()                      // 自动读取环境变量
	viper.SetEnvKeyReplacer(envKeyReplacer()) // 将 . 替换为 _ (例如 server.port -> SERVER_PORT)

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}

	return &cfg
}

func envKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/washpoint.db")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "wp")
	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.queues", map[string]int{
		constants.QueueCritical: 6,
		constants.QueueDefault:  3,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Accept-Language",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
		"X-Request-ID",
		"Idempotency-Key",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.redeem_rate_limit.window_seconds", 60)
	v.SetDefault("security.redeem_rate_limit.max_attempts", 10)
	v.SetDefault("security.redeem_rate_limit.block_seconds", 120)
	v.SetDefault("security.coupon_use_rate_limit.window_seconds", 60)
	v.SetDefault("security.coupon_use_rate_limit.max_attempts", 30)
	v.SetDefault("security.coupon_use_rate_limit.block_seconds", 300)
	v.SetDefault("loyalty.max_commit_attempts", 3)
	v.SetDefault("loyalty.retry_backoff_ms", 20)
	v.SetDefault("loyalty.code_generate_attempts", 8)
	v.SetDefault("loyalty.config_cache_ttl_seconds", 60)
	v.SetDefault("loyalty.catalog_cache_ttl_seconds", 15)
	v.SetDefault("loyalty.transaction_list_default", 20)
	v.SetDefault("loyalty.transaction_list_max", 100)
	v.SetDefault("loyalty.default_policy.points_per_baht", constants.DefaultPointsPerBaht)
	v.SetDefault("loyalty.default_policy.gold_threshold", constants.DefaultGoldThreshold)
	v.SetDefault("loyalty.default_policy.platinum_threshold", constants.DefaultPlatinumThreshold)
	v.SetDefault("loyalty.default_policy.gold_multiplier", constants.DefaultGoldMultiplier)
	v.SetDefault("loyalty.default_policy.platinum_multiplier", constants.DefaultPlatinumMultiplier)
	v.SetDefault("loyalty.default_policy.stamps_for_free_wash", constants.DefaultStampsForFreeWash)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
