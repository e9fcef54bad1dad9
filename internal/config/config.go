package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Database DatabaseConfig `mapstructure:"database"` // 数据库配置
	Provider ProviderConfig `mapstructure:"provider"` // 外部内容提供方配置
	Sync     SyncConfig     `mapstructure:"sync"`     // 批量同步配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// DatabaseConfig PostgreSQL数据库配置
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// ProviderConfig 外部内容提供方（TMDB风格API）配置
type ProviderConfig struct {
	BaseURL        string `mapstructure:"base_url"`        // API基础地址
	APIKey         string `mapstructure:"api_key"`         // API密钥
	Language       string `mapstructure:"language"`        // 返回语言，如 zh-CN / en-US
	ConnectTimeout int    `mapstructure:"connect_timeout"` // 建连超时（秒），默认10
	Timeout        int    `mapstructure:"timeout"`         // 整体请求超时（秒），默认30
	RetryCount     int    `mapstructure:"retry_count"`     // 失败重试次数
	Proxy          string `mapstructure:"proxy"`           // 代理地址
}

// SyncConfig 批量同步配置（由外部定时器通过HTTP触发）
type SyncConfig struct {
	Pages          int     `mapstructure:"pages"`            // 每次同步拉取的页数
	PagesPerSecond float64 `mapstructure:"pages_per_second"` // 提供方限流：每秒页数
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("PROVIDER_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("PROVIDER_PROXY"); v != "" {
		cfg.Provider.Proxy = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
}

// applyDefaults 关键超时与限流参数兜底
func applyDefaults(cfg *Config) {
	if cfg.Provider.ConnectTimeout <= 0 {
		cfg.Provider.ConnectTimeout = 10
	}
	if cfg.Provider.Timeout <= 0 {
		cfg.Provider.Timeout = 30
	}
	if cfg.Provider.Language == "" {
		cfg.Provider.Language = "zh-CN"
	}
	if cfg.Sync.Pages <= 0 {
		cfg.Sync.Pages = 3
	}
	if cfg.Sync.PagesPerSecond <= 0 {
		cfg.Sync.PagesPerSecond = 2
	}
}
