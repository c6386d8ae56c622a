package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	globalConfig *Config
	configPath   = "config.yaml"
)

// SetConfigPath 设置配置文件路径
func SetConfigPath(path string) {
	configPath = path
}

// GetConfigPath 获取配置文件路径
func GetConfigPath() string {
	return configPath
}

// FeedConfig 数据源（MatchScreener 后端）配置
type FeedConfig struct {
	BaseURL        string `yaml:"base_url"`
	Token          string `yaml:"token"`           // Bearer token（可选）
	TimeoutSeconds int    `yaml:"timeout_seconds"` // 单次请求超时（秒）
}

// PollConfig 轮询间隔配置（秒）
type PollConfig struct {
	StateIntervalSeconds int `yaml:"state_interval_seconds"` // 比赛状态轮询
	PriceIntervalSeconds int `yaml:"price_interval_seconds"` // 成交价轮询
	QuoteIntervalSeconds int `yaml:"quote_interval_seconds"` // 盘口报价轮询
}

// EligibilityConfig 轮询窗口配置（分钟）
type EligibilityConfig struct {
	LeadMinutes int `yaml:"lead_minutes"` // 开赛前窗口
	PastMinutes int `yaml:"past_minutes"` // 开赛后窗口
}

// BookmarkConfig 收藏存储配置
type BookmarkConfig struct {
	Backend       string `yaml:"backend"`        // file | badger
	Path          string `yaml:"path"`           // 存储目录
	RetentionDays int    `yaml:"retention_days"` // 过期清理（天）
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`
	OutputFile string `yaml:"output_file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// Config 全局配置
type Config struct {
	Feed        FeedConfig        `yaml:"feed"`
	Poll        PollConfig        `yaml:"poll"`
	Eligibility EligibilityConfig `yaml:"eligibility"`
	Bookmarks   BookmarkConfig    `yaml:"bookmarks"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`

	UndoWindowSeconds     int `yaml:"undo_window_seconds"`     // 撤销窗口（秒）
	BettableWindowMinutes int `yaml:"bettable_window_minutes"` // bettable 视图临近开赛窗口（分钟）
}

// StateInterval 比赛状态轮询间隔
func (c *Config) StateInterval() time.Duration {
	return time.Duration(c.Poll.StateIntervalSeconds) * time.Second
}

// PriceInterval 成交价轮询间隔
func (c *Config) PriceInterval() time.Duration {
	return time.Duration(c.Poll.PriceIntervalSeconds) * time.Second
}

// QuoteInterval 盘口报价轮询间隔
func (c *Config) QuoteInterval() time.Duration {
	return time.Duration(c.Poll.QuoteIntervalSeconds) * time.Second
}

// LeadWindow 开赛前可轮询窗口
func (c *Config) LeadWindow() time.Duration {
	return time.Duration(c.Eligibility.LeadMinutes) * time.Minute
}

// PastWindow 开赛后可轮询窗口
func (c *Config) PastWindow() time.Duration {
	return time.Duration(c.Eligibility.PastMinutes) * time.Minute
}

// UndoWindow 撤销移除的时间窗口
func (c *Config) UndoWindow() time.Duration {
	return time.Duration(c.UndoWindowSeconds) * time.Second
}

// BettableWindow bettable 视图的临近开赛窗口
func (c *Config) BettableWindow() time.Duration {
	return time.Duration(c.BettableWindowMinutes) * time.Minute
}

// BookmarkRetention 收藏保留时长
func (c *Config) BookmarkRetention() time.Duration {
	return time.Duration(c.Bookmarks.RetentionDays) * 24 * time.Hour
}

// Load 加载配置（文件 + 环境变量覆盖 + 默认值）
func Load() (*Config, error) {
	cfg := defaultConfig()

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败 %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("读取配置文件失败 %s: %w", configPath, err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	globalConfig = cfg
	return cfg, nil
}

// Get 获取全局配置（如果已加载）
func Get() *Config {
	return globalConfig
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Feed.BaseURL == "" {
		return fmt.Errorf("feed.base_url 未配置")
	}
	if c.Poll.StateIntervalSeconds <= 0 || c.Poll.PriceIntervalSeconds <= 0 || c.Poll.QuoteIntervalSeconds <= 0 {
		return fmt.Errorf("轮询间隔必须大于 0")
	}
	if c.Eligibility.LeadMinutes < 0 || c.Eligibility.PastMinutes < 0 {
		return fmt.Errorf("轮询窗口不能为负数")
	}
	if c.Bookmarks.Backend != "file" && c.Bookmarks.Backend != "badger" {
		return fmt.Errorf("未知的收藏存储后端: %s", c.Bookmarks.Backend)
	}
	if c.Bookmarks.RetentionDays <= 0 {
		return fmt.Errorf("bookmarks.retention_days 必须大于 0")
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Feed: FeedConfig{
			BaseURL:        "http://127.0.0.1:8000",
			TimeoutSeconds: 20,
		},
		Poll: PollConfig{
			StateIntervalSeconds: 30,
			PriceIntervalSeconds: 10,
			QuoteIntervalSeconds: 5,
		},
		Eligibility: EligibilityConfig{
			LeadMinutes: 60,
			PastMinutes: 120,
		},
		Bookmarks: BookmarkConfig{
			Backend:       "file",
			Path:          "data/bookmarks",
			RetentionDays: 14,
		},
		Server: ServerConfig{
			Listen: ":8080",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
		UndoWindowSeconds:     6,
		BettableWindowMinutes: 120,
	}
}

// applyEnvOverrides 环境变量覆盖（SCREENER_* 前缀）
func applyEnvOverrides(cfg *Config) {
	cfg.Feed.BaseURL = getEnv("SCREENER_FEED_BASE_URL", cfg.Feed.BaseURL)
	cfg.Feed.Token = getEnv("SCREENER_FEED_TOKEN", cfg.Feed.Token)
	cfg.Feed.TimeoutSeconds = parseIntEnv("SCREENER_FEED_TIMEOUT_SECONDS", cfg.Feed.TimeoutSeconds)

	cfg.Poll.StateIntervalSeconds = parseIntEnv("SCREENER_STATE_INTERVAL_SECONDS", cfg.Poll.StateIntervalSeconds)
	cfg.Poll.PriceIntervalSeconds = parseIntEnv("SCREENER_PRICE_INTERVAL_SECONDS", cfg.Poll.PriceIntervalSeconds)
	cfg.Poll.QuoteIntervalSeconds = parseIntEnv("SCREENER_QUOTE_INTERVAL_SECONDS", cfg.Poll.QuoteIntervalSeconds)

	cfg.Bookmarks.Backend = getEnv("SCREENER_BOOKMARK_BACKEND", cfg.Bookmarks.Backend)
	cfg.Bookmarks.Path = getEnv("SCREENER_BOOKMARK_PATH", cfg.Bookmarks.Path)

	cfg.Server.Listen = getEnv("SCREENER_LISTEN", cfg.Server.Listen)
	cfg.Log.Level = getEnv("SCREENER_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.OutputFile = getEnv("SCREENER_LOG_FILE", cfg.Log.OutputFile)
}

// applyDefaults 兜底默认值（配置文件可能显式写了 0/空）
func applyDefaults(cfg *Config) {
	if cfg.Feed.TimeoutSeconds <= 0 {
		cfg.Feed.TimeoutSeconds = 20
	}
	if cfg.Bookmarks.Backend == "" {
		cfg.Bookmarks.Backend = "file"
	}
	if cfg.Bookmarks.Path == "" {
		cfg.Bookmarks.Path = "data/bookmarks"
	}
	if cfg.Bookmarks.RetentionDays == 0 {
		cfg.Bookmarks.RetentionDays = 14
	}
	if cfg.UndoWindowSeconds == 0 {
		cfg.UndoWindowSeconds = 6
	}
	if cfg.BettableWindowMinutes == 0 {
		cfg.BettableWindowMinutes = 120
	}
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
