package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Log        LogConfig        `mapstructure:"log"`
	Generation GenerationConfig `mapstructure:"generation"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	Session    SessionConfig    `mapstructure:"session"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	BaseURL      string     `mapstructure:"base_url"`
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
	CORS         CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置（手动选择存储、限流）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 操作员认证配置
type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	CredentialsFile string        `mapstructure:"credentials_file"` // YAML: 用户名 → bcrypt 哈希
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GenerationConfig 文本生成服务（Gemini）配置
type GenerationConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	Temperature     float32       `mapstructure:"temperature"`
	TopP            float32       `mapstructure:"top_p"`
	TopK            float32       `mapstructure:"top_k"`
	MaxOutputTokens int32         `mapstructure:"max_output_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RateLimit       int           `mapstructure:"rate_limit"` // 每个客户端每分钟最多调用次数
}

// SchedulingConfig 排班规则默认值
type SchedulingConfig struct {
	Timezone           string         `mapstructure:"timezone"`
	ShiftA             ShiftConfig    `mapstructure:"shift_a"`
	ShiftB             ShiftConfig    `mapstructure:"shift_b"`
	Staffing           StaffingConfig `mapstructure:"staffing"`
	MaxShiftsPerDay    int            `mapstructure:"max_shifts_per_day"`
	ShiftsPerWeek      int            `mapstructure:"shifts_per_week_target"`
	MinRestHours       int            `mapstructure:"min_rest_hours"`
	MaxConsecutiveDays int            `mapstructure:"max_consecutive_days"`
	PreferenceWeight   float64        `mapstructure:"preferences_weight_hint"`
}

// ShiftConfig 班次时段（HH:MM）
type ShiftConfig struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

// StaffingConfig 每班所需人数
type StaffingConfig struct {
	Base     int `mapstructure:"base"`
	Elevated int `mapstructure:"elevated"`
}

// SessionConfig 排班会话配置
type SessionConfig struct {
	SelectionTTL time.Duration `mapstructure:"selection_ttl"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadTooling 命令行工具使用：不要求 auth 配置，仅校验排班默认值
func LoadTooling(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Scheduling.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.max_body_bytes", 5<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "shiftgrid")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Ho_Chi_Minh")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", "12h")
	v.SetDefault("auth.credentials_file", "config/credentials.yaml")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("generation.api_key", "")
	v.SetDefault("generation.model", "gemini-2.5-flash")
	v.SetDefault("generation.temperature", 0.7)
	v.SetDefault("generation.top_p", 1.0)
	v.SetDefault("generation.top_k", 1.0)
	v.SetDefault("generation.max_output_tokens", 4096)
	v.SetDefault("generation.timeout", "90s")
	v.SetDefault("generation.rate_limit", 10)

	v.SetDefault("scheduling.timezone", "Asia/Ho_Chi_Minh")
	v.SetDefault("scheduling.shift_a.start", "09:00")
	v.SetDefault("scheduling.shift_a.end", "15:00")
	v.SetDefault("scheduling.shift_b.start", "14:00")
	v.SetDefault("scheduling.shift_b.end", "20:00")
	v.SetDefault("scheduling.staffing.base", 2)
	v.SetDefault("scheduling.staffing.elevated", 3)
	v.SetDefault("scheduling.max_shifts_per_day", 1)
	v.SetDefault("scheduling.shifts_per_week_target", 4)
	v.SetDefault("scheduling.min_rest_hours", 8)
	v.SetDefault("scheduling.max_consecutive_days", 6)
	v.SetDefault("scheduling.preferences_weight_hint", 0.7)

	v.SetDefault("session.selection_ttl", "72h")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("SHIFTGRID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	return c.Scheduling.Validate()
}

// Validate 校验排班默认值
func (s *SchedulingConfig) Validate() error {
	for name, sh := range map[string]ShiftConfig{"shift_a": s.ShiftA, "shift_b": s.ShiftB} {
		start, err := time.Parse("15:04", sh.Start)
		if err != nil {
			return fmt.Errorf("配置校验失败: scheduling.%s.start 格式应为 HH:MM", name)
		}
		end, err := time.Parse("15:04", sh.End)
		if err != nil {
			return fmt.Errorf("配置校验失败: scheduling.%s.end 格式应为 HH:MM", name)
		}
		if !end.After(start) {
			return fmt.Errorf("配置校验失败: scheduling.%s 结束时间必须晚于开始时间", name)
		}
	}
	if s.Staffing.Base < 1 {
		return fmt.Errorf("配置校验失败: scheduling.staffing.base 至少为 1")
	}
	if s.Staffing.Elevated < s.Staffing.Base {
		return fmt.Errorf("配置校验失败: scheduling.staffing.elevated 不能小于 base")
	}
	if s.MinRestHours <= 0 {
		return fmt.Errorf("配置校验失败: scheduling.min_rest_hours 必须大于 0")
	}
	if s.MaxConsecutiveDays <= 0 || s.MaxConsecutiveDays > 7 {
		return fmt.Errorf("配置校验失败: scheduling.max_consecutive_days 必须在 1-7 之间")
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("配置校验失败: scheduling.timezone 无效: %w", err)
	}
	return nil
}
