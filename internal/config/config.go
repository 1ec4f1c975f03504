// Package config 提供配置管理
//
// 加载顺序：内置默认值 -> YAML 配置文件（WEEKSHIFT_CONFIG 指定，可选）-> 环境变量。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/paiban/weekshift/pkg/errors"
	"github.com/paiban/weekshift/pkg/logger"
	"github.com/paiban/weekshift/pkg/model"
	"github.com/paiban/weekshift/pkg/scheduler/solver"
)

// FileEnv 配置文件路径环境变量
const FileEnv = "WEEKSHIFT_CONFIG"

// Config 应用配置
type Config struct {
	App       AppConfig       `yaml:"app"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Input     InputConfig     `yaml:"input"`
	API       APIConfig       `yaml:"api"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       logger.Config   `yaml:"log"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name string `yaml:"name"`
	Env  string `yaml:"env"`
	Port int    `yaml:"port"`
}

// APIConfig API配置
type APIConfig struct {
	RateLimit int           `yaml:"rate_limit"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxBatch  int           `yaml:"max_batch"` // 单次批量排班最多的输入份数
	CORS      CORSConfig    `yaml:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	Enabled bool     `yaml:"enabled"`
	Origins []string `yaml:"origins"`
}

// SchedulerConfig 排班引擎配置
type SchedulerConfig struct {
	MinPerShift        int               `yaml:"min_per_shift"`
	MaxDaysPerEmployee int               `yaml:"max_days_per_employee"`
	TieBreak           string            `yaml:"tie_break"`
	Days               []model.Day       `yaml:"days,omitempty"`   // 为空时排整周
	Shifts             []model.ShiftKind `yaml:"shifts,omitempty"` // 为空时排早中晚三班
}

// SolverConfig 转换为求解器配置
func (c SchedulerConfig) SolverConfig() solver.Config {
	cfg := solver.DefaultConfig()
	cfg.MinPerShift = c.MinPerShift
	cfg.MaxDaysPerEmployee = c.MaxDaysPerEmployee
	if c.TieBreak != "" {
		cfg.TieBreak = solver.TieBreak(c.TieBreak)
	}
	if len(c.Days) > 0 {
		cfg.Days = append([]model.Day(nil), c.Days...)
	}
	if len(c.Shifts) > 0 {
		cfg.Shifts = append([]model.ShiftKind(nil), c.Shifts...)
	}
	return cfg
}

// InputConfig 输入配置
type InputConfig struct {
	PreferenceFile string `yaml:"preference_file"`
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default 返回内置默认配置
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name: "weekshift",
			Env:  "development",
			Port: 7012,
		},
		Scheduler: SchedulerConfig{
			MinPerShift:        solver.DefaultMinPerShift,
			MaxDaysPerEmployee: solver.DefaultMaxDaysPerEmployee,
			TieBreak:           string(solver.TieBreakInputOrder),
		},
		Input: InputConfig{
			PreferenceFile: "employee.csv",
		},
		API: APIConfig{
			RateLimit: 100,
			Timeout:   30 * time.Second,
			MaxBatch:  50,
			CORS: CORSConfig{
				Enabled: true,
				Origins: []string{"*"},
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Log: logger.DefaultConfig(),
	}
}

// Load 加载配置，配置文件路径取自 WEEKSHIFT_CONFIG
func Load() (*Config, error) {
	return LoadFile(os.Getenv(FileEnv))
}

// LoadFile 从指定文件加载配置，path 为空时只使用默认值与环境变量
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "读取配置文件失败").WithDetails(path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "解析配置文件失败").WithDetails(path)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv 环境变量覆盖文件与默认值
func (c *Config) applyEnv() {
	c.App.Name = getEnv("APP_NAME", c.App.Name)
	c.App.Env = getEnv("APP_ENV", c.App.Env)
	c.App.Port = getEnvInt("APP_PORT", c.App.Port)

	c.Scheduler.MinPerShift = getEnvInt("SCHEDULER_MIN_PER_SHIFT", c.Scheduler.MinPerShift)
	c.Scheduler.MaxDaysPerEmployee = getEnvInt("SCHEDULER_MAX_DAYS_PER_EMPLOYEE", c.Scheduler.MaxDaysPerEmployee)
	c.Scheduler.TieBreak = getEnv("SCHEDULER_TIE_BREAK", c.Scheduler.TieBreak)

	c.Input.PreferenceFile = getEnv("INPUT_PREFERENCE_FILE", c.Input.PreferenceFile)

	c.API.RateLimit = getEnvInt("API_RATE_LIMIT", c.API.RateLimit)
	c.API.Timeout = getEnvDuration("API_TIMEOUT", c.API.Timeout)
	c.API.MaxBatch = getEnvInt("API_MAX_BATCH", c.API.MaxBatch)
	c.API.CORS.Enabled = getEnvBool("API_CORS_ENABLED", c.API.CORS.Enabled)
	c.API.CORS.Origins = getEnvList("API_CORS_ORIGINS", c.API.CORS.Origins)

	c.Metrics.Enabled = getEnvBool("METRICS_ENABLED", c.Metrics.Enabled)
	c.Metrics.Path = getEnv("METRICS_PATH", c.Metrics.Path)

	c.Log.Level = getEnv("APP_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Log.Output = getEnv("LOG_OUTPUT", c.Log.Output)
	c.Log.FilePath = getEnv("LOG_FILE_PATH", c.Log.FilePath)
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return errors.InvalidConfig("app.port", fmt.Sprintf("端口无效: %d", c.App.Port))
	}
	if c.API.RateLimit <= 0 {
		return errors.InvalidConfig("api.rate_limit", "必须为正数")
	}
	if c.API.MaxBatch <= 0 {
		return errors.InvalidConfig("api.max_batch", "必须为正数")
	}
	return c.Scheduler.SolverConfig().Validate()
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// 辅助函数
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
