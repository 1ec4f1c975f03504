// Package logger 提供统一的日志框架
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level 日志级别
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config 日志配置
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器，未初始化时使用默认配置
func Get() *zerolog.Logger {
	Init(DefaultConfig())
	return &logger
}

type contextKey string

// 上下文中的追踪字段
const (
	RequestIDKey contextKey = "request_id"
	RunIDKey     contextKey = "run_id"
)

// WithContext 从上下文创建日志器
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	// 添加请求ID
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		l = l.With().Str("request_id", reqID).Logger()
	}

	// 添加运行ID
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		l = l.With().Str("run_id", runID).Logger()
	}

	return &l
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// SchedulerLogger 排班引擎专用日志器
type SchedulerLogger struct {
	base *zerolog.Logger
}

// NewSchedulerLogger 创建排班引擎日志器
func NewSchedulerLogger() *SchedulerLogger {
	l := Get().With().Str("component", "scheduler").Logger()
	return &SchedulerLogger{base: &l}
}

// NewSchedulerLoggerFrom 基于指定日志器创建（测试或嵌入场景）
func NewSchedulerLoggerFrom(base zerolog.Logger) *SchedulerLogger {
	l := base.With().Str("component", "scheduler").Logger()
	return &SchedulerLogger{base: &l}
}

// StartSchedule 记录排班开始
func (l *SchedulerLogger) StartSchedule(runID string, employees, days int) {
	l.base.Info().
		Str("run_id", runID).
		Int("employees", employees).
		Int("days", days).
		Msg("开始生成周排班")
}

// Shortfall 记录班次人手不足
func (l *SchedulerLogger) Shortfall(runID, day, shift string, assigned, required int) {
	l.base.Warn().
		Str("run_id", runID).
		Str("day", day).
		Str("shift", shift).
		Int("assigned", assigned).
		Int("required", required).
		Msg("班次人手不足")
}

// Overflow 记录冲突消解阶段超出最低人数
func (l *SchedulerLogger) Overflow(runID, day, shift string, size, min int) {
	l.base.Debug().
		Str("run_id", runID).
		Str("day", day).
		Str("shift", shift).
		Int("size", size).
		Int("min", min).
		Msg("班次人数超过最低要求")
}

// ScheduleComplete 记录排班完成
func (l *SchedulerLogger) ScheduleComplete(runID string, duration time.Duration, shortfalls int) {
	l.base.Info().
		Str("run_id", runID).
		Dur("duration", duration).
		Int("shortfalls", shortfalls).
		Msg("周排班生成完成")
}
