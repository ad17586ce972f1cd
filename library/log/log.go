package log

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

const (
	ModeDev  = "dev"
	ModeProd = "prod"
)

// Config 日志配置
type Config struct {
	Mode       string `yaml:"mode"`
	AppName    string `yaml:"app_name"`
	Level      string `yaml:"level" env:"LUDO_LOG_LEVEL"`
	Directory  string `yaml:"directory"`
	FormatJSON bool   `yaml:"format_json"`
	ErrorFile  bool   `yaml:"error_file"`
	Rotate     Rotate `yaml:"rotate"`
}

// Rotate 文件切割配置
type Rotate struct {
	MaxSizeMB  int  `yaml:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days"`
	Compress   bool `yaml:"compress"`
	LocalTime  bool `yaml:"local_time"`
}

func DefaultConfig() Config {
	return Config{
		Mode:      ModeDev,
		AppName:   "app",
		Level:     "debug",
		Directory: "./logs",
		Rotate: Rotate{
			MaxSizeMB:  100,
			MaxBackups: 7,
			MaxAgeDays: 7,
			Compress:   true,
			LocalTime:  true,
		},
	}
}

type Logger struct {
	wrap  *zapWrap
	sugar *zap.SugaredLogger
}

func NewLogger(c Config) (*Logger, error) {
	wrap, err := newZapWrap(c)
	if err != nil {
		return nil, err
	}
	return &Logger{
		wrap:  wrap,
		sugar: wrap.log.WithOptions(zap.AddCallerSkip(1)).Sugar(),
	}, nil
}

func (l *Logger) Close() error {
	return l.wrap.close()
}

func (l *Logger) GetZap() *zap.Logger {
	return l.wrap.log
}

func (l *Logger) GetLevel() string {
	return l.wrap.level.String()
}

func (l *Logger) SetLevel(level string) {
	if err := l.wrap.level.UnmarshalText([]byte(level)); err != nil {
		l.wrap.log.Info("invalid log level", zap.String("level", level), zap.Error(err))
		return
	}
	l.wrap.log.Info("log level updated", zap.String("level", level))
}

var global atomic.Pointer[Logger]

func init() {
	l, err := NewLogger(DefaultConfig())
	if err != nil {
		panic(fmt.Errorf("init default logger: %w", err))
	}
	global.Store(l)
}

// SetLogger 替换全局日志
func SetLogger(l *Logger) {
	if l != nil {
		global.Store(l)
	}
}

func GetLogger() *Logger {
	return global.Load()
}

func sugar() *zap.SugaredLogger {
	return global.Load().sugar
}

func Debugf(format string, args ...any) { sugar().Debugf(format, args...) }
func Infof(format string, args ...any)  { sugar().Infof(format, args...) }
func Warnf(format string, args ...any)  { sugar().Warnf(format, args...) }
func Errorf(format string, args ...any) { sugar().Errorf(format, args...) }
func Fatalf(format string, args ...any) { sugar().Fatalf(format, args...) }

func Info(args ...any) { sugar().Info(args...) }
func Warn(args ...any) { sugar().Warn(args...) }

// Infow 结构化日志
func Infow(msg string, keyvals ...any) { sugar().Infow(msg, keyvals...) }

func Sync() error {
	return global.Load().wrap.log.Sync()
}
