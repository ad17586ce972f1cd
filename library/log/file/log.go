package file

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	timeFormat        = "2006/01/02 15:04:05"
	defaultMaxSize    = 10 // 10 MB
	defaultMaxAge     = 7  // 7 days
	defaultMaxBackups = 3
)

// Log 单个文件的日志
type Log struct {
	logger *zap.Logger
	writer *lumberjack.Logger
}

// NewFileLog 创建文件日志, 按大小切割
func NewFileLog(filename string) *Log {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeLevel = nil
	encoderCfg.EncodeTime = customTimeEncoder
	encoderCfg.ConsoleSeparator = " "
	fileEnc := zapcore.NewConsoleEncoder(encoderCfg)
	lj := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    defaultMaxSize,
		MaxAge:     defaultMaxAge,
		MaxBackups: defaultMaxBackups,
		LocalTime:  true,
		Compress:   true,
	}
	return &Log{
		logger: zap.New(zapcore.NewCore(fileEnc, zapcore.AddSync(lj), zapcore.InfoLevel)),
		writer: lj,
	}
}

func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + t.Format(timeFormat) + "]")
}

// Sync 确保日志被写入
func (l *Log) Sync() error {
	return l.logger.Sync()
}

// Close 刷新并关闭文件
func (l *Log) Close() error {
	_ = l.logger.Sync()
	return l.writer.Close()
}

// WriteLog 写入日志
func (l *Log) WriteLog(msg string, args ...any) {
	l.logger.Sugar().Infof(msg, args...)
}
