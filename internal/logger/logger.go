package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"

	"donation-settle-api/internal/config"
)

// NewLogger 创建指定日志流（"app"、"access"、"webhook"）的 logrus 实例。
// 配置了 log.dir 时按天切割写入文件，否则输出到 stdout
func NewLogger(logType string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(output(config.C.Log.Dir, logType))
	log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			return f.Function, fmt.Sprintf("%s:%d", f.File, f.Line)
		},
	})
	level, err := logrus.ParseLevel(config.C.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func output(dir, logType string) io.Writer {
	if dir == "" {
		return os.Stdout
	}
	logPath := filepath.Join(dir, logType)
	if err := os.MkdirAll(logPath, 0o755); err != nil {
		return os.Stdout
	}
	writer, err := rotatelogs.New(
		filepath.Join(logPath, logType+".log.%Y-%m-%d"),
		rotatelogs.WithLinkName(filepath.Join(logPath, logType+".log")),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(7*24*time.Hour),
	)
	if err != nil {
		return os.Stdout
	}
	return writer
}
