package tutormark

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger 全局日志记录器，管道未通过 WithLogger 指定时使用
var Logger logrus.FieldLogger = newLogger(os.Stderr)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLogger 设置自定义日志记录器；nil 表示丢弃所有日志
func SetLogger(logger logrus.FieldLogger) {
	if logger == nil {
		logger = newLogger(io.Discard)
	}
	Logger = logger
}

// 日志中 stage 字段的取值
const (
	stageEnvelope    = "envelope"
	stageProtect     = "protect"
	stageMath        = "math"
	stageCode        = "code"
	stageTransform   = "transform"
	stageInteractive = "interactive"
	stageChunk       = "chunk"
)
