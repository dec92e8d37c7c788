package startup

import (
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
)

const serviceName = "booked_service"

type serviceHook struct{}

func (serviceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (serviceHook) Fire(entry *logrus.Entry) error {
	entry.Data["service"] = serviceName
	return nil
}

func initLogger(level, filePath string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.AddHook(serviceHook{})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	if filePath == "" {
		return logger
	}

	writer, err := rotatelogs.New(
		filePath+"_%Y%m%d%H%M",
		rotatelogs.WithLinkName(filePath),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(7*24*time.Hour),
	)
	if err != nil {
		logger.Fatalf("Failed to create rotatelogs writer: %v", err)
	}
	logger.SetOutput(writer)
	return logger
}
