package application

import (
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"go.opentelemetry.io/otel/trace"
)

var noopTracer = trace.NewNoopTracerProvider().Tracer("")

func nullLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

func float(v float64) *float64 {
	return &v
}
