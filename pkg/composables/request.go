package composables

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/akdemia/akdemia/pkg/constants"
)

func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, constants.LoggerKey, logger)
}

// UseLogger returns the logger from the context.
// If no logger is found, a silent fallback entry is returned so callers can
// always log without nil checks.
func UseLogger(ctx context.Context) *logrus.Entry {
	logger, ok := ctx.Value(constants.LoggerKey).(*logrus.Entry)
	if !ok {
		fallback := logrus.New()
		fallback.SetLevel(logrus.PanicLevel)
		return logrus.NewEntry(fallback)
	}
	return logger
}
