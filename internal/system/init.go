package system

import (
	"context"

	"github.com/sirupsen/logrus"
)

// TelegramChatID prefers the configured chat and falls back to the operator setting.
func TelegramChatID(ctx context.Context, s *ConfigSystem, configured string, log *logrus.Logger) string {
	if configured != "" {
		return configured
	}
	v, ok, err := s.Value(ctx, KeyTelegramChat)
	if err != nil {
		log.WithError(err).Warn("telegram chat id lookup failed")
		return ""
	}
	if ok {
		log.WithField("chat_id", v).Info("telegram chat id loaded from sys config")
	}
	return v
}
