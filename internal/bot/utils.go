package bot

import (
	"strings"
	"unicode/utf8"

	"github.com/keepmind9/pokerbot/internal/logger"
	"github.com/keepmind9/pokerbot/pkg/constants"
	"github.com/sirupsen/logrus"
)

// maskSecret masks sensitive information for logging
func maskSecret(s string) string {
	if len(s) <= constants.MinSecretLengthForMasking {
		return "***"
	}
	return s[:constants.SecretMaskPrefixLength] + "***" + s[len(s)-constants.SecretMaskSuffixLength:]
}

// truncate cuts message to at most limit bytes without splitting a UTF-8 sequence
func truncate(platform, message string, limit int) string {
	if len(message) <= limit {
		return message
	}
	logger.WithFields(logrus.Fields{
		"platform":        platform,
		"original_length": len(message),
		"max_length":      limit,
	}).Info("truncating-message-for-platform-limit")

	cut := limit
	for cut > 0 && !utf8.RuneStart(message[cut]) {
		cut--
	}
	return message[:cut]
}

// singleLine collapses line breaks so a reply stays one protocol line
func singleLine(message string) string {
	message = strings.ReplaceAll(message, "\r\n", " ")
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(message)
}
