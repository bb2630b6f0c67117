package utils

import (
	"strings"

	"railticket/internal/logger"
)

// LogEvent writes a standardized line with module/action/request_id.
// Avoid logging sensitive payload; message should be summarized.
func LogEvent(l logger.Logger, requestID, module, action, message string, keysAndValues ...interface{}) {
	kv := append([]interface{}{
		"module", strings.ToUpper(module),
		"action", action,
		"request_id", strings.TrimSpace(requestID),
	}, keysAndValues...)
	logger.OrNop(l).Info(message, kv...)
}

// LogWarn is LogEvent at warn level, for degraded-but-continuing steps.
func LogWarn(l logger.Logger, requestID, module, action, message string, keysAndValues ...interface{}) {
	kv := append([]interface{}{
		"module", strings.ToUpper(module),
		"action", action,
		"request_id", strings.TrimSpace(requestID),
	}, keysAndValues...)
	logger.OrNop(l).Warn(message, kv...)
}
