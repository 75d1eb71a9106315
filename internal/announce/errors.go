package announce

import (
	"errors"
	"strings"
	"time"

	"github.com/go-telegram/bot"
)

// permanentBadRequestPatterns match Bad Request descriptions that mean the
// chat is gone for good rather than the request being malformed.
var permanentBadRequestPatterns = []string{
	"chat not found",
	"group chat was upgraded",
	"bot was kicked",
	"not enough rights",
}

// IsPermanent reports whether err indicates the bot can no longer reach the
// chat at all: forbidden (blocked, kicked, deactivated) or a Bad Request
// matching a known permanent-failure description.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, bot.ErrorForbidden) {
		return true
	}
	if errors.Is(err, bot.ErrorBadRequest) {
		msg := strings.ToLower(err.Error())
		for _, pattern := range permanentBadRequestPatterns {
			if strings.Contains(msg, pattern) {
				return true
			}
		}
	}
	return false
}

// retryAfter extracts the platform-specified delay from a rate-limit error.
// The second return value is false when err is not a rate-limit signal.
func retryAfter(err error) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}
	var tooMany *bot.TooManyRequestsError
	if errors.As(err, &tooMany) {
		return time.Duration(tooMany.RetryAfter) * time.Second, true
	}
	return 0, false
}
