package shared

import (
	"strconv"

	"github.com/ayurcare-next/internal/http/response"
	"github.com/ayurcare-next/internal/i18n"
	"github.com/ayurcare-next/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// retryAfterSeconds 可重试错误建议的等待时间
const retryAfterSeconds = 5

// RequestLog 提供携带 request_id 与 user_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	var kv []interface{}
	if id := c.GetString(response.RequestIDKey); id != "" {
		kv = append(kv, "request_id", id)
	}
	if uid, ok := c.Get(ContextKeyUserID); ok {
		kv = append(kv, "user_id", uid)
	}
	return logger.SW(kv...)
}

// RespondError 返回国际化错误响应。
// 服务端错误按 error 记录，可重试错误按 warn 记录并附带 Retry-After，客户端错误不记录。
func RespondError(c *gin.Context, code int, key string, err error) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	appErr := response.WrapError(code, msg, err)
	switch {
	case appErr.Retryable():
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		if err != nil {
			RequestLog(c).Warnw("handler_retryable_error", "code", appErr.Code, "key", key, "error", err)
		}
	case appErr.ServerSide():
		if err != nil {
			RequestLog(c).Errorw("handler_error", "code", appErr.Code, "key", key, "error", err)
		}
	}
	response.Error(c, appErr.Code, appErr.Message)
}
