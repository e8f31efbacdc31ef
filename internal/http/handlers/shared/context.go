package shared

import (
	"github.com/ayurcare-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// 鉴权中间件写入的上下文键
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"
)

// CurrentUserID 读取鉴权用户 ID，缺失或类型不符时直接写出错误响应。
func CurrentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(ContextKeyUserID)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	uid, ok := value.(uint)
	if !ok {
		RespondError(c, response.CodeInternal, "error.user_id_type_invalid", nil)
		return 0, false
	}
	if uid == 0 {
		RespondError(c, response.CodeUnauthorized, "error.user_id_invalid", nil)
		return 0, false
	}
	return uid, true
}

// CurrentUserRole 读取鉴权用户角色，未设置时返回空串
func CurrentUserRole(c *gin.Context) string {
	return c.GetString(ContextKeyUserRole)
}
