package public

import (
	handlershared "github.com/ayurcare-next/internal/http/handlers/shared"
	"github.com/ayurcare-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler 用户侧 API 处理器（支付、购物车、结算、预约）
type Handler struct {
	*provider.Container
}

// New 创建用户侧处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.CurrentUserID(c)
}
