package public

import "github.com/washpoint-loyalty/internal/provider"

// Handler 会员端/公开接口处理器入口
// 说明：该处理器仅用于会员自助与公开目录 API。
type Handler struct {
	*provider.Container
}

// New 创建会员端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
