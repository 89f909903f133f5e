package staff

import "github.com/washpoint-loyalty/internal/provider"

// Handler 门店收银与运营接口处理器入口
// 说明：该处理器仅用于门店员工与运营 API。
type Handler struct {
	*provider.Container
}

// New 创建门店处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
