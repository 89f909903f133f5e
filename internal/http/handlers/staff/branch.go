package staff

import (
	"github.com/washpoint-loyalty/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CreateBranchRequest 创建门店请求
type CreateBranchRequest struct {
	Name string `json:"name" binding:"required,max=255"`
	Slug string `json:"slug" binding:"max=128"`
}

// CreateBranch 创建门店
func (h *Handler) CreateBranch(c *gin.Context) {
	var req CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	branch, err := h.BranchService.Create(c.Request.Context(), req.Name, req.Slug)
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	response.Success(c, branch)
}
