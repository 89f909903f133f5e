package staff

import (
	"github.com/washpoint-loyalty/internal/http/response"

	"github.com/gin-gonic/gin"
)

// UseCouponRequest 扫码核销请求
type UseCouponRequest struct {
	Code string `json:"code" binding:"required,max=32"`
}

// UseCoupon 门店扫码核销
func (h *Handler) UseCoupon(c *gin.Context) {
	branchID, ok := getBranchID(c)
	if !ok {
		return
	}
	var req UseCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	instance, err := h.CouponInstanceService.UseByCode(c.Request.Context(), req.Code, branchID, h.CouponInstanceService.Now())
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	response.Success(c, instance)
}

// PreviewCoupon 核销前预览券信息
func (h *Handler) PreviewCoupon(c *gin.Context) {
	branchID, ok := getBranchID(c)
	if !ok {
		return
	}
	instance, err := h.CouponInstanceService.GetByCode(c.Request.Context(), c.Param("code"), branchID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	response.Success(c, instance)
}
