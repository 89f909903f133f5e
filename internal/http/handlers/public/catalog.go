package public

import (
	handlershared "github.com/washpoint-loyalty/internal/http/handlers/shared"
	"github.com/washpoint-loyalty/internal/http/response"
	"github.com/washpoint-loyalty/internal/service"

	"github.com/gin-gonic/gin"
)

// CouponAvailabilityResponse 模板可兑换提示
type CouponAvailabilityResponse struct {
	TemplateID uint   `json:"template_id"`
	Redeemable bool   `json:"redeemable"`
	ErrorCode  string `json:"error_code,omitempty"`
}

// ListBranches 营业中的门店
func (h *Handler) ListBranches(c *gin.Context) {
	branches, err := h.BranchService.ListActive(c.Request.Context())
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	response.Success(c, branches)
}

// GetBranchBySlug 按标识获取门店
func (h *Handler) GetBranchBySlug(c *gin.Context) {
	branch, err := h.BranchService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	response.Success(c, branch)
}

// ListBranchCoupons 门店可兑换优惠券目录
func (h *Handler) ListBranchCoupons(c *gin.Context) {
	branchID, ok := getBranchID(c)
	if !ok {
		return
	}
	templates, err := h.CouponCatalogService.ListAvailable(c.Request.Context(), branchID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	response.Success(c, templates)
}

// CheckCouponAvailability 提示性校验，不占用库存
func (h *Handler) CheckCouponAvailability(c *gin.Context) {
	branchID, ok := getBranchID(c)
	if !ok {
		return
	}
	templateID, ok := getTemplateID(c)
	if !ok {
		return
	}
	now := h.CouponInstanceService.Now()
	err := h.CouponCatalogService.CheckRedeemable(c.Request.Context(), templateID, branchID, now)
	if err != nil && !service.IsBusinessRejection(err) {
		respondLedgerError(c, err)
		return
	}
	result := CouponAvailabilityResponse{
		TemplateID: templateID,
		Redeemable: err == nil,
		ErrorCode:  handlershared.LedgerErrorCode(err),
	}
	response.Success(c, result)
}
