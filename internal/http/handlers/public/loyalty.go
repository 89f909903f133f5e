package public

import (
	"strings"

	handlershared "github.com/washpoint-loyalty/internal/http/handlers/shared"
	"github.com/washpoint-loyalty/internal/http/response"
	"github.com/washpoint-loyalty/internal/repository"
	"github.com/washpoint-loyalty/internal/service"

	"github.com/gin-gonic/gin"
)

// RedeemRequest 兑换请求
type RedeemRequest struct {
	TemplateID     uint   `json:"template_id" binding:"required"`
	IdempotencyKey string `json:"idempotency_key" binding:"max=128"`
}

// GetPoints 会员在门店的积分、等级与集章
func (h *Handler) GetPoints(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	branchID, ok := getBranchID(c)
	if !ok {
		return
	}
	view, err := h.PointLedgerService.GetBalance(c.Request.Context(), customerID, branchID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	response.Success(c, view)
}

// ListTransactions 积分流水：传 page 时分页（新到旧），否则返回最近 limit 条（按提交顺序）
func (h *Handler) ListTransactions(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	branchID, ok := getBranchID(c)
	if !ok {
		return
	}
	if strings.TrimSpace(c.Query("page")) != "" {
		page, pageSize := handlershared.NormalizePagination(
			handlershared.QueryInt(c, "page", 1),
			handlershared.QueryInt(c, "page_size", 20),
		)
		from, errFrom := parseQueryTime(c, "from")
		to, errTo := parseQueryTime(c, "to")
		if errFrom != nil || errTo != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		txns, total, err := h.PointLedgerService.ListTransactionsPage(c.Request.Context(), repository.PointTransactionListFilter{
			Page:        page,
			PageSize:    pageSize,
			CustomerID:  customerID,
			BranchID:    branchID,
			Type:        strings.ToUpper(strings.TrimSpace(c.Query("type"))),
			CreatedFrom: from,
			CreatedTo:   to,
		})
		if err != nil {
			respondLedgerError(c, err)
			return
		}
		response.SuccessWithPage(c, txns, response.BuildPagination(page, pageSize, total))
		return
	}
	txns, err := h.PointLedgerService.ListTransactions(c.Request.Context(), customerID, branchID, handlershared.QueryInt(c, "limit", 0))
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	response.Success(c, txns)
}

// ListMyCoupons 会员在门店持有的优惠券
func (h *Handler) ListMyCoupons(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	branchID, ok := getBranchID(c)
	if !ok {
		return
	}
	coupons, err := h.CouponInstanceService.ListMyCoupons(c.Request.Context(), customerID, branchID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	response.Success(c, coupons)
}

// Redeem 积分兑换优惠券，Idempotency-Key 请求头优先于请求体
func (h *Handler) Redeem(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	branchID, ok := getBranchID(c)
	if !ok {
		return
	}
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	key := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if key == "" {
		key = strings.TrimSpace(req.IdempotencyKey)
	}
	instance, err := h.RedemptionService.Redeem(c.Request.Context(), service.RedeemInput{
		CustomerID:     customerID,
		BranchID:       branchID,
		TemplateID:     req.TemplateID,
		IdempotencyKey: key,
	})
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	response.Success(c, instance)
}
