package staff

import (
	"errors"
	"strings"

	handlershared "github.com/washpoint-loyalty/internal/http/handlers/shared"
	"github.com/washpoint-loyalty/internal/http/response"
	"github.com/washpoint-loyalty/internal/models"
	"github.com/washpoint-loyalty/internal/queue"
	"github.com/washpoint-loyalty/internal/service"

	"github.com/gin-gonic/gin"
)

// EarnRequest 收银消费入账请求
type EarnRequest struct {
	CustomerID  uint   `json:"customer_id" binding:"required"`
	GrossAmount string `json:"gross_amount" binding:"required"`
	SourceRef   string `json:"source_ref" binding:"max=96"`
	Description string `json:"description" binding:"max=255"`
	Async       bool   `json:"async"`
}

// EarnQueuedResponse 异步入账受理结果
type EarnQueuedResponse struct {
	Queued    bool   `json:"queued"`
	Duplicate bool   `json:"duplicate"`
	SourceRef string `json:"source_ref"`
}

// Earn 收银消费入账；async=true 时投递队列由 worker 处理
func (h *Handler) Earn(c *gin.Context) {
	branchID, ok := getBranchID(c)
	if !ok {
		return
	}
	var req EarnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	gross, err := models.NewMoneyFromString(strings.TrimSpace(req.GrossAmount))
	if err != nil || gross.IsNegative() {
		respondError(c, response.CodeBadRequest, "error.amount_invalid", nil)
		return
	}

	if req.Async || c.Query("async") == "true" {
		h.enqueueEarn(c, branchID, req, gross)
		return
	}

	result, err := h.PointLedgerService.Earn(c.Request.Context(), service.EarnInput{
		CustomerID:  req.CustomerID,
		BranchID:    branchID,
		GrossAmount: gross,
		SourceRef:   req.SourceRef,
		Description: req.Description,
	})
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *Handler) enqueueEarn(c *gin.Context, branchID uint, req EarnRequest, gross models.Money) {
	sourceRef := strings.TrimSpace(req.SourceRef)
	if sourceRef == "" {
		// 无小票号无法去重，异步重投会重复入账
		respondError(c, response.CodeBadRequest, "error.invalid_input", nil)
		return
	}
	duplicate, err := h.QueueClient.EnqueueLoyaltyEarn(queue.LoyaltyEarnPayload{
		CustomerID:  req.CustomerID,
		BranchID:    branchID,
		GrossAmount: gross.String(),
		SourceRef:   sourceRef,
		Description: strings.TrimSpace(req.Description),
		RequestID:   handlershared.RequestID(c),
	})
	if err != nil {
		if errors.Is(err, queue.ErrQueueDisabled) {
			respondError(c, response.CodeUnavailable, "error.queue_unavailable", nil)
			return
		}
		respondError(c, response.CodeUnavailable, "error.queue_unavailable", err)
		return
	}
	requestLog(c).Infow("staff_earn_enqueued", "branch_id", branchID, "source_ref", sourceRef, "duplicate", duplicate)
	response.Success(c, EarnQueuedResponse{Queued: true, Duplicate: duplicate, SourceRef: sourceRef})
}
