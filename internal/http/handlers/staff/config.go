package staff

import (
	"errors"

	"github.com/washpoint-loyalty/internal/http/response"
	"github.com/washpoint-loyalty/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// UpsertLoyaltyConfigRequest 门店积分策略请求
type UpsertLoyaltyConfigRequest struct {
	PointsPerBaht      int64  `json:"points_per_baht" binding:"required,gt=0"`
	GoldThreshold      int64  `json:"gold_threshold" binding:"gte=0"`
	PlatinumThreshold  int64  `json:"platinum_threshold" binding:"gtefield=GoldThreshold"`
	GoldMultiplier     string `json:"gold_multiplier" binding:"required"`
	PlatinumMultiplier string `json:"platinum_multiplier" binding:"required"`
	StampsForFreeWash  int    `json:"stamps_for_free_wash" binding:"required,gt=0"`
}

// GetLoyaltyConfig 门店当前生效策略（含全局回退）
func (h *Handler) GetLoyaltyConfig(c *gin.Context) {
	branchID, ok := getBranchID(c)
	if !ok {
		return
	}
	policy, err := h.LoyaltyConfigService.Resolve(c.Request.Context(), branchID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	response.Success(c, gin.H{
		"config_id":            policy.ConfigID,
		"branch_override":      policy.BranchID != nil,
		"points_per_baht":      policy.PointsPerBaht,
		"gold_threshold":       policy.GoldThreshold,
		"platinum_threshold":   policy.PlatinumThreshold,
		"gold_multiplier":      policy.GoldMultiplier.String(),
		"platinum_multiplier":  policy.PlatinumMultiplier.String(),
		"stamps_for_free_wash": policy.StampsForFreeWash,
	})
}

// UpsertLoyaltyConfig 写入门店专属策略
func (h *Handler) UpsertLoyaltyConfig(c *gin.Context) {
	branchID, ok := getBranchID(c)
	if !ok {
		return
	}
	var req UpsertLoyaltyConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	gold, err := decimal.NewFromString(req.GoldMultiplier)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	platinum, err := decimal.NewFromString(req.PlatinumMultiplier)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	row, err := h.LoyaltyConfigService.Upsert(c.Request.Context(), service.UpsertLoyaltyConfigInput{
		BranchID:           &branchID,
		PointsPerBaht:      req.PointsPerBaht,
		GoldThreshold:      req.GoldThreshold,
		PlatinumThreshold:  req.PlatinumThreshold,
		GoldMultiplier:     gold,
		PlatinumMultiplier: platinum,
		StampsForFreeWash:  req.StampsForFreeWash,
	})
	if err != nil {
		if errors.Is(err, service.ErrLoyaltyConfigInvalid) {
			respondError(c, response.CodeBadRequest, "error.config_invalid", nil)
			return
		}
		respondLedgerError(c, err)
		return
	}
	response.Success(c, row)
}
