package staff

import (
	"strconv"
	"strings"

	handlershared "github.com/washpoint-loyalty/internal/http/handlers/shared"
	"github.com/washpoint-loyalty/internal/http/response"
	"github.com/washpoint-loyalty/internal/models"
	"github.com/washpoint-loyalty/internal/repository"
	"github.com/washpoint-loyalty/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateTemplateRequest 创建兑换模板请求
type CreateTemplateRequest struct {
	Name           string `json:"name" binding:"required,max=255"`
	RewardType     string `json:"reward_type" binding:"required,oneof=FIXED_AMOUNT PERCENT FREE_SERVICE"`
	RewardValue    string `json:"reward_value"`
	PointsCost     int64  `json:"points_cost" binding:"required,gt=0"`
	MaxRedemptions *int64 `json:"max_redemptions" binding:"omitempty,gte=0"`
	ValidDays      int    `json:"valid_days" binding:"required,gt=0"`
	ExpiresAt      string `json:"expires_at"`
	BranchOnly     bool   `json:"branch_only"`
	IsActive       *bool  `json:"is_active"`
}

// SetTemplateActiveRequest 启停模板请求
type SetTemplateActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// CreateTemplate 创建兑换模板，branch_only 时仅限当前门店
func (h *Handler) CreateTemplate(c *gin.Context) {
	branchID, ok := getBranchID(c)
	if !ok {
		return
	}
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	expiresAt, err := parseTimeNullable(req.ExpiresAt)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	rewardValue := models.NewMoneyFromInt(0)
	if raw := strings.TrimSpace(req.RewardValue); raw != "" {
		rewardValue, err = models.NewMoneyFromString(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.amount_invalid", nil)
			return
		}
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	var scope *uint
	if req.BranchOnly {
		scope = &branchID
	}

	template, err := h.CouponCatalogService.CreateTemplate(c.Request.Context(), service.CreateCouponTemplateInput{
		Name:           req.Name,
		RewardType:     req.RewardType,
		RewardValue:    rewardValue,
		PointsCost:     req.PointsCost,
		MaxRedemptions: req.MaxRedemptions,
		ValidDays:      req.ValidDays,
		ExpiresAt:      expiresAt,
		BranchID:       scope,
		IsActive:       isActive,
	})
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	response.Success(c, template)
}

// SetTemplateActive 启用或停用模板
func (h *Handler) SetTemplateActive(c *gin.Context) {
	templateID, ok := getTemplateID(c)
	if !ok {
		return
	}
	var req SetTemplateActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	template, err := h.CouponCatalogService.SetTemplateActive(c.Request.Context(), templateID, *req.IsActive)
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	response.Success(c, template)
}

// ListTemplates 门店模板列表（含全局模板），is_active 可选过滤
func (h *Handler) ListTemplates(c *gin.Context) {
	branchID, ok := getBranchID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.NormalizePagination(
		handlershared.QueryInt(c, "page", 1),
		handlershared.QueryInt(c, "page_size", 20),
	)
	filter := repository.CouponTemplateListFilter{
		Page:          page,
		PageSize:      pageSize,
		BranchID:      &branchID,
		IncludeGlobal: true,
	}
	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		filter.IsActive = &active
	}
	templates, total, err := h.CouponCatalogService.ListTemplates(c.Request.Context(), filter)
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	response.SuccessWithPage(c, templates, response.BuildPagination(page, pageSize, total))
}
