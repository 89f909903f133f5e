package staff

import (
	"strings"

	handlershared "github.com/washpoint-loyalty/internal/http/handlers/shared"
	"github.com/washpoint-loyalty/internal/http/response"
	"github.com/washpoint-loyalty/internal/repository"
	"github.com/washpoint-loyalty/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterCustomerRequest 注册会员请求
type RegisterCustomerRequest struct {
	Phone       string `json:"phone" binding:"required,thphone"`
	DisplayName string `json:"display_name" binding:"max=128"`
	AvatarURL   string `json:"avatar_url" binding:"omitempty,url,max=512"`
}

// LookupCustomers 按手机号精确查找，或按关键字分页搜索
func (h *Handler) LookupCustomers(c *gin.Context) {
	if phone := strings.TrimSpace(c.Query("phone")); phone != "" {
		customer, err := h.CustomerService.GetByPhone(c.Request.Context(), phone)
		if err != nil {
			respondLedgerError(c, err)
			return
		}
		response.Success(c, customer)
		return
	}
	page, pageSize := handlershared.NormalizePagination(
		handlershared.QueryInt(c, "page", 1),
		handlershared.QueryInt(c, "page_size", 20),
	)
	customers, total, err := h.CustomerService.Search(c.Request.Context(), repository.CustomerListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  c.Query("keyword"),
	})
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	response.SuccessWithPage(c, customers, response.BuildPagination(page, pageSize, total))
}

// RegisterCustomer 门店为会员注册
func (h *Handler) RegisterCustomer(c *gin.Context) {
	var req RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.phone_invalid", err)
		return
	}
	customer, err := h.CustomerService.Register(c.Request.Context(), service.RegisterCustomerInput{
		Phone:       req.Phone,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	response.Success(c, customer)
}

// CheckLedger 核对会员门店账户流水与余额
func (h *Handler) CheckLedger(c *gin.Context) {
	branchID, ok := getBranchID(c)
	if !ok {
		return
	}
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	check, err := h.PointLedgerService.VerifyLedger(c.Request.Context(), customerID, branchID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	response.Success(c, check)
}
