package shared

import (
	"errors"

	"github.com/washpoint-loyalty/internal/http/response"
	"github.com/washpoint-loyalty/internal/i18n"
	"github.com/washpoint-loyalty/internal/service"

	"github.com/gin-gonic/gin"
)

// MappedHandlerError 定义业务错误到接口错误响应的映射关系。
type MappedHandlerError struct {
	Target    error
	Code      int
	Key       string
	ErrorCode string
}

// LedgerErrorRules 积分与优惠券业务错误映射，error_code 供客户端分支判断。
var LedgerErrorRules = []MappedHandlerError{
	{Target: service.ErrLedgerInvalidInput, Code: response.CodeBadRequest, Key: "error.invalid_input", ErrorCode: "INVALID_INPUT"},
	{Target: service.ErrCouponTemplateNotFound, Code: response.CodeNotFound, Key: "error.template_not_found", ErrorCode: "TEMPLATE_NOT_FOUND"},
	{Target: service.ErrCouponTemplateInactive, Code: response.CodeUnprocessable, Key: "error.template_inactive", ErrorCode: "TEMPLATE_INACTIVE"},
	{Target: service.ErrCouponTemplateExpired, Code: response.CodeUnprocessable, Key: "error.template_expired", ErrorCode: "TEMPLATE_EXPIRED"},
	{Target: service.ErrCouponSupplyExhausted, Code: response.CodeUnprocessable, Key: "error.supply_exhausted", ErrorCode: "SUPPLY_EXHAUSTED"},
	{Target: service.ErrInsufficientPoints, Code: response.CodeUnprocessable, Key: "error.insufficient_points", ErrorCode: "INSUFFICIENT_POINTS"},
	{Target: service.ErrCouponNotFound, Code: response.CodeNotFound, Key: "error.coupon_not_found", ErrorCode: "COUPON_NOT_FOUND"},
	{Target: service.ErrCouponAlreadyUsed, Code: response.CodeConflict, Key: "error.coupon_already_used", ErrorCode: "COUPON_ALREADY_USED"},
	{Target: service.ErrCouponExpired, Code: response.CodeUnprocessable, Key: "error.coupon_expired", ErrorCode: "COUPON_EXPIRED"},
	{Target: service.ErrCustomerNotFound, Code: response.CodeNotFound, Key: "error.customer_not_found", ErrorCode: "CUSTOMER_NOT_FOUND"},
	{Target: service.ErrCustomerExists, Code: response.CodeConflict, Key: "error.customer_exists", ErrorCode: "CUSTOMER_EXISTS"},
	{Target: service.ErrBranchNotFound, Code: response.CodeNotFound, Key: "error.branch_not_found", ErrorCode: "BRANCH_NOT_FOUND"},
	{Target: service.ErrBranchSlugExists, Code: response.CodeConflict, Key: "error.branch_slug_exists", ErrorCode: "BRANCH_SLUG_EXISTS"},
	{Target: service.ErrLedgerUnavailable, Code: response.CodeUnavailable, Key: "error.unavailable", ErrorCode: "LEDGER_UNAVAILABLE"},
}

// 配置错误需要运营介入，记录原始错误。
var configErrorRules = []MappedHandlerError{
	{Target: service.ErrLoyaltyConfigMissing, Code: response.CodeInternal, Key: "error.config_missing", ErrorCode: "CONFIG_MISSING"},
	{Target: service.ErrLoyaltyConfigInvalid, Code: response.CodeInternal, Key: "error.config_invalid", ErrorCode: "CONFIG_INVALID"},
}

// RespondWithMappedError 按规则输出错误，未命中时使用兜底并记录原始错误。
func RespondWithMappedError(c *gin.Context, err error, rules []MappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			respondErrorCode(c, rule, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}

// RespondLedgerError 统一输出积分业务错误。
func RespondLedgerError(c *gin.Context, err error) {
	for _, rule := range configErrorRules {
		if errors.Is(err, rule.Target) {
			respondErrorCode(c, rule, err)
			return
		}
	}
	RespondWithMappedError(c, err, LedgerErrorRules, response.CodeInternal, "error.internal")
}

// LedgerErrorCode 业务错误对应的 error_code，未命中返回空串。
func LedgerErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, rule := range LedgerErrorRules {
		if errors.Is(err, rule.Target) {
			return rule.ErrorCode
		}
	}
	return ""
}

func respondErrorCode(c *gin.Context, rule MappedHandlerError, err error) {
	msg := i18n.T(i18n.ResolveLocale(c), rule.Key)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", rule.Code,
			"error_code", rule.ErrorCode,
			"error", err,
		)
	}
	response.ErrorWithData(c, rule.Code, msg, gin.H{"error_code": rule.ErrorCode})
}
