package service

import "errors"

// 配置错误：需要运营介入，调用方不应自动重试
var (
	ErrLoyaltyConfigMissing = errors.New("loyalty config missing")
	ErrLoyaltyConfigInvalid = errors.New("loyalty config invalid")
)

// 业务拒绝：预期内结果，原样返回给终端用户
var (
	ErrCouponTemplateNotFound = errors.New("coupon template not found")
	ErrCouponTemplateInactive = errors.New("coupon template inactive")
	ErrCouponTemplateExpired  = errors.New("coupon template expired")
	ErrCouponSupplyExhausted  = errors.New("coupon supply exhausted")
	ErrInsufficientPoints     = errors.New("insufficient points")
	ErrCouponNotFound         = errors.New("coupon not found")
	ErrCouponAlreadyUsed      = errors.New("coupon already used")
	ErrCouponExpired          = errors.New("coupon expired")
)

// 参数与身份错误
var (
	ErrLedgerInvalidInput = errors.New("ledger invalid input")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrCustomerExists     = errors.New("customer already exists")
	ErrBranchNotFound     = errors.New("branch not found")
	ErrBranchSlugExists   = errors.New("branch slug already exists")
)

// 基础设施错误
var (
	ErrLedgerUnavailable = errors.New("ledger temporarily unavailable")
	ErrLedgerInternal    = errors.New("ledger internal error")
)

// errLedgerConflict 事务内写冲突，仅在重试循环内部流转
var errLedgerConflict = errors.New("ledger write conflict")

var businessRejections = []error{
	ErrCouponTemplateNotFound,
	ErrCouponTemplateInactive,
	ErrCouponTemplateExpired,
	ErrCouponSupplyExhausted,
	ErrInsufficientPoints,
	ErrCouponNotFound,
	ErrCouponAlreadyUsed,
	ErrCouponExpired,
}

var passthroughErrors = []error{
	ErrLoyaltyConfigMissing,
	ErrLoyaltyConfigInvalid,
	ErrLedgerInvalidInput,
	ErrCustomerNotFound,
	ErrCustomerExists,
	ErrBranchNotFound,
	ErrBranchSlugExists,
	ErrLedgerUnavailable,
	ErrLedgerInternal,
}

// IsBusinessRejection 是否为业务拒绝（不可重试、直接展示给用户）
func IsBusinessRejection(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range businessRejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsConfigError 是否为配置类错误
func IsConfigError(err error) bool {
	return errors.Is(err, ErrLoyaltyConfigMissing) || errors.Is(err, ErrLoyaltyConfigInvalid)
}

func isKnownServiceError(err error) bool {
	if IsBusinessRejection(err) {
		return true
	}
	for _, target := range passthroughErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
