package repository

import "time"

// PointTransactionListFilter 查询积分流水列表的过滤条件
type PointTransactionListFilter struct {
	Page        int
	PageSize    int
	CustomerID  uint
	BranchID    uint
	Type        string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// CouponTemplateListFilter 查询优惠券模板列表的过滤条件
type CouponTemplateListFilter struct {
	Page          int
	PageSize      int
	BranchID      *uint
	IncludeGlobal bool // 同时返回全局模板
	IsActive      *bool
}

// CouponInstanceListFilter 查询已发放优惠券的过滤条件
type CouponInstanceListFilter struct {
	CustomerID uint
	BranchID   uint
	Status     string
	Limit      int
}

// CustomerListFilter 查询会员列表的过滤条件
type CustomerListFilter struct {
	Page     int
	PageSize int
	Keyword  string
}
