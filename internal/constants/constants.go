package constants

// 会员等级常量
const (
	TierSilver   = "SILVER"
	TierGold     = "GOLD"
	TierPlatinum = "PLATINUM"
)

// 积分流水类型常量
const (
	PointTxnTypeEarn   = "EARN"
	PointTxnTypeRedeem = "REDEEM"
)

// 优惠券奖励类型常量
const (
	RewardTypeFixedAmount = "FIXED_AMOUNT"
	RewardTypePercent     = "PERCENT"
	RewardTypeFreeService = "FREE_SERVICE"
)

// 优惠券实例状态常量
const (
	CouponStatusAvailable = "AVAILABLE"
	CouponStatusUsed      = "USED"
	CouponStatusExpired   = "EXPIRED"
)

// 默认积分策略（全局兜底配置）
const (
	DefaultPointsPerBaht      = 10
	DefaultGoldThreshold      = 1000
	DefaultPlatinumThreshold  = 5000
	DefaultGoldMultiplier     = "1.5"
	DefaultPlatinumMultiplier = "2"
	DefaultStampsForFreeWash  = 10
)

// 优惠码格式
const (
	CouponCodePrefix     = "WP"
	CouponCodeGroupSize  = 4
	CouponCodeGroupCount = 2
	CouponCodeAlphabet   = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
)

// 异步队列常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型常量
const (
	TaskLoyaltyEarn = "loyalty:earn"
)

// 缓存 key 前缀
const (
	CacheKeyLoyaltyConfig     = "loyalty_config"
	CacheKeyCouponCatalog     = "coupon_catalog"
	CacheKeyRedeemRateRule    = "rate:redeem"
	CacheKeyCouponUseRateRule = "rate:coupon_use"
)
