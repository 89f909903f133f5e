package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/washpoint-loyalty/internal/constants"
	"github.com/washpoint-loyalty/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CouponInstanceRepository 已发放优惠券数据访问接口
type CouponInstanceRepository interface {
	Create(instance *models.CouponInstance) error
	GetByID(id uint) (*models.CouponInstance, error)
	GetByCode(code string) (*models.CouponInstance, error)
	GetByCodeForUpdate(code string) (*models.CouponInstance, error)
	ExistsByCode(code string) (bool, error)
	GetByIdempotencyKey(customerID uint, key string) (*models.CouponInstance, error)
	MarkUsed(id uint, usedAt time.Time) (bool, error)
	MarkExpired(id uint, now time.Time) (bool, error)
	List(filter CouponInstanceListFilter) ([]models.CouponInstance, error)
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormCouponInstanceRepository
	WithContext(ctx context.Context) *GormCouponInstanceRepository
}

// GormCouponInstanceRepository GORM 实现
type GormCouponInstanceRepository struct {
	db *gorm.DB
}

// NewCouponInstanceRepository 创建已发放优惠券仓库
func NewCouponInstanceRepository(db *gorm.DB) *GormCouponInstanceRepository {
	return &GormCouponInstanceRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponInstanceRepository) WithTx(tx *gorm.DB) *GormCouponInstanceRepository {
	if tx == nil {
		return r
	}
	return &GormCouponInstanceRepository{db: tx}
}

// WithContext 绑定上下文
func (r *GormCouponInstanceRepository) WithContext(ctx context.Context) *GormCouponInstanceRepository {
	if ctx == nil {
		return r
	}
	return &GormCouponInstanceRepository{db: r.db.WithContext(ctx)}
}

// Transaction 执行事务
func (r *GormCouponInstanceRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	db := r.db
	if ctx != nil {
		db = db.WithContext(ctx)
	}
	return db.Transaction(fn)
}

// Create 创建优惠券实例
func (r *GormCouponInstanceRepository) Create(instance *models.CouponInstance) error {
	return r.db.Omit(clause.Associations).Create(instance).Error
}

// GetByID 根据ID获取
func (r *GormCouponInstanceRepository) GetByID(id uint) (*models.CouponInstance, error) {
	if id == 0 {
		return nil, nil
	}
	var instance models.CouponInstance
	if err := r.db.Preload("Template", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		First(&instance, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &instance, nil
}

// GetByCode 根据券码获取
func (r *GormCouponInstanceRepository) GetByCode(code string) (*models.CouponInstance, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var instance models.CouponInstance
	if err := r.db.Preload("Template", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("code = ?", code).
		First(&instance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &instance, nil
}

// GetByCodeForUpdate 根据券码加锁获取
func (r *GormCouponInstanceRepository) GetByCodeForUpdate(code string) (*models.CouponInstance, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var instance models.CouponInstance
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", code).
		First(&instance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &instance, nil
}

// ExistsByCode 券码是否已存在
func (r *GormCouponInstanceRepository) ExistsByCode(code string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.CouponInstance{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByIdempotencyKey 按会员与幂等键获取已发放的券
func (r *GormCouponInstanceRepository) GetByIdempotencyKey(customerID uint, key string) (*models.CouponInstance, error) {
	key = strings.TrimSpace(key)
	if customerID == 0 || key == "" {
		return nil, nil
	}
	var instance models.CouponInstance
	if err := r.db.Where("customer_id = ? AND idempotency_key = ?", customerID, key).First(&instance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &instance, nil
}

// MarkUsed 条件核销：仅 AVAILABLE 状态可转为 USED
func (r *GormCouponInstanceRepository) MarkUsed(id uint, usedAt time.Time) (bool, error) {
	result := r.db.Model(&models.CouponInstance{}).
		Where("id = ? AND status = ?", id, constants.CouponStatusAvailable).
		Updates(map[string]interface{}{
			"status":     constants.CouponStatusUsed,
			"used_at":    usedAt,
			"updated_at": usedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkExpired 条件标记过期：仅 AVAILABLE 且已过期时更新
func (r *GormCouponInstanceRepository) MarkExpired(id uint, now time.Time) (bool, error) {
	result := r.db.Model(&models.CouponInstance{}).
		Where("id = ? AND status = ? AND expires_at < ?", id, constants.CouponStatusAvailable, now).
		Updates(map[string]interface{}{
			"status":     constants.CouponStatusExpired,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List 查询会员在门店的优惠券，按发放时间倒序
func (r *GormCouponInstanceRepository) List(filter CouponInstanceListFilter) ([]models.CouponInstance, error) {
	query := r.db.Model(&models.CouponInstance{}).
		Preload("Template", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.BranchID != 0 {
		query = query.Where("branch_id = ?", filter.BranchID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var instances []models.CouponInstance
	if err := query.Order("id desc").Find(&instances).Error; err != nil {
		return nil, err
	}
	return instances, nil
}
