package repository

import (
	"context"
	"errors"
	"time"

	"github.com/washpoint-loyalty/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CouponTemplateRepository 优惠券模板数据访问接口
type CouponTemplateRepository interface {
	GetByID(id uint) (*models.CouponTemplate, error)
	GetByIDForUpdate(id uint) (*models.CouponTemplate, error)
	ListByIDs(ids []uint) ([]models.CouponTemplate, error)
	ListAvailable(branchID uint, now time.Time) ([]models.CouponTemplate, error)
	List(filter CouponTemplateListFilter) ([]models.CouponTemplate, int64, error)
	Create(template *models.CouponTemplate) error
	Update(template *models.CouponTemplate) error
	Delete(id uint) error
	IncrementRedemptions(id uint) (bool, error)
	WithTx(tx *gorm.DB) *GormCouponTemplateRepository
	WithContext(ctx context.Context) *GormCouponTemplateRepository
}

// GormCouponTemplateRepository GORM 实现
type GormCouponTemplateRepository struct {
	db *gorm.DB
}

// NewCouponTemplateRepository 创建优惠券模板仓库
func NewCouponTemplateRepository(db *gorm.DB) *GormCouponTemplateRepository {
	return &GormCouponTemplateRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponTemplateRepository) WithTx(tx *gorm.DB) *GormCouponTemplateRepository {
	if tx == nil {
		return r
	}
	return &GormCouponTemplateRepository{db: tx}
}

// WithContext 绑定上下文
func (r *GormCouponTemplateRepository) WithContext(ctx context.Context) *GormCouponTemplateRepository {
	if ctx == nil {
		return r
	}
	return &GormCouponTemplateRepository{db: r.db.WithContext(ctx)}
}

// GetByID 根据ID获取模板
func (r *GormCouponTemplateRepository) GetByID(id uint) (*models.CouponTemplate, error) {
	if id == 0 {
		return nil, nil
	}
	var template models.CouponTemplate
	if err := r.db.First(&template, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// GetByIDForUpdate 加锁获取模板
func (r *GormCouponTemplateRepository) GetByIDForUpdate(id uint) (*models.CouponTemplate, error) {
	if id == 0 {
		return nil, nil
	}
	var template models.CouponTemplate
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&template, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// ListByIDs 批量获取模板（包含已软删除的，用于展示历史券）
func (r *GormCouponTemplateRepository) ListByIDs(ids []uint) ([]models.CouponTemplate, error) {
	if len(ids) == 0 {
		return []models.CouponTemplate{}, nil
	}
	var templates []models.CouponTemplate
	if err := r.db.Unscoped().Where("id IN ?", ids).Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// ListAvailable 获取门店当前上架的模板，按所需积分升序（库存由兑换时校验）
func (r *GormCouponTemplateRepository) ListAvailable(branchID uint, now time.Time) ([]models.CouponTemplate, error) {
	var templates []models.CouponTemplate
	err := r.db.Model(&models.CouponTemplate{}).
		Where("is_active = ?", true).
		Where("(branch_id IS NULL OR branch_id = ?)", branchID).
		Where("(expires_at IS NULL OR expires_at >= ?)", now).
		Order("points_cost asc").
		Order("id asc").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

// List 获取模板列表
func (r *GormCouponTemplateRepository) List(filter CouponTemplateListFilter) ([]models.CouponTemplate, int64, error) {
	var templates []models.CouponTemplate
	query := r.db.Model(&models.CouponTemplate{})

	if filter.BranchID != nil {
		if filter.IncludeGlobal {
			query = query.Where("(branch_id = ? OR branch_id IS NULL)", *filter.BranchID)
		} else {
			query = query.Where("branch_id = ?", *filter.BranchID)
		}
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("id desc").Find(&templates).Error; err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}

// Create 创建模板
func (r *GormCouponTemplateRepository) Create(template *models.CouponTemplate) error {
	return r.db.Create(template).Error
}

// Update 更新模板
func (r *GormCouponTemplateRepository) Update(template *models.CouponTemplate) error {
	return r.db.Save(template).Error
}

// Delete 删除模板
func (r *GormCouponTemplateRepository) Delete(id uint) error {
	return r.db.Delete(&models.CouponTemplate{}, id).Error
}

// IncrementRedemptions 条件增加已兑换数量，达到上限时返回 false
func (r *GormCouponTemplateRepository) IncrementRedemptions(id uint) (bool, error) {
	result := r.db.Model(&models.CouponTemplate{}).
		Where("id = ?", id).
		Where("(max_redemptions IS NULL OR current_redemptions < max_redemptions)").
		UpdateColumn("current_redemptions", gorm.Expr("current_redemptions + ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
