package repository

import (
	"context"
	"errors"

	"github.com/washpoint-loyalty/internal/models"

	"gorm.io/gorm"
)

// LoyaltyConfigRepository 积分策略配置数据访问接口
type LoyaltyConfigRepository interface {
	GetByBranch(branchID uint) (*models.LoyaltyConfig, error)
	GetGlobal() (*models.LoyaltyConfig, error)
	Save(cfg *models.LoyaltyConfig) error
	WithContext(ctx context.Context) *GormLoyaltyConfigRepository
}

// GormLoyaltyConfigRepository GORM 实现
type GormLoyaltyConfigRepository struct {
	db *gorm.DB
}

// NewLoyaltyConfigRepository 创建配置仓库
func NewLoyaltyConfigRepository(db *gorm.DB) *GormLoyaltyConfigRepository {
	return &GormLoyaltyConfigRepository{db: db}
}

// WithContext 绑定上下文
func (r *GormLoyaltyConfigRepository) WithContext(ctx context.Context) *GormLoyaltyConfigRepository {
	if ctx == nil {
		return r
	}
	return &GormLoyaltyConfigRepository{db: r.db.WithContext(ctx)}
}

// GetByBranch 获取门店专属配置（不回退全局）
func (r *GormLoyaltyConfigRepository) GetByBranch(branchID uint) (*models.LoyaltyConfig, error) {
	if branchID == 0 {
		return nil, nil
	}
	var cfg models.LoyaltyConfig
	if err := r.db.Where("branch_id = ?", branchID).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// GetGlobal 获取全局默认配置
func (r *GormLoyaltyConfigRepository) GetGlobal() (*models.LoyaltyConfig, error) {
	var cfg models.LoyaltyConfig
	if err := r.db.Where("branch_id IS NULL").Order("id asc").First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// Save 创建或更新配置
func (r *GormLoyaltyConfigRepository) Save(cfg *models.LoyaltyConfig) error {
	return r.db.Save(cfg).Error
}
