package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/washpoint-loyalty/internal/models"

	"gorm.io/gorm"
)

// BranchRepository 门店数据访问接口
type BranchRepository interface {
	GetByID(id uint) (*models.Branch, error)
	GetBySlug(slug string) (*models.Branch, error)
	Create(branch *models.Branch) error
	ListActive() ([]models.Branch, error)
	WithContext(ctx context.Context) *GormBranchRepository
}

// GormBranchRepository GORM 实现
type GormBranchRepository struct {
	db *gorm.DB
}

// NewBranchRepository 创建门店仓库
func NewBranchRepository(db *gorm.DB) *GormBranchRepository {
	return &GormBranchRepository{db: db}
}

// WithContext 绑定上下文
func (r *GormBranchRepository) WithContext(ctx context.Context) *GormBranchRepository {
	if ctx == nil {
		return r
	}
	return &GormBranchRepository{db: r.db.WithContext(ctx)}
}

// GetByID 根据ID获取门店
func (r *GormBranchRepository) GetByID(id uint) (*models.Branch, error) {
	if id == 0 {
		return nil, nil
	}
	var branch models.Branch
	if err := r.db.First(&branch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &branch, nil
}

// GetBySlug 根据标识获取门店
func (r *GormBranchRepository) GetBySlug(slug string) (*models.Branch, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	var branch models.Branch
	if err := r.db.Where("slug = ?", slug).First(&branch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &branch, nil
}

// Create 创建门店
func (r *GormBranchRepository) Create(branch *models.Branch) error {
	return r.db.Create(branch).Error
}

// ListActive 获取营业中的门店
func (r *GormBranchRepository) ListActive() ([]models.Branch, error) {
	var branches []models.Branch
	if err := r.db.Where("is_active = ?", true).Order("id asc").Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}
