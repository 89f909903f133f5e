package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/washpoint-loyalty/internal/logger"
	"github.com/washpoint-loyalty/internal/models"
	"github.com/washpoint-loyalty/internal/repository"

	"github.com/gosimple/slug"
)

const maxSlugSuffix = 20

// BranchService 门店身份查询
type BranchService struct {
	repo repository.BranchRepository
}

// NewBranchService 创建门店服务
func NewBranchService(repo repository.BranchRepository) *BranchService {
	return &BranchService{repo: repo}
}

// Create 创建门店，未指定标识时由名称生成
func (s *BranchService) Create(ctx context.Context, name, rawSlug string) (*models.Branch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrLedgerInvalidInput
	}
	base := slug.Make(strings.TrimSpace(rawSlug))
	explicit := base != ""
	if !explicit {
		base = slug.Make(name)
	}
	if base == "" {
		return nil, ErrLedgerInvalidInput
	}

	repo := s.repo.WithContext(ctx)
	candidate := base
	for i := 2; ; i++ {
		existing, err := repo.GetBySlug(candidate)
		if err != nil {
			return nil, classifyLedgerError(err)
		}
		if existing == nil {
			break
		}
		if explicit || i > maxSlugSuffix {
			return nil, ErrBranchSlugExists
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}

	branch := &models.Branch{Slug: candidate, Name: name, IsActive: true}
	if err := repo.Create(branch); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrBranchSlugExists
		}
		return nil, classifyLedgerError(err)
	}
	logger.FromContext(ctx).Infow("branch_created", "branch_id", branch.ID, "slug", branch.Slug)
	return branch, nil
}

// GetBySlug 按标识查询门店
func (s *BranchService) GetBySlug(ctx context.Context, raw string) (*models.Branch, error) {
	normalized := slug.Make(raw)
	if normalized == "" {
		return nil, ErrBranchNotFound
	}
	branch, err := s.repo.WithContext(ctx).GetBySlug(normalized)
	if err != nil {
		return nil, classifyLedgerError(err)
	}
	if branch == nil {
		return nil, ErrBranchNotFound
	}
	return branch, nil
}

// GetByID 按ID查询门店
func (s *BranchService) GetByID(ctx context.Context, id uint) (*models.Branch, error) {
	branch, err := s.repo.WithContext(ctx).GetByID(id)
	if err != nil {
		return nil, classifyLedgerError(err)
	}
	if branch == nil {
		return nil, ErrBranchNotFound
	}
	return branch, nil
}

// ListActive 营业中的门店
func (s *BranchService) ListActive(ctx context.Context) ([]models.Branch, error) {
	branches, err := s.repo.WithContext(ctx).ListActive()
	if err != nil {
		return nil, classifyLedgerError(err)
	}
	return branches, nil
}
