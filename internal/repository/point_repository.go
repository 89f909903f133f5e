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

// PointRepository 积分账户与流水数据访问接口
type PointRepository interface {
	GetAccount(customerID, branchID uint) (*models.PointAccount, error)
	GetAccountForUpdate(customerID, branchID uint) (*models.PointAccount, error)
	CreateAccount(account *models.PointAccount) error
	UpdateAccountWithVersion(account *models.PointAccount, expectedVersion int64) (bool, error)
	DebitWithVersion(accountID uint, expectedVersion int64, amount int64, now time.Time) (bool, error)
	CreateTransaction(txn *models.PointTransaction) error
	GetTransactionByReference(reference string) (*models.PointTransaction, error)
	ListRecentTransactions(customerID, branchID uint, limit int) ([]models.PointTransaction, error)
	ListTransactions(filter PointTransactionListFilter) ([]models.PointTransaction, int64, error)
	SumTransactionAmounts(customerID, branchID uint) (earned int64, redeemed int64, err error)
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormPointRepository
	WithContext(ctx context.Context) *GormPointRepository
}

// GormPointRepository GORM 积分仓储实现
type GormPointRepository struct {
	db *gorm.DB
}

// NewPointRepository 创建积分仓储
func NewPointRepository(db *gorm.DB) *GormPointRepository {
	return &GormPointRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPointRepository) WithTx(tx *gorm.DB) *GormPointRepository {
	if tx == nil {
		return r
	}
	return &GormPointRepository{db: tx}
}

// WithContext 绑定上下文
func (r *GormPointRepository) WithContext(ctx context.Context) *GormPointRepository {
	if ctx == nil {
		return r
	}
	return &GormPointRepository{db: r.db.WithContext(ctx)}
}

// Transaction 执行事务
func (r *GormPointRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	db := r.db
	if ctx != nil {
		db = db.WithContext(ctx)
	}
	return db.Transaction(fn)
}

// GetAccount 获取会员在门店的积分账户
func (r *GormPointRepository) GetAccount(customerID, branchID uint) (*models.PointAccount, error) {
	if customerID == 0 || branchID == 0 {
		return nil, nil
	}
	var account models.PointAccount
	if err := r.db.Where("customer_id = ? AND branch_id = ?", customerID, branchID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetAccountForUpdate 加锁获取积分账户
func (r *GormPointRepository) GetAccountForUpdate(customerID, branchID uint) (*models.PointAccount, error) {
	if customerID == 0 || branchID == 0 {
		return nil, nil
	}
	var account models.PointAccount
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("customer_id = ? AND branch_id = ?", customerID, branchID).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// CreateAccount 创建积分账户
func (r *GormPointRepository) CreateAccount(account *models.PointAccount) error {
	return r.db.Create(account).Error
}

// UpdateAccountWithVersion 按版本号更新账户，版本不匹配返回 false
func (r *GormPointRepository) UpdateAccountWithVersion(account *models.PointAccount, expectedVersion int64) (bool, error) {
	if account == nil || account.ID == 0 {
		return false, nil
	}
	result := r.db.Model(&models.PointAccount{}).
		Where("id = ? AND version = ?", account.ID, expectedVersion).
		Updates(map[string]interface{}{
			"balance":      account.Balance,
			"total_earned": account.TotalEarned,
			"tier":         account.Tier,
			"stamps":       account.Stamps,
			"version":      expectedVersion + 1,
			"updated_at":   account.UpdatedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	account.Version = expectedVersion + 1
	return true, nil
}

// DebitWithVersion 条件扣减积分（版本匹配且余额充足才生效）
func (r *GormPointRepository) DebitWithVersion(accountID uint, expectedVersion int64, amount int64, now time.Time) (bool, error) {
	if accountID == 0 || amount <= 0 {
		return false, nil
	}
	result := r.db.Model(&models.PointAccount{}).
		Where("id = ? AND version = ? AND balance >= ?", accountID, expectedVersion, amount).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance - ?", amount),
			"version":    gorm.Expr("version + 1"),
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CreateTransaction 创建积分流水
func (r *GormPointRepository) CreateTransaction(txn *models.PointTransaction) error {
	return r.db.Create(txn).Error
}

// GetTransactionByReference 按参考号获取流水
func (r *GormPointRepository) GetTransactionByReference(reference string) (*models.PointTransaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	var txn models.PointTransaction
	if err := r.db.Where("reference = ?", reference).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// ListRecentTransactions 获取最近 limit 条流水，按提交顺序（id 升序）返回
func (r *GormPointRepository) ListRecentTransactions(customerID, branchID uint, limit int) ([]models.PointTransaction, error) {
	if customerID == 0 || branchID == 0 || limit <= 0 {
		return []models.PointTransaction{}, nil
	}
	var txns []models.PointTransaction
	if err := r.db.Where("customer_id = ? AND branch_id = ?", customerID, branchID).
		Order("id desc").
		Limit(limit).
		Find(&txns).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(txns)-1; i < j; i, j = i+1, j-1 {
		txns[i], txns[j] = txns[j], txns[i]
	}
	return txns, nil
}

// ListTransactions 分页查询积分流水
func (r *GormPointRepository) ListTransactions(filter PointTransactionListFilter) ([]models.PointTransaction, int64, error) {
	query := r.db.Model(&models.PointTransaction{})
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.BranchID != 0 {
		query = query.Where("branch_id = ?", filter.BranchID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var txns []models.PointTransaction
	if err := query.Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// SumTransactionAmounts 汇总账户流水（获得合计与兑换合计，兑换为正数）
func (r *GormPointRepository) SumTransactionAmounts(customerID, branchID uint) (int64, int64, error) {
	type row struct {
		Type  string
		Total int64
	}
	var rows []row
	if err := r.db.Model(&models.PointTransaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("customer_id = ? AND branch_id = ?", customerID, branchID).
		Group("type").
		Scan(&rows).Error; err != nil {
		return 0, 0, err
	}
	var earned, redeemed int64
	for _, item := range rows {
		switch item.Type {
		case constants.PointTxnTypeEarn:
			earned += item.Total
		case constants.PointTxnTypeRedeem:
			redeemed += -item.Total
		}
	}
	return earned, redeemed, nil
}
