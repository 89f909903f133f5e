package service

import (
	"context"
	"strings"
	"unicode"

	"github.com/washpoint-loyalty/internal/logger"
	"github.com/washpoint-loyalty/internal/models"
	"github.com/washpoint-loyalty/internal/repository"
)

// CustomerService 会员身份查询与注册
type CustomerService struct {
	repo repository.CustomerRepository
}

// RegisterCustomerInput 注册会员输入
type RegisterCustomerInput struct {
	Phone       string
	DisplayName string
	AvatarURL   string
}

// NewCustomerService 创建会员服务
func NewCustomerService(repo repository.CustomerRepository) *CustomerService {
	return &CustomerService{repo: repo}
}

// Register 按手机号注册会员
func (s *CustomerService) Register(ctx context.Context, input RegisterCustomerInput) (*models.Customer, error) {
	phone := NormalizePhone(input.Phone)
	if phone == "" {
		return nil, ErrLedgerInvalidInput
	}
	repo := s.repo.WithContext(ctx)
	existing, err := repo.GetByPhone(phone)
	if err != nil {
		return nil, classifyLedgerError(err)
	}
	if existing != nil {
		return nil, ErrCustomerExists
	}
	customer := &models.Customer{
		Phone:       phone,
		DisplayName: strings.TrimSpace(input.DisplayName),
		AvatarURL:   strings.TrimSpace(input.AvatarURL),
	}
	if err := repo.Create(customer); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrCustomerExists
		}
		return nil, classifyLedgerError(err)
	}
	logger.FromContext(ctx).Infow("customer_registered", "customer_id", customer.ID)
	return customer, nil
}

// GetByPhone 按手机号查询会员
func (s *CustomerService) GetByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	phone = NormalizePhone(phone)
	if phone == "" {
		return nil, ErrLedgerInvalidInput
	}
	customer, err := s.repo.WithContext(ctx).GetByPhone(phone)
	if err != nil {
		return nil, classifyLedgerError(err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}

// GetByID 按ID查询会员
func (s *CustomerService) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	customer, err := s.repo.WithContext(ctx).GetByID(id)
	if err != nil {
		return nil, classifyLedgerError(err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}

// Search 分页搜索会员
func (s *CustomerService) Search(ctx context.Context, filter repository.CustomerListFilter) ([]models.Customer, int64, error) {
	rows, total, err := s.repo.WithContext(ctx).List(filter)
	if err != nil {
		return nil, 0, classifyLedgerError(err)
	}
	return rows, total, nil
}

// NormalizePhone 去除空白与分隔符，国际区号 +66 转为本地 0 开头
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if unicode.IsDigit(r) || r == '+' {
			b.WriteRune(r)
		}
	}
	phone := b.String()
	if strings.HasPrefix(phone, "+66") {
		phone = "0" + strings.TrimPrefix(phone, "+66")
	}
	return strings.TrimPrefix(phone, "+")
}
