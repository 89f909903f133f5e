package queue

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/washpoint-loyalty/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskLoyaltyEarn 收银消费入账任务
	TaskLoyaltyEarn = constants.TaskLoyaltyEarn
)

// LoyaltyEarnPayload 消费入账任务载荷
type LoyaltyEarnPayload struct {
	CustomerID  uint   `json:"customer_id"`
	BranchID    uint   `json:"branch_id"`
	GrossAmount string `json:"gross_amount"`
	SourceRef   string `json:"source_ref"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// NewLoyaltyEarnTask 创建消费入账任务
func NewLoyaltyEarnTask(payload LoyaltyEarnPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLoyaltyEarn, body), nil
}

// ParseLoyaltyEarnPayload 解析消费入账任务载荷
func ParseLoyaltyEarnPayload(task *asynq.Task) (LoyaltyEarnPayload, error) {
	var payload LoyaltyEarnPayload
	if task == nil {
		return payload, fmt.Errorf("nil task")
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

// LoyaltyEarnTaskID 同一门店同一顾客同一小票只入队一次
func LoyaltyEarnTaskID(branchID, customerID uint, sourceRef string) string {
	sourceRef = strings.TrimSpace(sourceRef)
	if sourceRef == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d:%s", TaskLoyaltyEarn, branchID, customerID, sourceRef)
}
