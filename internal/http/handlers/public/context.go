package public

import (
	"strings"
	"time"

	handlershared "github.com/washpoint-loyalty/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondLedgerError(c *gin.Context, err error) {
	handlershared.RespondLedgerError(c, err)
}

func getBranchID(c *gin.Context) (uint, bool) {
	return handlershared.ParseUintParam(c, "branch_id", "error.branch_id_invalid")
}

func getCustomerID(c *gin.Context) (uint, bool) {
	return handlershared.ParseUintParam(c, "customer_id", "error.customer_id_invalid")
}

func getTemplateID(c *gin.Context) (uint, bool) {
	return handlershared.ParseUintParam(c, "template_id", "error.template_id_invalid")
}

// parseQueryTime 解析 RFC3339 查询参数，缺省返回 nil
func parseQueryTime(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	utc := t.UTC()
	return &utc, nil
}
