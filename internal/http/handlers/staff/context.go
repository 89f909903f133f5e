package staff

import (
	"strings"
	"time"

	handlershared "github.com/washpoint-loyalty/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

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

func parseTimeNullable(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
