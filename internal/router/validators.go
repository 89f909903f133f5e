package router

import (
	"sync"

	"github.com/washpoint-loyalty/internal/service"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// RegisterValidators 注册自定义 binding 校验
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("thphone", validateThaiPhone)
	})
}

// validateThaiPhone 泰国手机号/座机：归一后 0 开头，9~10 位
func validateThaiPhone(fl validator.FieldLevel) bool {
	phone := service.NormalizePhone(fl.Field().String())
	if len(phone) < 9 || len(phone) > 10 {
		return false
	}
	return phone[0] == '0'
}
