package dto

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout 接口统一使用的日历日期格式
const DateLayout = "2006-01-02"

const isoDateTag = "isodate"

// RegisterValidators 向 gin 使用的校验器注册自定义规则
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation(isoDateTag, isoDateValidation)
}

// isoDateValidation 严格的 YYYY-MM-DD 日历日期（拒绝 2025-02-30 等不存在的日期）
func isoDateValidation(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}
