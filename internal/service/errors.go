package service

import (
	"errors"
	"fmt"
)

// 领域错误分类，handler 层据此映射 HTTP 状态码：
// NotFoundError -> 404, ForbiddenError -> 403，
// ValidationError / RequiredFieldError / InvalidOptionError / ConflictError -> 422，
// 其余按存储层意外错误处理 -> 500（事务已回滚）

// NotFoundError 引用的资源不存在
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found (id=%d)", e.Resource, e.ID)
}

// ConflictError 操作与既有数据冲突（如删除仍被引用的模板/字段/选项）
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// ValidationError 请求结构性校验失败（缺少必填键、类型错误、非法枚举值等）
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RequiredFieldError 必填字段缺失
type RequiredFieldError struct {
	FieldName string
}

func (e *RequiredFieldError) Error() string {
	return fmt.Sprintf("field %s is required", e.FieldName)
}

// InvalidOptionError 提交值未命中选项类字段的选项集合
type InvalidOptionError struct {
	FieldName string
	Value     string
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid option value '%s' for field %s", e.Value, e.FieldName)
}

// ForbiddenError 访问未授权的模板
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	if e.Message == "" {
		return "you do not have access to this template"
	}
	return e.Message
}

// IsDomainError 判断是否为可恢复的领域错误（调用方可据此区分 500）
func IsDomainError(err error) bool {
	var nf *NotFoundError
	var cf *ConflictError
	var ve *ValidationError
	var rf *RequiredFieldError
	var io *InvalidOptionError
	var fb *ForbiddenError
	return errors.As(err, &nf) || errors.As(err, &cf) || errors.As(err, &ve) ||
		errors.As(err, &rf) || errors.As(err, &io) || errors.As(err, &fb)
}
