package tracker

import "errors"

var (
	// ErrValidation 在输入不合法（如习惯名称为空、日期格式错误）时返回，文档保持不变
	ErrValidation = errors.New("validation failed")
	// ErrHabitNotFound 在引用的习惯不存在时返回，对应操作视为空操作
	ErrHabitNotFound = errors.New("habit not found")
	// ErrMalformedInput 在导入内容无法构成文档时返回，原文档保持不变
	ErrMalformedInput = errors.New("malformed document")
)
