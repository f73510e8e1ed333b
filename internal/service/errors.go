package service

import (
	"errors"
)

const (
	BadRequest          = 400
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid        = errors.New("参数错误")
	ErrMalformedActivity   = errors.New("行为消息格式错误")
	ErrUnknownActivityType = errors.New("未知的行为类型")
	ErrMalformedTask       = errors.New("任务消息格式错误")
	ErrUnknownTask         = errors.New("未知的任务")
	ErrUserListUnavailable = errors.New("无法获取推荐用户列表")
	UnExpectedError        = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:        BadRequest,
	ErrMalformedActivity:   BadRequest,
	ErrUnknownActivityType: BadRequest,
	ErrMalformedTask:       BadRequest,
	ErrUnknownTask:         NotFound,
	ErrUserListUnavailable: InternalServerError,
	UnExpectedError:        InternalServerError,
}

// IsMalformed 消息本身有问题，重试没有意义
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedActivity) ||
		errors.Is(err, ErrUnknownActivityType) ||
		errors.Is(err, ErrMalformedTask) ||
		errors.Is(err, ErrUnknownTask)
}
