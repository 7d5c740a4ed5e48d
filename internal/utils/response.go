package utils

import (
	"errors"

	"donation-settle-api/internal/constant"
)

// Response 统一接口返回结构
type Response struct {
	Code    int         `json:"code"`
	Msg     string      `json:"msg"`
	Data    interface{} `json:"data,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
}

func Success(data interface{}) Response {
	return Response{
		Code: constant.CodeSuccess,
		Msg:  "Success",
		Data: data,
	}
}

// Error 按错误码取注册的提示信息
func Error(code int) Response {
	if info, exists := constant.GetErrorInfo(code); exists {
		return Response{Code: code, Msg: info.EN}
	}
	return Response{Code: code, Msg: "Unknown error"}
}

func ErrorWithTrace(code int, traceID string) Response {
	r := Error(code)
	r.TraceID = traceID
	return r
}

func CustomErrorWithTrace(code int, message string, traceID string) Response {
	return Response{Code: code, Msg: message, TraceID: traceID}
}

// FromError 将业务错误转换为返回结构。带码错误保留原信息，
// 内部错误只返回通用提示，细节留在日志
func FromError(err error, traceID string) Response {
	var ce constant.Error
	if !errors.As(err, &ce) {
		return ErrorWithTrace(constant.CodeSystemError, traceID)
	}
	switch ce.Code() {
	case constant.CodeSystemError, constant.CodeDatabaseError, constant.CodeRedisError:
		return ErrorWithTrace(ce.Code(), traceID)
	}
	return CustomErrorWithTrace(ce.Code(), ce.Message(), traceID)
}
