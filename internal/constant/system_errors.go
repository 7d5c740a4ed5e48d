package constant

// 系统级错误码 (1xxx)
const (
	CodeSuccess            = 0    // 操作成功
	CodeSystemError        = 1000 // 系统内部错误
	CodeDatabaseError      = 1001 // 数据库操作失败
	CodeRedisError         = 1002 // Redis缓存服务错误
	CodeServiceUnavailable = 1004 // 服务暂时不可用，功能关闭或已降级
	CodeTimeout            = 1005
)

// 参数错误码
const (
	CodeInvalidParams    = 1100 // 参数格式错误
	CodeMissingParams    = 1101 // 缺少必要参数
	CodeParamsRangeError = 1104 // 参数范围错误
	CodeDuplicateRequest = 1105 // 重复请求，相同提交正在处理中
)

// 认证授权错误码
const (
	CodeUnauthorized   = 1200 // 未授权访问，请求缺少操作人
	CodeSignatureError = 1203 // 签名验证失败
	CodeAccessDenied   = 1204 // 访问权限不足
)
