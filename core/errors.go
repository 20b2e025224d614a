package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 区分"不存在"与"计算失败"：前者软失败（空结果），后者在边界记录日志
//
// 错误语义约定：
//   - NOT_FOUND：参考商品不在索引/模型中 → recommend 返回空列表，调用方不得视为失败
//   - INSUFFICIENT_DATA：样本不足（如 diversity 少于 2 个候选）→ 返回定义好的零值
//   - INVALID_FEED：目录/交互数据整体缺失必需字段 → 构建期致命错误
//   - INTERNAL_ERROR：策略内部数值异常 → 在策略边界吞掉并记录
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "INVALID_FEED"）
	Message string // 错误消息
	Module  string // 模块名称（如 "catalog", "model", "eval"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeNotFound         = "NOT_FOUND"          // 资源不存在
	ErrorCodeNotSupported     = "NOT_SUPPORTED"      // 操作不支持
	ErrorCodeInsufficientData = "INSUFFICIENT_DATA"  // 数据不足
	ErrorCodeInvalidFeed      = "INVALID_FEED"       // 数据源整体不合法（构建期致命）
	ErrorCodeInternalError    = "INTERNAL_ERROR"     // 内部错误
)

// 模块名称常量
const (
	ModuleCatalog = "catalog" // 商品目录
	ModuleModel   = "model"   // 派生模型（相似度矩阵/隐因子）
	ModuleRecall  = "recall"  // 召回策略
	ModuleEval    = "eval"    // 离线评估
	ModuleStore   = "store"   // 存储
)

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsInvalidFeed 检查错误是否为构建期的数据源致命错误
func IsInvalidFeed(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidFeed
	}
	return false
}

// IsInsufficientData 检查错误是否为数据不足
func IsInsufficientData(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInsufficientData
	}
	return false
}
