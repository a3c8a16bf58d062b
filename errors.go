package tutormark

import "errors"

// 处理过程中的可恢复问题。它们只记录在 Result.Issues 和日志中，不会从 Process 返回。
var (
	// ErrEnvelopeAmbiguous 响应外壳无法识别，退回到整体序列化
	ErrEnvelopeAmbiguous = errors.New("tutormark: envelope shape not recognized")
	// ErrMalformedJSONBlock 交互块解析或校验失败，保留原始围栏文本
	ErrMalformedJSONBlock = errors.New("tutormark: malformed interactive block")
	// ErrEmptyContent 内容为空或全是空白，输出致歉消息
	ErrEmptyContent = errors.New("tutormark: empty content")
	// ErrMathRepairAmbiguity 公式无法可靠修复，保持原样
	ErrMathRepairAmbiguity = errors.New("tutormark: math left unrepaired")
)
