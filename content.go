package tutormark

import (
	"github.com/riverfjs/tutormark-go/internal/interactive"
)

// 交互块相关类型别名
type (
	Block     = interactive.Block
	BlockType = interactive.Type
	Choice    = interactive.Choice
)

const (
	BlockFeedback = interactive.TypeFeedback
	BlockOptions  = interactive.TypeOptions
	BlockQuiz     = interactive.TypeQuiz
)

// Chunk 一个按顺序交付的输出片段
type Chunk struct {
	Index int
	Text  string
	// Final 最后一个分片，之后不会再有回调
	Final bool
}

// MathSpan 供公式渲染器使用的元数据
type MathSpan struct {
	Token    string
	Original string // 原文（含定界符）
	TeX      string // 修复后的 TeX
	Display  bool
	// Plain TeX 的 Unicode 近似，用于替代文本或预览
	Plain string
	// Repaired 为 false 表示修复时判定为不确定，TeX 保持原样
	Repaired bool
}

// Result 一次处理的完整结果
type Result struct {
	RunID  string
	Markup string
	Chunks []Chunk
	// Blocks 通过校验的交互块，按出现顺序
	Blocks []Block
	Math   []MathSpan
	// Apology 内容无法生成，Markup 为致歉消息
	Apology bool
	// Shape 正文从响应外壳中的哪一处取得
	Shape string
	// Issues 已恢复的问题，可用 errors.Is 与 Err* 比较
	Issues []error
}

// Text 按顺序拼接全部分片
func (r *Result) Text() string {
	n := 0
	for _, c := range r.Chunks {
		n += len(c.Text)
	}
	b := make([]byte, 0, n)
	for _, c := range r.Chunks {
		b = append(b, c.Text...)
	}
	return string(b)
}
