// Package tutormark 把辅导后端返回的自由文本转换为可渲染的 HTML 标记，并按片段逐步交付
//
// 后端的响应外壳不固定，正文中混有类 markdown 指令、LaTeX 公式、代码块和
// ```json 交互块。这个包负责：
//   - 从各种响应外壳中取出正文
//   - 用占位符保护公式、代码、交互块和原有 HTML，避免被文本规则改动
//   - 修复常见的 LaTeX 书写错误，并把纯文本三角恒等式转为公式
//   - 转换标题、列表、强调、提示块、表格和化学方程式
//   - 校验交互块并输出 [QUIZ]{...}[/QUIZ] 等哨兵包装
//   - 切分为不会拆开公式或交互块的有序片段
//
// 主要 API：
//   - Convert(): 同步转换，返回完整标记
//   - New().Process(): 返回包含分片、交互块和公式元数据的 Result
//   - New().Stream(): 按顺序、带间隔地把分片交给回调
//
// 示例：
//
//	// 简单转换
//	markup := tutormark.Convert(`{"body":"{\"response\":\"# Hi\"}"}`)
//
//	// 逐片输出
//	p := tutormark.New(tutormark.WithChunkDelay(50 * time.Millisecond))
//	_, err := p.Stream(ctx, raw, func(c tutormark.Chunk) error {
//	    fmt.Print(c.Text)
//	    return nil
//	})
package tutormark

// Convert 处理一个原始响应并返回完整标记；内容为空时返回致歉消息
func Convert(raw any, opts ...Option) string {
	return New(opts...).Process(raw).Markup
}
