package parser

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// StandardOptions goldmark 扩展配置
var StandardOptions = []goldmark.Option{
	goldmark.WithExtensions(
		extension.GFM, // tables / strikethrough 等不影响围栏识别，但保持与常见渲染器一致
	),
}

// Fence 描述源文本中的一个围栏代码块
type Fence struct {
	Start  int    // 起始围栏行首（字节偏移）
	End    int    // 结束围栏行尾，不含换行
	Lang   string // info string 的第一个词
	Body   string // 代码内容
	Closed bool   // 是否找到结束围栏
}

// Text 返回围栏在源文本中的原文
func (f Fence) Text(source string) string {
	return source[f.Start:f.End]
}

var closingFenceRegex = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})[ \t]*$")

// ParseAST 仅解析为 AST，不遍历
func ParseAST(source []byte) ast.Node {
	md := goldmark.New(StandardOptions...)
	return md.Parser().Parse(text.NewReader(source))
}

// Fences 找出 markdown 中所有围栏代码块，按出现顺序返回
func Fences(markdown string) []Fence {
	source := []byte(markdown)
	doc := ParseAST(source)

	var fences []Fence
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		block, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if f, ok := fenceOf(block, source); ok {
			fences = append(fences, f)
		}
		return ast.WalkSkipChildren, nil
	})
	return fences
}

func fenceOf(block *ast.FencedCodeBlock, source []byte) (Fence, bool) {
	lines := block.Lines()

	// 定位起始围栏行
	var openStart int
	switch {
	case block.Info != nil:
		openStart = lineStart(source, block.Info.Segment.Start)
	case lines.Len() > 0:
		first := lineStart(source, lines.At(0).Start)
		if first == 0 {
			return Fence{}, false
		}
		openStart = lineStart(source, first-1)
	default:
		// 既无 info 也无内容的空围栏，没有需要保护的文本
		return Fence{}, false
	}

	var body strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		body.Write(seg.Value(source))
	}

	// 内容结束后的下一行若是结束围栏则纳入
	after := lineEnd(source, openStart) + 1
	if lines.Len() > 0 {
		last := lines.At(lines.Len() - 1)
		after = lineEnd(source, lineStart(source, last.Start)) + 1
	}
	f := Fence{
		Start: openStart,
		Lang:  string(block.Language(source)),
		Body:  body.String(),
	}
	if after <= len(source) {
		closeEnd := lineEnd(source, after)
		if closingFenceRegex.Match(source[after:closeEnd]) {
			f.End = closeEnd
			f.Closed = true
			return f, true
		}
	}
	f.End = after - 1
	if f.End > len(source) {
		f.End = len(source)
	}
	return f, true
}

// lineStart 返回 pos 所在行的行首偏移
func lineStart(source []byte, pos int) int {
	if pos > len(source) {
		pos = len(source)
	}
	for pos > 0 && source[pos-1] != '\n' {
		pos--
	}
	return pos
}

// lineEnd 返回 pos 所在行的行尾偏移（换行符位置或文本末尾）
func lineEnd(source []byte, pos int) int {
	for pos < len(source) && source[pos] != '\n' {
		pos++
	}
	return pos
}
