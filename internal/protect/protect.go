// Package protect 把不允许被后续文本规则改动的片段替换成占位符，最后再原样还原。
package protect

import (
	"regexp"
	"sort"
	"strings"

	"github.com/riverfjs/tutormark-go/internal/latex"
	"github.com/riverfjs/tutormark-go/internal/parser"
	"github.com/riverfjs/tutormark-go/internal/types"
)

// Span 受保护片段
type Span struct {
	Kind     types.Kind
	Token    string
	Original string // 原文，逐字节还原
	Body     string // 数学公式去掉定界符后的 TeX / 代码块内容
	Lang     string
	Display  bool // 块级公式
	Start    int  // 在原始内容中的字节区间；Add 注册的片段为 -1
	End      int

	// Replacement 非空时还原为该文本（渲染后的公式、交互块标记等）
	Replacement string
}

// Restored 返回还原时使用的文本
func (s *Span) Restored() string {
	if s.Replacement != "" {
		return s.Replacement
	}
	return s.Original
}

// Set 一次处理过程中的全部占位符映射
type Set struct {
	spans   []*Span
	byToken map[string]*Span
	source  string
	next    int
}

// ──────────────────────────────────────────────
// 候选匹配
// ──────────────────────────────────────────────

type mathPattern struct {
	re      *regexp.Regexp
	display bool
	inline  bool // 单个 $ 定界，需要做货币判断
}

// 优先级从高到低
var mathPatterns = []mathPattern{
	{re: regexp.MustCompile(`(?s)\[MATH\](.*?)\[/MATH\]`), display: true},
	{re: regexp.MustCompile(`(?s)\$\$(.+?)\$\$`), display: true},
	{re: regexp.MustCompile(`(?s)\\\[(.+?)\\\]`), display: true},
	{re: regexp.MustCompile(`(?s)\\\((.+?)\\\)`)},
	{re: regexp.MustCompile(`\$([^$\n]+?)\$`), inline: true},
}

var (
	mathMLRegex  = regexp.MustCompile(`(?is)<math\b[^>]*>.*?</math>`)
	htmlTagRegex = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9-]*(?:\s+[^<>]*?)?\s*/?>`)
)

const (
	priorityMath = iota
	priorityCode
	priorityHTML
)

type candidate struct {
	start, end int
	priority   int
	order      int // 同一优先级内的模式顺序
	kind       types.Kind
	body       string
	lang       string
	display    bool
}

func (c candidate) overlaps(o candidate) bool {
	return c.start < o.end && o.start < c.end
}

// Protect 扫描内容，返回占位符映射和替换后的文本
func Protect(content string) (*Set, string) {
	set := &Set{byToken: make(map[string]*Span), source: content}

	fences := fenceCandidates(content)
	var cands []candidate
	cands = append(cands, mathCandidates(content, fences)...)
	cands = append(cands, fences...)
	cands = append(cands, htmlCandidates(content)...)

	// 按 math > code > html 的优先级解决重叠
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].priority != cands[j].priority {
			return cands[i].priority < cands[j].priority
		}
		if cands[i].order != cands[j].order {
			return cands[i].order < cands[j].order
		}
		return cands[i].start < cands[j].start
	})
	var accepted []candidate
	for _, c := range cands {
		clash := false
		for _, a := range accepted {
			if c.overlaps(a) {
				clash = true
				break
			}
		}
		if !clash {
			accepted = append(accepted, c)
		}
	}
	sort.Slice(accepted, func(i, j int) bool { return accepted[i].start < accepted[j].start })

	var out strings.Builder
	last := 0
	for _, c := range accepted {
		span := &Span{
			Kind:     c.kind,
			Original: content[c.start:c.end],
			Body:     c.body,
			Lang:     c.lang,
			Display:  c.display,
			Start:    c.start,
			End:      c.end,
		}
		set.register(span)
		out.WriteString(content[last:c.start])
		out.WriteString(span.Token)
		last = c.end
	}
	out.WriteString(content[last:])
	return set, out.String()
}

func fenceCandidates(content string) []candidate {
	var cands []candidate
	for _, f := range parser.Fences(content) {
		kind := types.KindCode
		if strings.EqualFold(f.Lang, "json") {
			kind = types.KindInteractiveJSON
		}
		cands = append(cands, candidate{
			start:    f.Start,
			end:      f.End,
			priority: priorityCode,
			kind:     kind,
			body:     f.Body,
			lang:     f.Lang,
		})
	}
	return cands
}

func mathCandidates(content string, fences []candidate) []candidate {
	var cands []candidate
	for order, p := range mathPatterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(content, -1) {
			c := candidate{
				start:    m[0],
				end:      m[1],
				priority: priorityMath,
				order:    order,
				kind:     types.KindMath,
				body:     content[m[2]:m[3]],
				display:  p.display,
			}
			if p.inline && !inlineMath(content, c) {
				continue
			}
			// 围栏内的内容不参与公式识别
			inFence := false
			for _, f := range fences {
				if c.overlaps(f) {
					inFence = true
					break
				}
			}
			if !inFence {
				cands = append(cands, c)
			}
		}
	}
	return cands
}

// inlineMath 判断单个 $ 包裹的内容是否是公式
func inlineMath(content string, c candidate) bool {
	if latex.IsCurrency(c.body) {
		return false
	}
	// "$5 and $10" 这类金额：结束符后紧跟数字
	if c.end < len(content) && content[c.end] >= '0' && content[c.end] <= '9' {
		return false
	}
	return strings.TrimSpace(c.body) != ""
}

func htmlCandidates(content string) []candidate {
	var cands []candidate
	for order, re := range []*regexp.Regexp{mathMLRegex, htmlTagRegex} {
		for _, m := range re.FindAllStringIndex(content, -1) {
			cands = append(cands, candidate{
				start:    m[0],
				end:      m[1],
				priority: priorityHTML,
				order:    order,
				kind:     types.KindHTML,
			})
		}
	}
	return cands
}

// ──────────────────────────────────────────────
// 注册与还原
// ──────────────────────────────────────────────

// register 分配下一个不与原文冲突的编号
func (s *Set) register(span *Span) {
	for {
		token := types.Token(span.Kind, s.next)
		s.next++
		if _, taken := s.byToken[token]; taken || strings.Contains(s.source, token) {
			continue
		}
		span.Token = token
		break
	}
	s.spans = append(s.spans, span)
	s.byToken[span.Token] = span
}

// Add 注册一个不来自原文的新片段（例如由文字习语转换出的公式），返回其占位符
func (s *Set) Add(kind types.Kind, original, body string, display bool) string {
	span := &Span{
		Kind:     kind,
		Original: original,
		Body:     body,
		Display:  display,
		Start:    -1,
		End:      -1,
	}
	s.register(span)
	return span.Token
}

// Spans 返回指定类型的片段，按注册顺序
func (s *Set) Spans(kind types.Kind) []*Span {
	var result []*Span
	for _, span := range s.spans {
		if span.Kind == kind {
			result = append(result, span)
		}
	}
	return result
}

// All 返回全部片段
func (s *Set) All() []*Span {
	return s.spans
}

// Len 返回片段数量
func (s *Set) Len() int {
	return len(s.spans)
}

// Lookup 按占位符查找
func (s *Set) Lookup(token string) (*Span, bool) {
	span, ok := s.byToken[token]
	return span, ok
}

// Restore 单次扫描还原占位符；每个占位符最多还原一次，未知的占位符保持原样
func (s *Set) Restore(text string) string {
	used := make(map[string]bool, len(s.spans))
	return types.PlaceholderRegex.ReplaceAllStringFunc(text, func(token string) string {
		span, ok := s.byToken[token]
		if !ok || used[token] {
			return token
		}
		used[token] = true
		return span.Restored()
	})
}
