// Package converter 把占位后的文本中的类 markdown 指令转换成 HTML 标记。
//
// 规则按固定顺序执行：标题 → 列表 → 强调 → 提示块 → 表格 → 化学式 → 段落。
// 占位符在转换期间被遮蔽，任何规则都不会改动它们；同一输入转换两次结果不变。
package converter

import (
	"regexp"
	"strconv"

	"github.com/riverfjs/tutormark-go/internal/types"
)

// Transformer 结构转换器，只持有只读配置，可并发使用
type Transformer struct {
	cfg   *types.RenderConfig
	rules []emphasisRule

	// BlockToken 判断占位符是否代表块级内容（代码块、块级公式等）；
	// 为 nil 时所有占位符都视为块级
	BlockToken func(token string) bool
}

// New 创建转换器，cfg 为 nil 时使用默认样式
func New(cfg *types.RenderConfig) *Transformer {
	if cfg == nil {
		cfg = types.DefaultRenderConfig()
	}
	t := &Transformer{cfg: cfg}
	t.rules = t.emphasisRules()
	return t
}

// WithBlockToken 返回使用 fn 判断块级占位符的副本，规则共享
func (t *Transformer) WithBlockToken(fn func(token string) bool) *Transformer {
	c := *t
	c.BlockToken = fn
	return &c
}

// ──────────────────────────────────────────────
// 占位符遮蔽
// ──────────────────────────────────────────────

const (
	maskOpen  = "\uE000"
	maskClose = "\uE001"
)

var maskRegex = regexp.MustCompile(`\x{E000}(\d+)\x{E001}`)

// masked 一次转换中被遮蔽的占位符
type masked struct {
	tokens []string
	block  func(string) bool
}

func (m *masked) hide(text string) string {
	return types.PlaceholderRegex.ReplaceAllStringFunc(text, func(token string) string {
		m.tokens = append(m.tokens, token)
		return maskOpen + strconv.Itoa(len(m.tokens)-1) + maskClose
	})
}

func (m *masked) reveal(text string) string {
	return maskRegex.ReplaceAllStringFunc(text, func(s string) string {
		n, err := strconv.Atoi(s[len(maskOpen) : len(s)-len(maskClose)])
		if err != nil || n >= len(m.tokens) {
			return s
		}
		return m.tokens[n]
	})
}

// isBlock 遮蔽串是否代表块级占位符
func (m *masked) isBlock(mask string) bool {
	if m.block == nil {
		return true
	}
	sub := maskRegex.FindStringSubmatch(mask)
	if sub == nil {
		return false
	}
	n, err := strconv.Atoi(sub[1])
	if err != nil || n >= len(m.tokens) {
		return false
	}
	return m.block(m.tokens[n])
}

// Transform 依次执行全部结构规则
func (t *Transformer) Transform(text string) string {
	m := &masked{block: t.BlockToken}
	text = m.hide(text)

	text = t.headings(text)
	text = t.lists(text)
	text = t.emphasis(text)
	text = t.notes(text)
	text = t.tables(text)
	text = t.chemistry(text)
	text = t.paragraphs(text, m)

	return m.reveal(text)
}

// ──────────────────────────────────────────────
// 标题
// ──────────────────────────────────────────────

var headingRegex = regexp.MustCompile(`(?m)^(#{1,3})[ \t]+(.+?)[ \t]*$`)

func (t *Transformer) headings(text string) string {
	return headingRegex.ReplaceAllStringFunc(text, func(line string) string {
		sub := headingRegex.FindStringSubmatch(line)
		level := len(sub[1])
		tag := "h" + strconv.Itoa(level)
		return `<` + tag + ` class="` + t.cfg.HeadingClass[level-1] + `">` + sub[2] + `</` + tag + `>`
	})
}

// ──────────────────────────────────────────────
// 强调
// ──────────────────────────────────────────────

type emphasisRule struct {
	re   *regexp.Regexp
	open string
	shut string
	// lead 为 true 时第一个分组是定界符前的字符，需要原样保留
	lead bool
}

// 双字符定界：内容首尾非空白；单字符定界：内容不含定界符
func doubleDelim(d string) *regexp.Regexp {
	q := regexp.QuoteMeta(d)
	return regexp.MustCompile(q + `(\S|\S[^\n]*?\S)` + q)
}

func singleDelim(d string) *regexp.Regexp {
	q := regexp.QuoteMeta(d)
	return regexp.MustCompile(q + `([^\s` + q + `]|[^\s` + q + `][^\n` + q + `]*?[^\s` + q + `])` + q)
}

var (
	// @green@ 的开始符前不能是单词字符，避免吞掉邮箱地址
	greenRegex = regexp.MustCompile(`(^|[^\w@])@([^\s@]|[^\s@][^\n@]*?[^\s@])@`)
	supRegex   = regexp.MustCompile(`\^([^\s^]+)\^`)
	subRegex   = regexp.MustCompile(`~([^\s~]+)~`)
)

func (t *Transformer) emphasisRules() []emphasisRule {
	c := t.cfg
	mark := func(re *regexp.Regexp, color string) emphasisRule {
		return emphasisRule{re: re, open: `<mark class="` + c.Highlight[color] + `">`, shut: `</mark>`}
	}
	green := mark(greenRegex, "green")
	green.lead = true
	return []emphasisRule{
		{re: doubleDelim("**"), open: `<strong class="` + c.Bold + `">`, shut: `</strong>`},
		{re: singleDelim("*"), open: `<em class="` + c.Italic + `">`, shut: `</em>`},
		mark(doubleDelim("=="), "yellow"),
		mark(doubleDelim("^^"), "blue"),
		mark(doubleDelim("!!"), "red"),
		green,
		mark(doubleDelim("++"), "purple"),
		{re: doubleDelim("__"), open: `<span class="` + c.Underline + `">`, shut: `</span>`},
		{re: doubleDelim("~~"), open: `<span class="` + c.Strike + `">`, shut: `</span>`},
		{re: supRegex, open: `<sup>`, shut: `</sup>`},
		{re: subRegex, open: `<sub>`, shut: `</sub>`},
	}
}

// emphasis 强调类标记，匹配不跨行、内容非空
func (t *Transformer) emphasis(text string) string {
	for _, rule := range t.rules {
		rule := rule
		text = rule.re.ReplaceAllStringFunc(text, func(match string) string {
			sub := rule.re.FindStringSubmatch(match)
			if rule.lead {
				return sub[1] + rule.open + sub[2] + rule.shut
			}
			return rule.open + sub[1] + rule.shut
		})
	}
	return text
}
