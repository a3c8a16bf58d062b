package types

import (
	"fmt"
	"regexp"
)

// Kind 受保护片段的类型
type Kind int

const (
	KindMath Kind = iota
	KindCode
	KindInteractiveJSON
	KindHTML
)

// String returns the token label used inside placeholders.
func (k Kind) String() string {
	switch k {
	case KindMath:
		return "MATH"
	case KindCode:
		return "CODE"
	case KindInteractiveJSON:
		return "JSON"
	case KindHTML:
		return "HTML"
	default:
		return "UNKNOWN"
	}
}

// PlaceholderRegex 匹配任意占位符 token
var PlaceholderRegex = regexp.MustCompile(`__(?:MATH|CODE|JSON|HTML)_PLACEHOLDER_\d+__`)

// Token 生成占位符，例如 __MATH_PLACEHOLDER_3__
func Token(kind Kind, n int) string {
	return fmt.Sprintf("__%s_PLACEHOLDER_%d__", kind, n)
}

// ──────────────────────────────────────────────
// 渲染样式表
// ──────────────────────────────────────────────

// Note 定义提示块的图标、标题与配色
type Note struct {
	Icon  string
	Title string
	Color string
}

// RenderConfig 渲染配置
type RenderConfig struct {
	// HeadingClass[0] 对应 h1
	HeadingClass [3]string
	Bold         string
	Italic       string
	Underline    string
	Strike       string
	// Highlight 颜色名 -> class
	Highlight  map[string]string
	Notes      map[string]Note
	TableClass string
	ChemClass  string
	HeatClass  string
	MathInline string
	MathBlock  string
	// CodeBlock 代码块 <pre> 的基础 class，语言名追加在其后
	CodeBlock string
}

// DefaultNotes 返回提示块默认配置
func DefaultNotes() map[string]Note {
	return map[string]Note{
		"important":  {Icon: "🔑", Title: "Key Concept", Color: "bg-purple-50 dark:bg-purple-900/30"},
		"tip":        {Icon: "💡", Title: "Helpful Tip", Color: "bg-blue-50 dark:bg-blue-900/30"},
		"example":    {Icon: "📝", Title: "Example", Color: "bg-green-50 dark:bg-green-900/30"},
		"warning":    {Icon: "⚠️", Title: "Warning", Color: "bg-amber-50 dark:bg-amber-900/30"},
		"steps":      {Icon: "📋", Title: "Step-by-Step", Color: "bg-indigo-50 dark:bg-indigo-900/30"},
		"definition": {Icon: "📚", Title: "Definition", Color: "bg-gray-50 dark:bg-gray-800/50"},
	}
}

// DefaultRenderConfig 返回默认渲染配置
func DefaultRenderConfig() *RenderConfig {
	return &RenderConfig{
		HeadingClass: [3]string{
			"text-2xl font-bold text-gray-900 dark:text-white my-5",
			"text-xl font-semibold text-gray-900 dark:text-white my-4",
			"text-lg font-semibold text-gray-900 dark:text-white my-3",
		},
		Bold:      "font-semibold text-gray-900 dark:text-white",
		Italic:    "italic",
		Underline: "border-b-2 border-blue-400 dark:border-blue-500",
		Strike:    "line-through",
		Highlight: map[string]string{
			"yellow": "highlight yellow",
			"blue":   "highlight blue",
			"red":    "highlight red",
			"green":  "highlight green",
			"purple": "highlight purple",
		},
		Notes:      DefaultNotes(),
		TableClass: "math-table",
		ChemClass:  "chemical-equation",
		HeatClass:  "text-red-600 dark:text-red-400",
		MathInline: "math-inline",
		MathBlock:  "math-block",
		CodeBlock:  "code-block",
	}
}
