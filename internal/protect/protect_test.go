package protect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverfjs/tutormark-go/internal/types"
)

// TestProtect_RoundTrip 任何输入保护后再还原都与原文逐字节一致
func TestProtect_RoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"plain text only",
		"Area $A = \\pi r^2$ costs $5 and $10.",
		"[MATH]x^2[/MATH] then $$\\int f$$ and \\[a\\] or \\(b\\)",
		"```python\nprice = $x$\n```\nand $y$",
		"```json\n{\"type\":\"quiz\"}\n```",
		"Text <b>bold</b> and <math><mi>x</mi></math>",
		"literal __MATH_PLACEHOLDER_0__ and $x$",
		"$<b>x</b>$ mixed",
		"unclosed ```go\nfmt.Println()\n",
	}
	for _, input := range inputs {
		set, protected := Protect(input)
		assert.Equal(t, input, set.Restore(protected), "input: %q", input)
	}
}

// TestProtect_Math 测试公式定界符识别
func TestProtect_Math(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		bodies  []string
		display []bool
	}{
		{"inline dollar", "Area $A = \\pi r^2$.", []string{"A = \\pi r^2"}, []bool{false}},
		{"math tag", "[MATH]x^2[/MATH]", []string{"x^2"}, []bool{true}},
		{"double dollar wins over single", "$$a$$", []string{"a"}, []bool{true}},
		{"brackets and parens", "\\(a+b\\) and \\[c\\]", []string{"a+b", "c"}, []bool{false, true}},
		{"currency amounts", "costs $5 and $10", nil, nil},
		{"currency body", "it is $5$ total", nil, nil},
		{"blank body", "a $ $ b", nil, nil},
		{"leading digit is not currency by itself", "I have $5 and you have $x$", []string{"5 and you have "}, []bool{false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, _ := Protect(tt.input)
			spans := set.Spans(types.KindMath)
			require.Len(t, spans, len(tt.bodies))
			for i, s := range spans {
				assert.Equal(t, tt.bodies[i], s.Body)
				assert.Equal(t, tt.display[i], s.Display)
				assert.Equal(t, s.Original, tt.input[s.Start:s.End])
			}
		})
	}
}

// TestProtect_Fences 围栏内容整体保护，内部的 $ 不识别为公式
func TestProtect_Fences(t *testing.T) {
	input := "```python\nprice = $x$\n```\nand $y$"
	set, protected := Protect(input)

	code := set.Spans(types.KindCode)
	require.Len(t, code, 1)
	assert.Equal(t, "```python\nprice = $x$\n```", code[0].Original)
	assert.Equal(t, "python", code[0].Lang)

	math := set.Spans(types.KindMath)
	require.Len(t, math, 1)
	assert.Equal(t, "$y$", math[0].Original)

	assert.Equal(t, code[0].Token+"\nand "+math[0].Token, protected)

	set, protected = Protect("```json\n{\"type\":\"quiz\"}\n```")
	blocks := set.Spans(types.KindInteractiveJSON)
	require.Len(t, blocks, 1)
	assert.Equal(t, "{\"type\":\"quiz\"}\n", blocks[0].Body)
	assert.Equal(t, "__JSON_PLACEHOLDER_0__", protected)
}

// TestProtect_Overlap 公式优先于 HTML
func TestProtect_Overlap(t *testing.T) {
	set, protected := Protect("$<b>x</b>$ mixed <i>y</i>")
	assert.Len(t, set.Spans(types.KindMath), 1)
	assert.Equal(t, "<b>x</b>", set.Spans(types.KindMath)[0].Body)

	html := set.Spans(types.KindHTML)
	require.Len(t, html, 2)
	assert.Equal(t, "<i>", html[0].Original)
	assert.Equal(t, "</i>", html[1].Original)
	assert.NotContains(t, protected, "<")

	set, _ = Protect("<math><mi>x</mi></math>")
	require.Len(t, set.All(), 1)
	assert.Equal(t, types.KindHTML, set.All()[0].Kind)
}

// TestProtect_Numbering 编号全局递增，并跳过原文中已存在的占位符
func TestProtect_Numbering(t *testing.T) {
	set, protected := Protect("$a$\n\n```\ncode\n```")
	tokens := []string{}
	for _, s := range set.All() {
		tokens = append(tokens, s.Token)
	}
	assert.Equal(t, []string{"__MATH_PLACEHOLDER_0__", "__CODE_PLACEHOLDER_1__"}, tokens)
	assert.Equal(t, 2, set.Len())
	assert.Contains(t, protected, "__CODE_PLACEHOLDER_1__")

	set, protected = Protect("literal __MATH_PLACEHOLDER_0__ and $x$")
	require.Equal(t, 1, set.Len())
	assert.Equal(t, "__MATH_PLACEHOLDER_1__", set.All()[0].Token)
	assert.Equal(t, "literal __MATH_PLACEHOLDER_0__ and __MATH_PLACEHOLDER_1__", protected)
}

// TestSet_Add 新增片段继续使用全局编号
func TestSet_Add(t *testing.T) {
	set, _ := Protect("$x$")
	token := set.Add(types.KindMath, "sin = y", `\sin\theta = y`, true)
	assert.Equal(t, "__MATH_PLACEHOLDER_1__", token)

	span, ok := set.Lookup(token)
	require.True(t, ok)
	assert.Equal(t, -1, span.Start)
	assert.True(t, span.Display)
	assert.Equal(t, "sin = y", set.Restore(token))

	_, ok = set.Lookup("__MATH_PLACEHOLDER_9__")
	assert.False(t, ok)
}

// TestSet_Restore 替换文本优先；重复或未知的占位符保持原样
func TestSet_Restore(t *testing.T) {
	set, protected := Protect("A $x$")
	token := set.All()[0].Token

	assert.Equal(t, "A $x$ "+token, set.Restore(protected+" "+token))
	assert.Equal(t, "__CODE_PLACEHOLDER_7__", set.Restore("__CODE_PLACEHOLDER_7__"))

	set.All()[0].Replacement = `<span class="math-inline">\(x\)</span>`
	assert.Equal(t, `A <span class="math-inline">\(x\)</span>`, set.Restore(protected))
}
