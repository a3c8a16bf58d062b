package latex

import (
	"errors"
	"regexp"
	"strings"
)

// ErrAmbiguous 公式无法可靠修复（例如括号不配对），原文保持不变
var ErrAmbiguous = errors.New("latex: ambiguous expression left unchanged")

// ──────────────────────────────────────────────
// 查找表
// ──────────────────────────────────────────────

// Functions 缺少反斜杠时需要补齐的函数名
var Functions = map[string]bool{
	"sin": true, "cos": true, "tan": true, "log": true, "ln": true,
	"lim": true, "max": true, "min": true, "sup": true, "inf": true,
	"det": true, "gcd": true, "lcm": true,
}

// Operators 常见的裸写运算符名
var Operators = map[string]bool{
	"sum": true, "prod": true, "infty": true, "partial": true,
	"nabla": true, "cdot": true, "times": true, "pm": true,
}

// Greek 希腊字母名；大写只收录 LaTeX 定义过的
var Greek = map[string]bool{
	"alpha": true, "beta": true, "gamma": true, "delta": true, "epsilon": true,
	"zeta": true, "eta": true, "theta": true, "iota": true, "kappa": true,
	"lambda": true, "mu": true, "nu": true, "xi": true, "pi": true,
	"rho": true, "sigma": true, "tau": true, "upsilon": true, "phi": true,
	"chi": true, "psi": true, "omega": true,
	"Gamma": true, "Delta": true, "Theta": true, "Lambda": true, "Xi": true,
	"Pi": true, "Sigma": true, "Upsilon": true, "Phi": true, "Psi": true,
	"Omega": true,
}

// BraceCommands 后面紧跟 { 时需要补反斜杠的命令
var BraceCommands = []string{"frac", "sqrt", "text", "mathbb", "mathcal", "mathfrak", "mathrm"}

// 参数按原样保留、不做修复的文本命令
var textCommands = map[string]bool{"text": true, "mathrm": true, "operatorname": true}

// CurrencyPatterns 判断 $...$ 内容是金额而不是公式，可追加
var CurrencyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*\d+([,.]\d+)?\s*$`),
}

// IsCurrency 内容是否匹配任一金额模式
func IsCurrency(body string) bool {
	for _, re := range CurrencyPatterns {
		if re.MatchString(body) {
			return true
		}
	}
	return false
}

// Idiom 一条纯文本三角恒等式到 LaTeX 的改写
type Idiom struct {
	Pattern *regexp.Regexp
	TeX     string
}

// Idioms 已知的纯文本三角恒等式，按顺序匹配，可追加
var Idioms = []Idiom{
	{regexp.MustCompile(`(?i)sin\(θ\)\s*=\s*opposite\s*/\s*hypotenuse`), `\sin(\theta) = \frac{\text{opposite}}{\text{hypotenuse}}`},
	{regexp.MustCompile(`(?i)cos\(θ\)\s*=\s*adjacent\s*/\s*hypotenuse`), `\cos(\theta) = \frac{\text{adjacent}}{\text{hypotenuse}}`},
	{regexp.MustCompile(`(?i)tan\(θ\)\s*=\s*opposite\s*/\s*adjacent`), `\tan(\theta) = \frac{\text{opposite}}{\text{adjacent}}`},
	{regexp.MustCompile(`(?i)sin\(30°\)\s*=\s*1\s*/\s*2`), `\sin(30^\circ) = \frac{1}{2}`},
	{regexp.MustCompile(`(?i)sin\(45°\)\s*=\s*1\s*/\s*(?:√2|sqrt\(2\))`), `\sin(45^\circ) = \frac{1}{\sqrt{2}}`},
	{regexp.MustCompile(`(?i)tan\(θ\)\s*=\s*y\s*/\s*x`), `\tan(\theta) = \frac{y}{x}`},
	{regexp.MustCompile(`(?i)sin\(θ\)\s*=\s*y`), `\sin(\theta) = y`},
	{regexp.MustCompile(`(?i)cos\(θ\)\s*=\s*x`), `\cos(\theta) = x`},
}

// ConvertIdioms 把文本中的已知恒等式交给 emit 生成块级公式，用 emit 的返回值替换原文
func ConvertIdioms(text string, emit func(original, tex string) string) string {
	for _, idiom := range Idioms {
		tex := idiom.TeX
		text = idiom.Pattern.ReplaceAllStringFunc(text, func(m string) string {
			return emit(m, tex)
		})
	}
	return text
}

// ──────────────────────────────────────────────
// 修复
// ──────────────────────────────────────────────

// Repair 补齐缺失的反斜杠和上下标括号；结果再次修复不会改变
func Repair(tex string) (string, error) {
	if !balanced(tex) {
		return tex, ErrAmbiguous
	}
	var out strings.Builder
	out.Grow(len(tex) + 8)
	i := 0
	for i < len(tex) {
		ch := tex[i]
		switch {
		case ch == '\\':
			name, next := readCommand(tex, i)
			out.WriteString(tex[i:next])
			i = next
			if textCommands[name] && i < len(tex) && tex[i] == '{' {
				end := groupEnd(tex, i)
				out.WriteString(tex[i:end])
				i = end
			}

		case isLetter(ch):
			start := i
			for i < len(tex) && isLetter(tex[i]) {
				i++
			}
			i = repairWord(&out, tex, tex[start:i], i)

		case ch == '_' || ch == '^':
			out.WriteByte(ch)
			i++
			if i < len(tex) && isAlnum(tex[i]) {
				out.WriteByte('{')
				out.WriteByte(tex[i])
				out.WriteByte('}')
				i++
			}

		default:
			out.WriteByte(ch)
			i++
		}
	}
	return out.String(), nil
}

// repairWord 处理一段不以反斜杠开头的字母串，返回新的读取位置
func repairWord(out *strings.Builder, tex, word string, next int) int {
	braced := next < len(tex) && tex[next] == '{'
	if braced {
		for _, cmd := range BraceCommands {
			if !strings.HasSuffix(word, cmd) {
				continue
			}
			out.WriteString(word[:len(word)-len(cmd)])
			out.WriteByte('\\')
			out.WriteString(cmd)
			if textCommands[cmd] {
				end := groupEnd(tex, next)
				out.WriteString(tex[next:end])
				return end
			}
			return next
		}
	}
	if Functions[word] || Operators[word] || Greek[word] {
		out.WriteByte('\\')
	}
	out.WriteString(word)
	return next
}

// readCommand 读取 \name 或 \x，返回命令名和结束位置
func readCommand(tex string, start int) (string, int) {
	i := start + 1
	if i >= len(tex) {
		return "", i
	}
	if !isLetter(tex[i]) {
		return tex[i : i+1], i + 1
	}
	for i < len(tex) && isLetter(tex[i]) {
		i++
	}
	return tex[start+1 : i], i
}

// groupEnd 返回从 start 处 { 开始的配对 } 之后的位置
func groupEnd(tex string, start int) int {
	level := 0
	for i := start; i < len(tex); i++ {
		switch tex[i] {
		case '\\':
			i++
		case '{':
			level++
		case '}':
			level--
			if level == 0 {
				return i + 1
			}
		}
	}
	return len(tex)
}

// balanced 检查未转义的花括号是否配对
func balanced(tex string) bool {
	level := 0
	for i := 0; i < len(tex); i++ {
		switch tex[i] {
		case '\\':
			i++
		case '{':
			level++
		case '}':
			level--
			if level < 0 {
				return false
			}
		}
	}
	return level == 0
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9')
}

// ──────────────────────────────────────────────
// 输出标记
// ──────────────────────────────────────────────

var markupEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Markup 生成供渲染器识别的公式标记
func Markup(tex string, display bool, inlineClass, blockClass string) string {
	tex = markupEscaper.Replace(strings.TrimSpace(tex))
	if display {
		return `<div class="` + blockClass + `">\[` + tex + `\]</div>`
	}
	return `<span class="` + inlineClass + `">\(` + tex + `\)</span>`
}
