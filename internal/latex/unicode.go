package latex

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ToUnicode 把 TeX 近似转换成 Unicode 纯文本，用于替代文本和预览。
// 未知命令保留原文，任何异常都返回输入本身。
func ToUnicode(tex string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = tex
		}
	}()
	return strings.TrimSpace(collapseSpaces(plain(tex)))
}

// ──────────────────────────────────────────────
// 上下标与分数
// ──────────────────────────────────────────────

// mapAll 所有字符都可映射时返回映射结果，否则返回空字符串
func mapAll(text string, table map[rune]rune) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range text {
		m, ok := table[r]
		if !ok {
			return ""
		}
		b.WriteRune(m)
	}
	return b.String()
}

func superscript(text string) string {
	text = strings.TrimSpace(text)
	if s := mapAll(text, Superscripts); s != "" {
		return s
	}
	if len([]rune(text)) == 1 {
		return "^" + text
	}
	return "^(" + text + ")"
}

func subscript(text string) string {
	text = strings.TrimSpace(text)
	if s := mapAll(text, Subscripts); s != "" {
		return s
	}
	if len([]rune(text)) == 1 {
		return "_" + text
	}
	return "_(" + text + ")"
}

func fraction(num, den string) string {
	num, den = strings.TrimSpace(num), strings.TrimSpace(den)
	if f, ok := FracMap[[2]string{num, den}]; ok {
		return f
	}
	return group(num) + "/" + group(den)
}

// group 含运算符的表达式加括号
func group(text string) string {
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r) {
			return "(" + text + ")"
		}
	}
	return text
}

func accent(mark rune, text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return string(mark)
	}
	return string(runes[0]) + string(mark) + string(runes[1:])
}

func negate(sym string) string {
	sym = strings.TrimSpace(sym)
	if n, ok := NotMap[sym]; ok {
		return n
	}
	return accent('\u0338', sym)
}

// ──────────────────────────────────────────────
// 递归下降
// ──────────────────────────────────────────────

func plain(tex string) string {
	var b strings.Builder
	i := 0
	for i < len(tex) {
		switch c := tex[i]; {
		case c == '\\':
			name, next := readCommand(tex, i)
			text, end := command(`\`+name, tex, next)
			b.WriteString(text)
			i = end
		case c == '{':
			text, end := argument(tex, i)
			b.WriteString(text)
			i = end
		case c == '^' || c == '_':
			text, end := argument(tex, i+1)
			if c == '^' {
				b.WriteString(superscript(text))
			} else {
				b.WriteString(subscript(text))
			}
			i = end
		case c == '~':
			b.WriteByte(' ')
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// argument 读取一个 {…} 参数或单个记号
func argument(tex string, start int) (string, int) {
	for start < len(tex) && tex[start] == ' ' {
		start++
	}
	if start >= len(tex) {
		return "", start
	}
	switch tex[start] {
	case '{':
		inner, end := verbatim(tex, start)
		return plain(inner), end
	case '\\':
		name, next := readCommand(tex, start)
		return command(`\`+name, tex, next)
	default:
		_, size := utf8.DecodeRuneInString(tex[start:])
		return tex[start : start+size], start + size
	}
}

// verbatim 读取 {…} 参数原文
func verbatim(tex string, start int) (string, int) {
	if start >= len(tex) || tex[start] != '{' {
		return "", start
	}
	end := groupEnd(tex, start)
	if end-1 > start && tex[end-1] == '}' {
		return tex[start+1 : end-1], end
	}
	return tex[start+1 : end], end
}

func command(cmd, tex string, i int) (string, int) {
	if sym, ok := Symbols[cmd]; ok {
		if _, isFunc := Functions[cmd[1:]]; isFunc {
			return sym + " ", i
		}
		return sym, i
	}
	if mark, ok := Accents[cmd]; ok {
		arg, end := argument(tex, i)
		return accent(mark, arg), end
	}

	switch cmd {
	case `\frac`, `\dfrac`, `\tfrac`:
		num, mid := argument(tex, i)
		den, end := argument(tex, mid)
		return fraction(num, den), end
	case `\sqrt`:
		index := ""
		if i < len(tex) && tex[i] == '[' {
			close := strings.IndexByte(tex[i:], ']')
			if close > 0 {
				index = plain(tex[i+1 : i+close])
				i += close + 1
			}
		}
		arg, end := argument(tex, i)
		root := "√"
		switch index {
		case "", "2":
		case "3":
			root = "∛"
		case "4":
			root = "∜"
		default:
			root = superscript(index) + "√"
		}
		return root + group(arg), end
	case `\text`, `\mathrm`, `\operatorname`, `\textrm`, `\mbox`:
		return verbatim(tex, i)
	case `\mathbb`:
		arg, end := verbatim(tex, i)
		var b strings.Builder
		for _, r := range arg {
			if m, ok := Blackboard[r]; ok {
				b.WriteRune(m)
			} else {
				b.WriteRune(r)
			}
		}
		return b.String(), end
	case `\mathcal`, `\mathfrak`, `\mathbf`, `\mathit`, `\boldsymbol`:
		return argument(tex, i)
	case `\not`:
		arg, end := argument(tex, i)
		return negate(arg), end
	case `\left`, `\right`:
		if i >= len(tex) {
			return "", i
		}
		if tex[i] == '.' {
			return "", i + 1
		}
		return argument(tex, i)
	case `\binom`:
		n, mid := argument(tex, i)
		k, end := argument(tex, mid)
		return "C(" + n + "," + k + ")", end
	case `\boxed`:
		arg, end := argument(tex, i)
		return "[" + arg + "]", end
	case `\color`:
		_, end := verbatim(tex, i)
		return "", end
	case `\begin`, `\end`:
		_, end := verbatim(tex, i)
		return "", end
	}
	// 未知命令保留原文
	return cmd, i
}

func collapseSpaces(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '\t' }), " ")
}
