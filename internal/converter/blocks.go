package converter

import (
	"regexp"
	"strconv"
	"strings"
)

// ──────────────────────────────────────────────
// 列表
// ──────────────────────────────────────────────

var (
	bulletRegex  = regexp.MustCompile(`^[ \t]*[-*][ \t]+(.+?)[ \t]*$`)
	orderedRegex = regexp.MustCompile(`^[ \t]*(\d+)\.[ \t]+(.+?)[ \t]*$`)
)

type listKind int

const (
	listNone listKind = iota
	listBullet
	listOrdered
)

func classifyItem(line string) (listKind, string, int) {
	if sub := bulletRegex.FindStringSubmatch(line); sub != nil {
		return listBullet, sub[1], 0
	}
	if sub := orderedRegex.FindStringSubmatch(line); sub != nil {
		n, _ := strconv.Atoi(sub[1])
		return listOrdered, sub[2], n
	}
	return listNone, "", 0
}

// lists 连续的列表项合并为一个列表，仅隔空行的同类列表也合并；每个列表输出为一行
func (t *Transformer) lists(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	var (
		kind    listKind
		items   []string
		start   int
		pending int // 列表项之间暂存的空行数
	)
	flush := func() {
		if kind == listNone {
			return
		}
		var b strings.Builder
		if kind == listBullet {
			b.WriteString("<ul>")
		} else if start > 1 {
			b.WriteString(`<ol start="` + strconv.Itoa(start) + `">`)
		} else {
			b.WriteString("<ol>")
		}
		for _, item := range items {
			b.WriteString("<li>" + item + "</li>")
		}
		if kind == listBullet {
			b.WriteString("</ul>")
		} else {
			b.WriteString("</ol>")
		}
		out = append(out, b.String())
		for ; pending > 0; pending-- {
			out = append(out, "")
		}
		kind, items = listNone, nil
	}

	for _, line := range lines {
		k, item, n := classifyItem(line)
		switch {
		case k != listNone && k == kind:
			items = append(items, item)
			pending = 0
		case k != listNone:
			flush()
			kind, items, start = k, []string{item}, n
		case kind != listNone && strings.TrimSpace(line) == "":
			pending++
		default:
			flush()
			out = append(out, line)
		}
	}
	flush()
	return strings.Join(out, "\n")
}

// ──────────────────────────────────────────────
// 提示块
// ──────────────────────────────────────────────

var (
	noteRegex     = regexp.MustCompile(`(?s):::([a-zA-Z]+)(.*?):::`)
	keyPointRegex = regexp.MustCompile(`(?m)^[ \t]*Key Point:[ \t]*(\S.*?)[ \t]*$`)
)

func (t *Transformer) notes(text string) string {
	text = noteRegex.ReplaceAllStringFunc(text, func(match string) string {
		sub := noteRegex.FindStringSubmatch(match)
		kind := strings.ToLower(sub[1])
		if _, ok := t.cfg.Notes[kind]; !ok {
			return match
		}
		return t.note(kind, "", sub[2])
	})
	return keyPointRegex.ReplaceAllStringFunc(text, func(match string) string {
		sub := keyPointRegex.FindStringSubmatch(match)
		return t.note("important", "Key Point", sub[1])
	})
}

// note 渲染单行提示块，内部换行转为 <br>
func (t *Transformer) note(kind, title, content string) string {
	n := t.cfg.Notes[kind]
	if title == "" {
		title = n.Title
	}
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return `<div class="note-block ` + kind + ` ` + n.Color + `">` +
		`<div class="note-block-header text-gray-800 dark:text-gray-200">` +
		`<span class="text-xl">` + n.Icon + `</span><span>` + title + `</span></div>` +
		`<div class="note-block-content text-gray-700 dark:text-gray-300">` + strings.Join(lines, "<br>") + `</div></div>`
}

// ──────────────────────────────────────────────
// 表格
// ──────────────────────────────────────────────

var (
	tableRegex     = regexp.MustCompile(`(?s)\[TABLE\](.*?)\[/TABLE\]`)
	separatorRegex = regexp.MustCompile(`^[\s|:]*-[\s|:-]*$`)
)

func splitCells(line string) []string {
	var cells []string
	for _, c := range strings.Split(line, "|") {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

func (t *Transformer) tables(text string) string {
	return tableRegex.ReplaceAllStringFunc(text, func(match string) string {
		body := tableRegex.FindStringSubmatch(match)[1]
		var lines []string
		for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
			if strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) == 0 {
			return `<div class="math-error">Invalid table format</div>`
		}

		var b strings.Builder
		b.WriteString(`<table class="` + t.cfg.TableClass + `">`)
		if len(lines) > 1 && separatorRegex.MatchString(lines[1]) {
			b.WriteString("<thead><tr>")
			for _, cell := range splitCells(lines[0]) {
				b.WriteString("<th>" + cell + "</th>")
			}
			b.WriteString("</tr></thead>")
			lines = lines[2:]
		}
		b.WriteString("<tbody>")
		for _, line := range lines {
			cells := splitCells(line)
			if len(cells) == 0 {
				continue
			}
			b.WriteString("<tr>")
			for _, cell := range cells {
				b.WriteString("<td>" + cell + "</td>")
			}
			b.WriteString("</tr>")
		}
		b.WriteString("</tbody></table>")
		return b.String()
	})
}

// ──────────────────────────────────────────────
// 化学方程式
// ──────────────────────────────────────────────

var (
	chemRegex  = regexp.MustCompile(`(?s)\[CHEM\](.*?)\[/CHEM\]`)
	arrowRegex = regexp.MustCompile(`<?->|→|⟶|⇒|⇌|⇋|⇄|⇆`)
	stateRegex = regexp.MustCompile(`^(.*?)\((g|l|s|aq)\)$`)
	heatRegex  = regexp.MustCompile(`(?i)^(Δ|heat|catalyst|cat\.|\d+°C)$`)
	// SO4^2- 显式上标；Fe3+、Cl- 隐式电荷
	explicitCharge = regexp.MustCompile(`^(.+?)\^(\d*[+-])$`)
	implicitCharge = regexp.MustCompile(`^(.*?[A-Za-z)\]])(\d*[+-])$`)
	elementCount   = regexp.MustCompile(`([A-Za-z)\]])(\d+)`)
)

func (t *Transformer) chemistry(text string) string {
	return chemRegex.ReplaceAllStringFunc(text, func(match string) string {
		eq := chemRegex.FindStringSubmatch(match)[1]
		eq = arrowRegex.ReplaceAllString(eq, " → ")

		var parts []string
		for _, tok := range strings.Fields(eq) {
			parts = append(parts, t.chemToken(tok))
		}
		return `<div class="` + t.cfg.ChemClass + `">` + strings.Join(parts, " ") + `</div>`
	})
}

// chemToken 处理单个物种：系数保留，元素后的数字下标，电荷上标，物态下标
func (t *Transformer) chemToken(tok string) string {
	if heatRegex.MatchString(tok) {
		return `<span class="` + t.cfg.HeatClass + `">` + tok + `</span>`
	}
	state := ""
	if sub := stateRegex.FindStringSubmatch(tok); sub != nil {
		tok, state = sub[1], "<sub>("+sub[2]+")</sub>"
	}
	charge := ""
	if sub := explicitCharge.FindStringSubmatch(tok); sub != nil {
		tok, charge = sub[1], "<sup>"+sub[2]+"</sup>"
	} else if sub := implicitCharge.FindStringSubmatch(tok); sub != nil {
		tok, charge = sub[1], "<sup>"+sub[2]+"</sup>"
	}
	return elementCount.ReplaceAllString(tok, "${1}<sub>${2}</sub>") + charge + state
}

// ──────────────────────────────────────────────
// 段落
// ──────────────────────────────────────────────

var (
	blankLineRegex = regexp.MustCompile(`\n(?:[ \t]*\n)+`)
	blockTagRegex  = regexp.MustCompile(`^<(?:h[1-6]|ul|ol|li|div|table|thead|tbody|tr|p|blockquote|pre|hr|section|figure|details)\b`)
	leadMaskRegex  = regexp.MustCompile(`^\x{E000}\d+\x{E001}`)
	onlyMasksRegex = regexp.MustCompile(`^(?:\x{E000}\d+\x{E001}|\s)+$`)
)

// paragraphs 按空行分块；已经是块级标记的行保持原样，其余连续行包成一个 <p>
func (t *Transformer) paragraphs(text string, m *masked) string {
	var blocks []string
	for _, block := range blankLineRegex.Split(text, -1) {
		if strings.TrimSpace(block) == "" {
			continue
		}
		blocks = append(blocks, wrapBlock(block, m))
	}
	return strings.Join(blocks, "\n\n")
}

func wrapBlock(block string, m *masked) string {
	var out, run []string
	flush := func() {
		if len(run) > 0 {
			out = append(out, "<p>"+strings.Join(run, "<br>")+"</p>")
			run = nil
		}
	}
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case isBlockLine(trimmed, m):
			flush()
			out = append(out, trimmed)
		default:
			for _, seg := range splitAtBlockMasks(trimmed, m) {
				if seg.block {
					flush()
					out = append(out, seg.text)
				} else {
					run = append(run, seg.text)
				}
			}
		}
	}
	flush()
	return strings.Join(out, "\n")
}

type lineSegment struct {
	text  string
	block bool
}

var (
	inlineTagRegex = regexp.MustCompile(`<(/?)([a-zA-Z][a-zA-Z0-9]*)[^<>]*?(/?)>`)
	voidTags       = map[string]bool{"br": true, "hr": true, "img": true, "input": true, "wbr": true}
)

// splitAtBlockMasks 在行内的块级占位符处断开，使 <p> 不包含块级内容；
// 位于未闭合的行内标签（如 <strong>）里的占位符不拆
func splitAtBlockMasks(line string, m *masked) []lineSegment {
	var segs []lineSegment
	add := func(text string, block bool) {
		if text = strings.TrimSpace(text); text != "" {
			segs = append(segs, lineSegment{text: text, block: block})
		}
	}
	depth, scanned, last := 0, 0, 0
	for _, loc := range maskRegex.FindAllStringIndex(line, -1) {
		for _, tag := range inlineTagRegex.FindAllStringSubmatch(line[scanned:loc[0]], -1) {
			switch {
			case tag[3] == "/" || voidTags[strings.ToLower(tag[2])]:
			case tag[1] == "/":
				if depth > 0 {
					depth--
				}
			default:
				depth++
			}
		}
		scanned = loc[1]
		if depth > 0 || !m.isBlock(line[loc[0]:loc[1]]) {
			continue
		}
		add(line[last:loc[0]], false)
		add(line[loc[0]:loc[1]], true)
		last = loc[1]
	}
	add(line[last:], false)
	return segs
}

// isBlockLine 行首是块级标签（或块级占位符）且行尾是标签或占位符；
// 只含占位符的行在其中有块级占位符时也算
func isBlockLine(line string, m *masked) bool {
	if onlyMasksRegex.MatchString(line) {
		for _, mask := range maskRegex.FindAllString(line, -1) {
			if m.isBlock(mask) {
				return true
			}
		}
		return false
	}
	startsBlock := blockTagRegex.MatchString(line)
	if !startsBlock {
		if lead := leadMaskRegex.FindString(line); lead != "" {
			startsBlock = m.isBlock(lead)
		}
	}
	endsMarkup := strings.HasSuffix(line, ">") || strings.HasSuffix(line, maskClose)
	return startsBlock && endsMarkup
}
