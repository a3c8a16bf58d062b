package tutormark

import (
	"regexp"

	"github.com/riverfjs/tutormark-go/internal/buffer"
	"github.com/riverfjs/tutormark-go/internal/types"
)

// ──────────────────────────────────────────────
// 分片
// ──────────────────────────────────────────────

var (
	// 占位符和标签是原子单元，切分点不能落在其中
	atomRegex = regexp.MustCompile(types.PlaceholderRegex.String() + `|<[^<>]*>`)
	// 句末标点，可跟若干闭合标签和空白，下一句以大写字母或标签开头
	sentenceRegex = regexp.MustCompile(`[.!?]+(?:</[a-zA-Z][a-zA-Z0-9]*>)*\s+(?:[A-Z]|<)`)
	spaceRegex    = regexp.MustCompile(`\s+`)
)

// Split 把占位后的文本切成按顺序拼接即为原文的片段。
// 有句子边界时按句切分，否则按空白切分，片段超过 minLen 个字符后在下一个空白处截断。
// 占位符和 HTML 标签永远不会被切开。
func Split(text string, minLen int) []string {
	if text == "" {
		return nil
	}
	atoms := atomRegex.FindAllStringIndex(text, -1)
	cuts := sentenceCuts(text, atoms)
	if len(cuts) == 0 {
		return wordChunks(text, atoms, minLen)
	}

	chunks := make([]string, 0, len(cuts)+1)
	last := 0
	for _, cut := range cuts {
		chunks = append(chunks, text[last:cut])
		last = cut
	}
	return append(chunks, text[last:])
}

// within pos 是否落在某个原子单元内部（不含边界）
func within(pos int, atoms [][]int) bool {
	for _, a := range atoms {
		if a[0] < pos && pos < a[1] {
			return true
		}
		if a[0] >= pos {
			break
		}
	}
	return false
}

func sentenceCuts(text string, atoms [][]int) []int {
	var cuts []int
	for _, m := range sentenceRegex.FindAllStringIndex(text, -1) {
		cut := m[1] - 1
		if within(m[0], atoms) || within(cut, atoms) {
			continue
		}
		cuts = append(cuts, cut)
	}
	return cuts
}

// wordChunks 逐段累积到缓冲区，超过 minLen 个字符后在空白之后输出一片，剩余部分为最后一片
func wordChunks(text string, atoms [][]int, minLen int) []string {
	var chunks []string
	buf := buffer.New()
	last := 0
	for _, m := range spaceRegex.FindAllStringIndex(text, -1) {
		end := m[1]
		if end >= len(text) || within(m[0], atoms) {
			continue
		}
		buf.Write(text[last:end])
		last = end
		if buf.Runes() > minLen {
			chunks = append(chunks, buf.Flush())
		}
	}
	buf.Write(text[last:])
	if !buf.Empty() {
		chunks = append(chunks, buf.Flush())
	}
	return chunks
}
