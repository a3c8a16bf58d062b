package buffer

import (
	"strings"
	"unicode/utf8"
)

// TextBuffer accumulates chunk text and tracks its length in runes.
type TextBuffer struct {
	parts []string
	runes int
}

// New creates a new TextBuffer.
func New() *TextBuffer {
	return &TextBuffer{
		parts: make([]string, 0),
	}
}

// Write appends text to the buffer.
func (tb *TextBuffer) Write(text string) {
	if text == "" {
		return
	}
	tb.parts = append(tb.parts, text)
	tb.runes += utf8.RuneCountInString(text)
}

// Runes returns the number of runes written since the last reset.
func (tb *TextBuffer) Runes() int {
	return tb.runes
}

// Empty 缓冲区中没有任何内容
func (tb *TextBuffer) Empty() bool {
	return len(tb.parts) == 0
}

// Flush 返回已累积的文本并清空缓冲区
func (tb *TextBuffer) Flush() string {
	s := strings.Join(tb.parts, "")
	tb.parts = tb.parts[:0]
	tb.runes = 0
	return s
}
