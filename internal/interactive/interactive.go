// Package interactive 解析 ```json 围栏中的交互指令（feedback / options / quiz）。
package interactive

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrMalformed JSON 无法解析或缺少必需字段
	ErrMalformed = errors.New("interactive: malformed block")
	// ErrUnknownType type 字段缺失或不是已知类型
	ErrUnknownType = errors.New("interactive: unknown block type")
)

// Type 交互块类型
type Type int

const (
	TypeFeedback Type = iota
	TypeOptions
	TypeQuiz
)

func (t Type) String() string {
	switch t {
	case TypeFeedback:
		return "feedback"
	case TypeOptions:
		return "options"
	case TypeQuiz:
		return "quiz"
	default:
		return "unknown"
	}
}

// Tag 返回哨兵标记名，例如 QUIZ
func (t Type) Tag() string {
	return strings.ToUpper(t.String())
}

func parseType(s string) (Type, bool) {
	switch s {
	case "feedback":
		return TypeFeedback, true
	case "options":
		return TypeOptions, true
	case "quiz":
		return TypeQuiz, true
	}
	return 0, false
}

// Choice 一个 (label, value) 选项或动作
type Choice struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Block 经过校验的交互块
type Block struct {
	Type Type
	// Message feedback/options 的提示语；quiz 的题目
	Message string
	Options []Choice
	// Actions 仅 quiz 使用，不完整的条目已被丢弃
	Actions []Choice
	// Raw 压缩后的原始 JSON，键顺序与取值保持不变
	Raw string
}

// Parse 解析并校验交互块负载
func Parse(payload string) (Block, error) {
	payload = strings.TrimSpace(payload)
	if !gjson.Valid(payload) {
		return Block{}, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	doc := gjson.Parse(payload)
	if !doc.IsObject() {
		return Block{}, fmt.Errorf("%w: payload is not an object", ErrMalformed)
	}

	typ, ok := parseType(doc.Get("type").String())
	if !ok {
		return Block{}, fmt.Errorf("%w: %q", ErrUnknownType, doc.Get("type").String())
	}

	block := Block{Type: typ}
	field := "message"
	if typ == TypeQuiz {
		field = "question"
	}
	block.Message = doc.Get(field).String()
	if strings.TrimSpace(block.Message) == "" {
		return Block{}, fmt.Errorf("%w: %s requires %s", ErrMalformed, typ, field)
	}

	options := doc.Get("options")
	if !options.IsArray() || len(options.Array()) == 0 {
		return Block{}, fmt.Errorf("%w: %s requires a non-empty options array", ErrMalformed, typ)
	}
	for i, opt := range options.Array() {
		c, ok := choiceOf(opt)
		if !ok {
			return Block{}, fmt.Errorf("%w: option %d needs label and value", ErrMalformed, i)
		}
		block.Options = append(block.Options, c)
	}

	if typ == TypeQuiz {
		if actions := doc.Get("actions"); actions.IsArray() {
			for _, a := range actions.Array() {
				if c, ok := choiceOf(a); ok {
					block.Actions = append(block.Actions, c)
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(payload)); err != nil {
		return Block{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	block.Raw = buf.String()
	return block, nil
}

func choiceOf(v gjson.Result) (Choice, bool) {
	if !v.IsObject() {
		return Choice{}, false
	}
	label, value := scalar(v.Get("label")), scalar(v.Get("value"))
	if label == "" || value == "" {
		return Choice{}, false
	}
	return Choice{Label: label, Value: value}, true
}

// scalar 只接受字符串和数字
func scalar(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Raw
	}
	return ""
}

// Sentinel 返回交给宿主 UI 的哨兵包装，例如 [QUIZ]{...}[/QUIZ]
func (b Block) Sentinel() string {
	tag := b.Type.Tag()
	return "[" + tag + "]" + b.Raw + "[/" + tag + "]"
}

// RenderHTML 不支持哨兵的宿主使用的静态标记
func (b Block) RenderHTML() string {
	var sb strings.Builder
	e := html.EscapeString
	switch b.Type {
	case TypeFeedback:
		sb.WriteString(`<div class="feedback-message">` + e(b.Message) + `</div><div class="feedback-options">`)
		for _, o := range b.Options {
			sb.WriteString(`<button class="feedback-option" data-value="` + e(o.Value) + `">` + e(o.Label) + `</button>`)
		}
		sb.WriteString(`</div>`)
	case TypeOptions:
		sb.WriteString(`<div class="options-message">` + e(b.Message) + `</div><div class="options-choices">`)
		writeRadios(&sb, "option-choice", "option", "options", b.Options)
		sb.WriteString(`</div>`)
	case TypeQuiz:
		sb.WriteString(`<div class="quiz-question">` + e(b.Message) + `</div><div class="quiz-choices">`)
		writeRadios(&sb, "quiz-choice", "quiz-option", "quiz-options", b.Options)
		sb.WriteString(`</div>`)
		if len(b.Actions) > 0 {
			sb.WriteString(`<div class="quiz-actions">`)
			for _, a := range b.Actions {
				sb.WriteString(`<button class="quiz-action" data-value="` + e(a.Value) + `">` + e(a.Label) + `</button>`)
			}
			sb.WriteString(`</div>`)
		}
	}
	return sb.String()
}

func writeRadios(sb *strings.Builder, class, idPrefix, name string, choices []Choice) {
	for i, c := range choices {
		id := idPrefix + "-" + strconv.Itoa(i)
		sb.WriteString(`<div class="` + class + `"><input type="radio" id="` + id + `" name="` + name +
			`" value="` + html.EscapeString(c.Value) + `"><label for="` + id + `">` + html.EscapeString(c.Label) + `</label></div>`)
	}
}
