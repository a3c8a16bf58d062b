// Package envelope 把后端返回的各种响应外壳统一成一段正文。
package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Shape 记录命中的提取规则
type Shape int

const (
	ShapeString      Shape = iota // 纯字符串
	ShapeStringField              // 字符串内嵌 JSON，取 response/message
	ShapeBodyString               // body 为字符串
	ShapeBodyField                // body 内嵌 response/message
	ShapeBodyObject               // body 为对象但无字段，序列化 body
	ShapeField                    // 顶层 response/message
	ShapeFallback                 // 无法识别，整体序列化
)

func (s Shape) String() string {
	switch s {
	case ShapeString:
		return "string"
	case ShapeStringField:
		return "string_field"
	case ShapeBodyString:
		return "body_string"
	case ShapeBodyField:
		return "body_field"
	case ShapeBodyObject:
		return "body_object"
	case ShapeField:
		return "field"
	case ShapeFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Extract 按优先级从 raw 中取出正文，永不失败
func Extract(raw any) (string, Shape) {
	switch v := raw.(type) {
	case string:
		return fromString(v, ShapeString, ShapeStringField)
	case []byte:
		return fromString(string(v), ShapeString, ShapeStringField)
	case json.RawMessage:
		return fromString(string(v), ShapeString, ShapeStringField)
	}

	doc, ok := marshal(raw)
	if !ok {
		return fmt.Sprint(raw), ShapeFallback
	}
	root := gjson.Parse(doc)
	if !root.IsObject() {
		return scalarText(root), ShapeFallback
	}

	if body := root.Get("body"); truthy(body) {
		if body.Type == gjson.String {
			return fromString(body.Str, ShapeBodyString, ShapeBodyField)
		}
		if text, ok := field(body); ok {
			return text, ShapeBodyField
		}
		return compact(body.Raw), ShapeBodyObject
	}
	if text, ok := field(root); ok {
		return text, ShapeField
	}
	return doc, ShapeFallback
}

// fromString 尝试把字符串当作 JSON 解析，取不到字段就原样返回
func fromString(s string, plain, withField Shape) (string, Shape) {
	if gjson.Valid(s) {
		if doc := gjson.Parse(s); doc.IsObject() {
			if text, ok := field(doc); ok {
				return text, withField
			}
		}
	}
	return s, plain
}

// field 取 response，其次 message；空字符串、0、false、null 视为不存在
func field(obj gjson.Result) (string, bool) {
	for _, key := range []string{"response", "message"} {
		if v := obj.Get(key); truthy(v) {
			if v.Type == gjson.String {
				return v.Str, true
			}
			return compact(v.Raw), true
		}
	}
	return "", false
}

func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	case gjson.True, gjson.JSON:
		return true
	default:
		return false
	}
}

func scalarText(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.Str
	}
	return v.Raw
}

func marshal(raw any) (string, bool) {
	if raw == nil {
		return "null", true
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return "", false
	}
	return string(b), true
}

func compact(raw string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(raw)); err != nil {
		return raw
	}
	return buf.String()
}
