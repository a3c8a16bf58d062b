// Package backend 调用远端辅导服务，返回原始响应体（交给 envelope 解析）。
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/sjson"
)

// ErrStatus 服务端返回非 2xx
var ErrStatus = errors.New("backend: unexpected status")

// 响应模式
const (
	ModeReason = "reason"
	ModeFact   = "fact"
)

// Request 一次查询
type Request struct {
	QueryText    string
	SyllabusID   string
	UserID       string
	ResponseMode string
}

// Client 辅导服务客户端
type Client struct {
	endpoint string
	http     *http.Client
	headers  map[string]string
	maxBody  int64
}

// Option 配置 Client
type Option func(*Client)

// WithHTTPClient 使用自定义 http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithHeader 为每个请求附加请求头
func WithHeader(key, value string) Option {
	return func(cl *Client) {
		cl.headers[key] = value
	}
}

// WithMaxBody 限制读取的响应体大小
func WithMaxBody(n int64) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.maxBody = n
		}
	}
}

// New 创建客户端
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: make(map[string]string),
		maxBody: 4 << 20,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Payload 构造请求 JSON
func Payload(r Request) ([]byte, error) {
	mode := r.ResponseMode
	if mode == "" {
		mode = ModeReason
	}
	body := []byte(`{}`)
	var err error
	for _, kv := range []struct{ path, value string }{
		{"query_text", r.QueryText},
		{"syllabus_id", r.SyllabusID},
		{"user_id", r.UserID},
		{"response_mode", mode},
	} {
		if body, err = sjson.SetBytes(body, kv.path, kv.value); err != nil {
			return nil, fmt.Errorf("build payload: %w", err)
		}
	}
	return body, nil
}

// Query 发送查询，返回原始响应体
func (c *Client) Query(ctx context.Context, r Request) ([]byte, error) {
	if c.endpoint == "" {
		return nil, errors.New("backend: empty endpoint")
	}
	body, err := Payload(r)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrStatus, resp.StatusCode)
	}
	return data, nil
}
