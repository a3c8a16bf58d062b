package tutormark

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/riverfjs/tutormark-go/internal/backend"
	"github.com/riverfjs/tutormark-go/internal/types"
)

// 导出类型别名
type RenderConfig = types.RenderConfig
type Note = types.Note
type Client = backend.Client
type ClientOption = backend.Option

// 默认值
const (
	DefaultChunkDelay     = 50 * time.Millisecond
	DefaultMinChunkLength = 30
	DefaultApology        = "I'm sorry, I couldn't process your request properly. Please try again."
)

// Config 管道与后端配置
type Config struct {
	Endpoint     string `yaml:"endpoint"`
	UserID       string `yaml:"user_id"`
	SyllabusID   string `yaml:"syllabus_id"`
	ResponseMode string `yaml:"response_mode"`

	// ChunkDelay 相邻两个分片之间的等待，仅用于模拟逐步输出
	ChunkDelay time.Duration `yaml:"chunk_delay"`
	// MinChunkLength 按空白切分时每个分片至少包含的字符数
	MinChunkLength int    `yaml:"min_chunk_length"`
	ApologyMessage string `yaml:"apology_message"`
}

var (
	defaultConfig     *Config
	defaultConfigOnce sync.Once

	defaultRender     *RenderConfig
	defaultRenderOnce sync.Once
)

// DefaultConfig returns a copy of the default configuration.
func DefaultConfig() *Config {
	defaultConfigOnce.Do(func() {
		defaultConfig = &Config{
			ResponseMode:   backend.ModeReason,
			ChunkDelay:     DefaultChunkDelay,
			MinChunkLength: DefaultMinChunkLength,
			ApologyMessage: DefaultApology,
		}
	})
	c := *defaultConfig
	return &c
}

// DefaultRenderConfig returns the default render configuration (singleton).
func DefaultRenderConfig() *RenderConfig {
	defaultRenderOnce.Do(func() {
		defaultRender = types.DefaultRenderConfig()
	})
	return defaultRender
}

// LoadConfig 从 YAML 文件读取配置，未设置的字段使用默认值
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig 解析 YAML 配置
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) fillDefaults() {
	if c.ResponseMode == "" {
		c.ResponseMode = backend.ModeReason
	}
	if c.MinChunkLength <= 0 {
		c.MinChunkLength = DefaultMinChunkLength
	}
	if c.ApologyMessage == "" {
		c.ApologyMessage = DefaultApology
	}
}

// Validate 检查配置取值
func (c *Config) Validate() error {
	switch c.ResponseMode {
	case backend.ModeReason, backend.ModeFact:
	default:
		return fmt.Errorf("invalid response_mode %q: want %q or %q", c.ResponseMode, backend.ModeReason, backend.ModeFact)
	}
	if c.ChunkDelay < 0 {
		return fmt.Errorf("invalid chunk_delay %s: must not be negative", c.ChunkDelay)
	}
	if c.MinChunkLength < 0 {
		return fmt.Errorf("invalid min_chunk_length %d", c.MinChunkLength)
	}
	return nil
}

// Request 用配置中的身份信息构造一次后端查询
func (c *Config) Request(query string) backend.Request {
	return backend.Request{
		QueryText:    query,
		SyllabusID:   c.SyllabusID,
		UserID:       c.UserID,
		ResponseMode: c.ResponseMode,
	}
}

// Client 创建指向 Endpoint 的后端客户端
func (c *Config) Client(opts ...ClientOption) *Client {
	return backend.New(c.Endpoint, opts...)
}
