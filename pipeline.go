package tutormark

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/riverfjs/tutormark-go/internal/converter"
	"github.com/riverfjs/tutormark-go/internal/envelope"
	"github.com/riverfjs/tutormark-go/internal/interactive"
	"github.com/riverfjs/tutormark-go/internal/latex"
	"github.com/riverfjs/tutormark-go/internal/protect"
	"github.com/riverfjs/tutormark-go/internal/types"
)

// Pipeline 把后端响应转换成可渲染的标记并分片交付。
// 只持有只读配置，可被多个 goroutine 同时使用；每次调用都有独立的状态。
type Pipeline struct {
	cfg         *Config
	render      *RenderConfig
	logger      logrus.FieldLogger
	metrics     *Metrics
	transformer *converter.Transformer
}

// New 创建管道
func New(opts ...Option) *Pipeline {
	o := applyOptions(opts...)
	return &Pipeline{
		cfg:         o.Config,
		render:      o.Render,
		logger:      o.Logger,
		metrics:     o.Metrics,
		transformer: converter.New(o.Render),
	}
}

// Config 返回管道使用的配置副本
func (p *Pipeline) Config() Config {
	return *p.cfg
}

func (p *Pipeline) log() logrus.FieldLogger {
	if p.logger != nil {
		return p.logger
	}
	return Logger
}

var (
	excessNewlines = regexp.MustCompile(`\n{3,}`)
	// 以块级标签开头的原始 HTML 单独成行
	blockHTMLRegex = regexp.MustCompile(`(?i)^</?(?:(?:h[1-6]|ul|ol|li|div|table|thead|tbody|tr|p|blockquote|pre|hr|section|figure|details)\b|math\b[^>]*display="block")`)
)

// run 一次处理的状态
type run struct {
	*Result
	log logrus.FieldLogger
	set *protect.Set
	// placeholdered 占位符尚未还原的最终文本
	placeholdered string
}

func (r *run) issue(stage string, err error) {
	r.Issues = append(r.Issues, err)
	r.log.WithField("stage", stage).WithError(err).Warn("recovered")
}

// Process 处理一个原始响应，始终返回至少包含一个分片的结果
func (p *Pipeline) Process(raw any) (res *Result) {
	r := &run{Result: &Result{RunID: uuid.NewString()}}
	r.log = p.log().WithField("run_id", r.RunID)
	defer func() {
		if v := recover(); v != nil {
			r.log.WithField("panic", v).Error("pipeline failed, answering with apology")
			res = p.apologize(r, stageTransform, fmt.Errorf("tutormark: recovered from panic: %v", v))
		}
	}()

	content, ok := p.extract(r, raw)
	if !ok {
		return p.apologize(r, stageEnvelope, ErrEmptyContent)
	}

	p.protect(r, content)
	p.repairMath(r)
	p.renderCode(r)
	p.transform(r)
	p.parseBlocks(r)

	r.Markup = r.set.Restore(r.placeholdered)
	p.split(r)
	return r.Result
}

// extract 取正文并做基础清理
func (p *Pipeline) extract(r *run, raw any) (string, bool) {
	if raw == nil {
		return "", false
	}
	content, shape := envelope.Extract(raw)
	r.Shape = shape.String()
	p.metrics.shape(r.Shape)
	if shape == envelope.ShapeFallback {
		r.issue(stageEnvelope, ErrEnvelopeAmbiguous)
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = excessNewlines.ReplaceAllString(content, "\n\n")
	content = strings.TrimSpace(content)
	r.log.WithFields(logrus.Fields{"stage": stageEnvelope, "shape": r.Shape, "bytes": len(content)}).Debug("content extracted")
	return content, content != ""
}

func (p *Pipeline) protect(r *run, content string) {
	set, text := protect.Protect(content)
	text = latex.ConvertIdioms(text, func(original, tex string) string {
		return set.Add(types.KindMath, original, tex, true)
	})
	for _, span := range set.All() {
		p.metrics.span(span.Kind.String())
	}
	r.set, r.placeholdered = set, text
	r.log.WithFields(logrus.Fields{"stage": stageProtect, "spans": set.Len()}).Debug("spans protected")
}

func (p *Pipeline) repairMath(r *run) {
	for _, span := range r.set.Spans(types.KindMath) {
		tex, err := latex.Repair(span.Body)
		if err != nil {
			r.issue(stageMath, fmt.Errorf("%w: %q: %w", ErrMathRepairAmbiguity, span.Original, err))
			tex = span.Body
		}
		span.Replacement = latex.Markup(tex, span.Display, p.render.MathInline, p.render.MathBlock)
		r.Math = append(r.Math, MathSpan{
			Token:    span.Token,
			Original: span.Original,
			TeX:      strings.TrimSpace(tex),
			Display:  span.Display,
			Plain:    latex.ToUnicode(tex),
			Repaired: err == nil,
		})
	}
}

// renderCode 把围栏代码块渲染为转义后的 <pre>，Original 保持不变
func (p *Pipeline) renderCode(r *run) {
	spans := r.set.Spans(types.KindCode)
	for _, span := range spans {
		class := p.render.CodeBlock
		if span.Lang != "" {
			class += " " + span.Lang
		}
		span.Replacement = fmt.Sprintf(`<pre class="%s"><code>%s</code></pre>`,
			html.EscapeString(strings.TrimSpace(class)), html.EscapeString(strings.Trim(span.Body, "\n")))
	}
	r.log.WithFields(logrus.Fields{"stage": stageCode, "blocks": len(spans)}).Debug("code rendered")
}

// blockToken 判断占位符在段落包裹时是否视为块级内容
func (r *run) blockToken(token string) bool {
	span, ok := r.set.Lookup(token)
	if !ok {
		return false
	}
	switch span.Kind {
	case types.KindCode, types.KindInteractiveJSON:
		return true
	case types.KindMath:
		return span.Display
	case types.KindHTML:
		return blockHTMLRegex.MatchString(span.Original)
	}
	return false
}

func (p *Pipeline) transform(r *run) {
	r.placeholdered = p.transformer.WithBlockToken(r.blockToken).Transform(r.placeholdered)
	r.log.WithField("stage", stageTransform).Debug("structure converted")
}

func (p *Pipeline) parseBlocks(r *run) {
	for _, span := range r.set.Spans(types.KindInteractiveJSON) {
		block, err := interactive.Parse(span.Body)
		if err != nil {
			outcome := "malformed"
			if errors.Is(err, interactive.ErrUnknownType) {
				outcome = "unknown_type"
			}
			p.metrics.block("unknown", outcome)
			r.issue(stageInteractive, fmt.Errorf("%w: %w", ErrMalformedJSONBlock, err))
			continue
		}
		span.Replacement = block.Sentinel()
		r.Blocks = append(r.Blocks, block)
		p.metrics.block(block.Type.String(), "valid")
	}
}

// split 在占位状态下切分，然后逐片还原
func (p *Pipeline) split(r *run) {
	parts := Split(r.placeholdered, p.cfg.MinChunkLength)
	r.Chunks = make([]Chunk, 0, len(parts))
	for i, part := range parts {
		r.Chunks = append(r.Chunks, Chunk{
			Index: i,
			Text:  r.set.Restore(part),
			Final: i == len(parts)-1,
		})
	}
	r.log.WithFields(logrus.Fields{"stage": stageChunk, "chunks": len(r.Chunks)}).Debug("content split")
}

func (p *Pipeline) apologize(r *run, stage string, err error) *Result {
	r.issue(stage, err)
	p.metrics.apology()
	res := r.Result
	res.Apology = true
	res.Markup = p.cfg.ApologyMessage
	res.Chunks = []Chunk{{Index: 0, Text: p.cfg.ApologyMessage, Final: true}}
	res.Blocks, res.Math = nil, nil
	return res
}

// Stream 处理响应并按顺序把分片交给 fn，分片之间等待 ChunkDelay。
// 只在分片边界检查 ctx；fn 返回错误时停止交付并返回该错误。
func (p *Pipeline) Stream(ctx context.Context, raw any, fn func(Chunk) error) (*Result, error) {
	res := p.Process(raw)
	return res, p.Deliver(ctx, res.Chunks, fn)
}

// Deliver 按顺序交付已生成的分片
func (p *Pipeline) Deliver(ctx context.Context, chunks []Chunk, fn func(Chunk) error) error {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for i, c := range chunks {
		if i > 0 && p.cfg.ChunkDelay > 0 {
			if timer == nil {
				timer = time.NewTimer(p.cfg.ChunkDelay)
			} else {
				timer.Reset(p.cfg.ChunkDelay)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		p.metrics.chunk()
		if c.Final {
			break
		}
	}
	return nil
}
