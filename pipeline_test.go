package tutormark

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newTestPipeline(t *testing.T, opts ...Option) (*Pipeline, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	opts = append([]Option{WithLogger(logger), WithChunkDelay(0)}, opts...)
	return New(opts...), hook
}

func hasIssue(res *Result, target error) bool {
	for _, err := range res.Issues {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func assertChunks(t *testing.T, res *Result) {
	t.Helper()
	require.NotEmpty(t, res.Chunks)
	assert.Equal(t, res.Markup, res.Text())
	for i, c := range res.Chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, i == len(res.Chunks)-1, c.Final)
	}
}

// TestProcess_InlineMath 行内公式只占一个片段，不会在句号处被拆开
func TestProcess_InlineMath(t *testing.T) {
	p, _ := newTestPipeline(t)
	res := p.Process("The area is $A = \\pi r^2$ for a circle.")

	require.Len(t, res.Math, 1)
	assert.Equal(t, "$A = \\pi r^2$", res.Math[0].Original)
	assert.Equal(t, `A = \pi r^{2}`, res.Math[0].TeX)
	assert.False(t, res.Math[0].Display)
	assert.True(t, res.Math[0].Repaired)
	assert.NotEmpty(t, res.Math[0].Plain)

	span := `<span class="math-inline">\(A = \pi r^{2}\)</span>`
	assert.Equal(t, "<p>The area is "+span+" for a circle.</p>", res.Markup)
	assert.Equal(t, 1, strings.Count(res.Markup, "math-inline"))
	assertChunks(t, res)

	inChunk := 0
	for _, c := range res.Chunks {
		if strings.Contains(c.Text, span) {
			inChunk++
		}
	}
	assert.Equal(t, 1, inChunk)
}

// TestProcess_Quiz 交互块输出哨兵包装，JSON 与原对象一致
func TestProcess_Quiz(t *testing.T) {
	payload := `{"type":"quiz","question":"2+2?","options":[{"label":"4","value":"4"},{"label":"5","value":"5"}]}`
	p, _ := newTestPipeline(t)
	res := p.Process("```json\n" + payload + "\n```")

	assert.Equal(t, "[QUIZ]"+payload+"[/QUIZ]", res.Markup)
	require.Len(t, res.Blocks, 1)
	assert.Equal(t, BlockQuiz, res.Blocks[0].Type)

	start := strings.Index(res.Markup, "[QUIZ]") + len("[QUIZ]")
	end := strings.Index(res.Markup, "[/QUIZ]")
	var original, embedded any
	require.NoError(t, json.Unmarshal([]byte(payload), &original))
	require.NoError(t, json.Unmarshal([]byte(res.Markup[start:end]), &embedded))
	assert.Equal(t, original, embedded)
	assertChunks(t, res)
}

// TestProcess_Empty 空内容只输出一个致歉分片
func TestProcess_Empty(t *testing.T) {
	p, _ := newTestPipeline(t)
	for _, raw := range []any{"", "   \n\t  ", nil, map[string]any{"response": "  "}} {
		res := p.Process(raw)
		assert.True(t, res.Apology, "raw %#v", raw)
		assert.Equal(t, DefaultApology, res.Markup)
		require.Len(t, res.Chunks, 1)
		assert.Equal(t, Chunk{Index: 0, Text: DefaultApology, Final: true}, res.Chunks[0])
		assert.True(t, hasIssue(res, ErrEmptyContent))
	}

	cfg := DefaultConfig()
	cfg.ApologyMessage = "Sorry!"
	p, _ = newTestPipeline(t, WithConfig(cfg))
	assert.Equal(t, "Sorry!", p.Process("").Markup)
}

// TestProcess_Tip 提示块带图标与标题
func TestProcess_Tip(t *testing.T) {
	p, _ := newTestPipeline(t)
	res := p.Process("Try this.\n\n:::tip\nUse factoring.\n:::")

	assert.Contains(t, res.Markup, `<div class="note-block tip`)
	assert.Contains(t, res.Markup, "💡")
	assert.Contains(t, res.Markup, "<span>Helpful Tip</span>")
	assert.Contains(t, res.Markup, ">Use factoring.</div>")
	assertChunks(t, res)
}

// TestProcess_MalformedJSON 不合法的交互块原样保留
func TestProcess_MalformedJSON(t *testing.T) {
	input := "```json\n{\"type\":\"quiz\",\"question\":\"2+2?\",\"options\":[{\"label\":\"4\"}]}\n```"
	p, _ := newTestPipeline(t)

	var res *Result
	require.NotPanics(t, func() { res = p.Process(input) })
	assert.Equal(t, input, res.Markup)
	assert.Empty(t, res.Blocks)
	assert.False(t, res.Apology)
	assert.True(t, hasIssue(res, ErrMalformedJSONBlock))
	assertChunks(t, res)

	// 非交互用途的 json 代码块同样保留
	res = p.Process("Data:\n\n```json\n{\"a\": 1}\n```")
	assert.Contains(t, res.Markup, "```json\n{\"a\": 1}\n```")
	assert.Empty(t, res.Blocks)
}

// TestProcess_Envelopes 各种响应外壳
func TestProcess_Envelopes(t *testing.T) {
	tests := []struct {
		name  string
		raw   any
		shape string
		want  string
	}{
		{"plain string", "hi", "string", "<p>hi</p>"},
		{"json string", `{"response":"hi"}`, "string_field", "<p>hi</p>"},
		{"bytes", []byte(`{"message":"hi"}`), "string_field", "<p>hi</p>"},
		{"body string", map[string]any{"body": `{"response":"hi"}`}, "body_field", "<p>hi</p>"},
		{"body object", map[string]any{"body": map[string]any{"message": "hi"}}, "body_field", "<p>hi</p>"},
		{"top level field", map[string]any{"response": "hi"}, "field", "<p>hi</p>"},
		{"unknown object", map[string]any{"other": 1}, "fallback", `<p>{"other":1}</p>`},
	}
	p, _ := newTestPipeline(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Process(tt.raw)
			assert.Equal(t, tt.shape, res.Shape)
			assert.Equal(t, tt.want, res.Markup)
			assert.Equal(t, tt.shape == "fallback", hasIssue(res, ErrEnvelopeAmbiguous))
		})
	}
}

// TestProcess_Idioms 纯文本恒等式转为块级公式
func TestProcess_Idioms(t *testing.T) {
	p, _ := newTestPipeline(t)
	res := p.Process("Recall sin(θ) = y on the unit circle")

	require.Len(t, res.Math, 1)
	assert.Equal(t, "sin(θ) = y", res.Math[0].Original)
	assert.Equal(t, `\sin(\theta) = y`, res.Math[0].TeX)
	assert.True(t, res.Math[0].Display)
	assert.Contains(t, res.Markup, `<div class="math-block">\[\sin(\theta) = y\]</div>`)
	assert.NotContains(t, res.Markup, "sin(θ)")
	assert.Equal(t, "<p>Recall</p>\n<div class=\"math-block\">\\[\\sin(\\theta) = y\\]</div>\n<p>on the unit circle</p>", res.Markup)
	assert.NotContains(t, res.Markup, "<p><div")
}

// TestProcess_MathAmbiguous 无法修复的公式保持原样
func TestProcess_MathAmbiguous(t *testing.T) {
	p, _ := newTestPipeline(t)
	res := p.Process("Broken $\\frac{1{2}$ here")

	require.Len(t, res.Math, 1)
	assert.False(t, res.Math[0].Repaired)
	assert.Equal(t, `\frac{1{2}`, res.Math[0].TeX)
	assert.Contains(t, res.Markup, `\(\frac{1{2}\)`)
	assert.True(t, hasIssue(res, ErrMathRepairAmbiguity))
	assert.False(t, res.Apology)
}

// TestProcess_Protected 代码块和原有 HTML 不受文本规则影响
func TestProcess_Protected(t *testing.T) {
	p, _ := newTestPipeline(t)

	res := p.Process("Intro\n\n```python\nx = $a$ **b**\n```")
	assert.Equal(t, "<p>Intro</p>\n\n<pre class=\"code-block python\"><code>x = $a$ **b**</code></pre>", res.Markup)
	assert.Empty(t, res.Math)

	res = p.Process("Use <b>bold</b> **here**")
	assert.Equal(t, `<p>Use <b>bold</b> <strong class="font-semibold text-gray-900 dark:text-white">here</strong></p>`, res.Markup)

	res = p.Process("<div>raw</div>\ntext")
	assert.Equal(t, "<div>raw</div>\n<p>text</p>", res.Markup)

	res = p.Process("See $$x^2$$ and [MATH]y[/MATH]")
	require.Len(t, res.Math, 2)
	assert.Contains(t, res.Markup, `<div class="math-block">\[x^{2}\]</div>`)
	assert.Contains(t, res.Markup, `<div class="math-block">\[y\]</div>`)
}

// TestProcess_CodeBlocks 代码块渲染为 <pre>，内容转义
func TestProcess_CodeBlocks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "language and escaping",
			input: "Try this:\n\n```python\nif a < b:\n    print(a)\n```\n\nDone.",
			want:  "<p>Try this:</p>\n\n<pre class=\"code-block python\"><code>if a &lt; b:\n    print(a)</code></pre>\n\n<p>Done.</p>",
		},
		{
			name:  "no language",
			input: "```\n<b>&</b>\n```",
			want:  "<pre class=\"code-block\"><code>&lt;b&gt;&amp;&lt;/b&gt;</code></pre>",
		},
	}
	p, _ := newTestPipeline(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Process(tt.input)
			assert.Equal(t, tt.want, res.Markup)
			assert.NotContains(t, res.Markup, "```")
			assertChunks(t, res)
		})
	}

	// 无法解析的交互块仍保留原始围栏文本
	res := p.Process("```json\n{\"type\":\"poll\"}\n```")
	assert.Equal(t, "```json\n{\"type\":\"poll\"}\n```", res.Markup)
}

// TestProcess_Lossless 任意输入的分片拼接都等于完整标记
func TestProcess_Lossless(t *testing.T) {
	inputs := []any{
		"# Circles\n\nThe area is $A = \\pi r^2$. The circumference is $2\\pi r$!\n\n- one\n- two\n\nKey Point: radius matters",
		"no sentence terminators here just a long run of words that keeps going on and on",
		"Costs $5 and $10. Really.\n\n[TABLE]\nA|B\n---|---\n1|2\n[/TABLE]\n\n[CHEM]H2 + O2 -> H2O[/CHEM]",
		"```json\n{\"type\":\"feedback\",\"message\":\"Helpful?\",\"options\":[{\"label\":\"Yes\",\"value\":\"y\"}]}\n```\n\nThanks. Bye.",
		map[string]any{"body": map[string]any{"response": "Line one.\r\nLine Two.\r\n\r\n\r\n\r\nEnd."}},
	}
	p, _ := newTestPipeline(t)
	for _, raw := range inputs {
		res := p.Process(raw)
		assert.False(t, res.Apology)
		assertChunks(t, res)
		assert.NotContains(t, res.Markup, "_PLACEHOLDER_")
		assert.NotContains(t, res.Markup, "\r")
	}
}

// TestProcess_Concurrent 同一个 Pipeline 可并发使用
func TestProcess_Concurrent(t *testing.T) {
	p, _ := newTestPipeline(t)
	input := "# T\n\nThe area is $A = \\pi r^2$. More **text** here."
	want := p.Process(input).Markup

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			if got := p.Process(input).Markup; got != want {
				return errors.New("markup differs: " + got)
			}
			return nil
		})
	}
	assert.NoError(t, g.Wait())
}

// TestProcess_Logging 恢复的问题以 Warn 记录并带 run_id
func TestProcess_Logging(t *testing.T) {
	p, hook := newTestPipeline(t)
	res := p.Process("")

	var warned bool
	for _, e := range hook.AllEntries() {
		assert.Equal(t, res.RunID, e.Data["run_id"])
		if e.Level == logrus.WarnLevel {
			warned = true
			assert.Equal(t, stageEnvelope, e.Data["stage"])
			assert.ErrorIs(t, e.Data[logrus.ErrorKey].(error), ErrEmptyContent)
		}
	}
	assert.True(t, warned)
	assert.NotEmpty(t, res.RunID)
	assert.NotEqual(t, res.RunID, p.Process("").RunID)
}

// TestStream 分片按顺序交付，Final 之后不再回调
func TestStream(t *testing.T) {
	p, _ := newTestPipeline(t, WithChunkDelay(time.Millisecond))

	var got []Chunk
	res, err := p.Stream(context.Background(), "One. Two. Three.", func(c Chunk) error {
		got = append(got, c)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, res.Chunks, got)
	require.Len(t, got, 3)
	assert.True(t, got[2].Final)
	assert.Equal(t, "<p>One. Two. Three.</p>", res.Markup)
}

// TestStream_Cancel 取消只在分片边界生效
func TestStream_Cancel(t *testing.T) {
	p, _ := newTestPipeline(t, WithChunkDelay(time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int32
	_, err := p.Stream(ctx, "One. Two. Three.", func(c Chunk) error {
		atomic.AddInt32(&calls, 1)
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	_, err = p.Stream(ctx, "anything", func(Chunk) error {
		t.Fatal("no chunk should be delivered on a cancelled context")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

// TestStream_ConsumerError 回调出错时停止交付
func TestStream_ConsumerError(t *testing.T) {
	p, _ := newTestPipeline(t)
	stop := errors.New("stop")

	calls := 0
	_, err := p.Stream(context.Background(), "One. Two. Three.", func(c Chunk) error {
		calls++
		if c.Index == 1 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, calls)
}

// TestMetrics 计数器
func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	p, _ := newTestPipeline(t, WithMetrics(m))

	payload := `{"type":"options","message":"Pick","options":[{"label":"A","value":"a"}]}`
	p.Process("Pick one.")
	p.Process("```json\n" + payload + "\n```")
	p.Process("```json\n{\"type\":\"poll\"}\n```")
	p.Process("")
	_, err := p.Stream(context.Background(), "One. Two.", func(Chunk) error { return nil })
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.blocks.WithLabelValues("options", "valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.blocks.WithLabelValues("unknown", "unknown_type")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apologies))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.chunks))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.envelopeShapes.WithLabelValues("string")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.spans.WithLabelValues("JSON")))

	// nil Metrics 可以安全使用
	var none *Metrics
	assert.NotPanics(t, func() {
		none.apology()
		none.block("quiz", "valid")
		none.chunk()
	})
}

// TestConvert 同步便捷函数
func TestConvert(t *testing.T) {
	saved := Logger
	SetLogger(nil)
	defer SetLogger(saved)

	assert.Equal(t, "<p>hi</p>", Convert(`{"body":"{\"response\":\"hi\"}"}`))
	assert.Equal(t, DefaultApology, Convert(""))
}
