package tutormark

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 管道计数器；nil 值可以安全调用，全部为空操作
type Metrics struct {
	envelopeShapes *prometheus.CounterVec
	spans          *prometheus.CounterVec
	blocks         *prometheus.CounterVec
	apologies      prometheus.Counter
	chunks         prometheus.Counter
}

// NewMetrics 创建计数器并注册到 reg；reg 为 nil 时不注册
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		envelopeShapes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutormark_envelope_shapes_total",
			Help: "Responses processed, by the envelope shape the content was extracted from.",
		}, []string{"shape"}),
		spans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutormark_spans_protected_total",
			Help: "Protected spans replaced by placeholders, by kind.",
		}, []string{"kind"}),
		blocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutormark_interactive_blocks_total",
			Help: "Interactive JSON blocks seen, by type and outcome.",
		}, []string{"type", "outcome"}),
		apologies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tutormark_apologies_total",
			Help: "Responses answered with the apology message.",
		}),
		chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tutormark_chunks_emitted_total",
			Help: "Chunks delivered to consumers.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.envelopeShapes, m.spans, m.blocks, m.apologies, m.chunks)
	}
	return m
}

func (m *Metrics) shape(s string) {
	if m != nil {
		m.envelopeShapes.WithLabelValues(s).Inc()
	}
}

func (m *Metrics) span(kind string) {
	if m != nil {
		m.spans.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) block(typ, outcome string) {
	if m != nil {
		m.blocks.WithLabelValues(typ, outcome).Inc()
	}
}

func (m *Metrics) apology() {
	if m != nil {
		m.apologies.Inc()
	}
}

func (m *Metrics) chunk() {
	if m != nil {
		m.chunks.Inc()
	}
}
