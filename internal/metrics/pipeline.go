package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "extrinsicscope"

var (
	pipelineBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "blocks_total",
		Help:      "Count of block processing passes.",
	}, []string{"chain", "status"})

	pipelineBlockDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "block_duration_seconds",
		Help:      "Duration of a block processing pass.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"chain", "status"})

	pipelineRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "records_total",
		Help:      "Count of transaction records persisted.",
	}, []string{"chain"})

	pipelineDuplicatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "duplicate_blocks_total",
		Help:      "Count of block hashes ignored because they were just processed.",
	}, []string{"chain"})

	processorMatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "processor",
		Name:      "matches_total",
		Help:      "Count of extrinsics classified, by matcher.",
	}, []string{"chain", "matcher"})

	processorSkipsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "processor",
		Name:      "skips_total",
		Help:      "Count of extrinsics skipped because they could not be processed.",
	}, []string{"chain", "reason"})
)

// Pipeline tracks metrics for block processing.
type Pipeline struct{}

func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// ObserveBlock records the outcome of one pass.
func (Pipeline) ObserveBlock(chainID string, err error, records int, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	pipelineBlocksTotal.WithLabelValues(label(chainID), status).Inc()
	pipelineBlockDuration.WithLabelValues(label(chainID), status).Observe(time.Since(started).Seconds())
	if records > 0 {
		pipelineRecordsTotal.WithLabelValues(label(chainID)).Add(float64(records))
	}
}

func (Pipeline) ObserveDuplicate(chainID string) {
	pipelineDuplicatesTotal.WithLabelValues(label(chainID)).Inc()
}

func (Pipeline) ObserveMatch(chainID, matcher string) {
	processorMatchesTotal.WithLabelValues(label(chainID), matcher).Inc()
}

func (Pipeline) ObserveSkip(chainID, reason string) {
	processorSkipsTotal.WithLabelValues(label(chainID), reason).Inc()
}

func label(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
