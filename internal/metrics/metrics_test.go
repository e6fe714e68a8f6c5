package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPipelineObserveBlock(t *testing.T) {
	m := NewPipeline()
	before := testutil.ToFloat64(pipelineRecordsTotal.WithLabelValues("metrics-test"))

	m.ObserveBlock("metrics-test", nil, 3, time.Now())
	m.ObserveBlock("metrics-test", errors.New("boom"), 0, time.Now())

	assert.Equal(t, before+3, testutil.ToFloat64(pipelineRecordsTotal.WithLabelValues("metrics-test")))
	assert.Equal(t, float64(1), testutil.ToFloat64(pipelineBlocksTotal.WithLabelValues("metrics-test", "error")))
}

func TestProcessorCounters(t *testing.T) {
	m := NewPipeline()
	m.ObserveMatch("", "balances")
	m.ObserveSkip("", "decode")
	m.ObserveDuplicate("")

	assert.Equal(t, float64(1), testutil.ToFloat64(processorMatchesTotal.WithLabelValues("unknown", "balances")))
	assert.Equal(t, float64(1), testutil.ToFloat64(processorSkipsTotal.WithLabelValues("unknown", "decode")))
	assert.Equal(t, float64(1), testutil.ToFloat64(pipelineDuplicatesTotal.WithLabelValues("unknown")))
}

func TestRPCClientObserve(t *testing.T) {
	m := NewRPCClient("rpc-test")
	m.Observe("chain_getBlock", nil, time.Now())
	assert.Equal(t, float64(1), testutil.ToFloat64(rpcRequestsTotal.WithLabelValues("chain_getBlock", "rpc-test", "success")))
}
