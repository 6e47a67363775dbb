package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "figma_mcp_http_requests_total",
		Help: "HTTP requests handled, by method and status code.",
	}, []string{"method", "code"})

	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "figma_mcp_tool_calls_total",
		Help: "Tool invocations, by tool name and outcome.",
	}, []string{"tool", "outcome"})

	toolCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "figma_mcp_tool_call_duration_seconds",
		Help:    "Tool invocation latency, including the backend round trip.",
		Buckets: prometheus.DefBuckets,
	}, []string{"tool"})

	sseStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "figma_mcp_sse_streams",
		Help: "Currently open SSE streams.",
	})
)
