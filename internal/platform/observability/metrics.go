package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Update outcome label values.
const (
	OutcomeSkipped   = "skipped"
	OutcomeCommand   = "command"
	OutcomeTriaged   = "triaged"
	OutcomeRecovered = "recovered"
)

var (
	UpdatesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_updates_total",
		Help: "Telegram updates consumed by the poller, by outcome",
	}, []string{"outcome"})

	PollErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triage_poll_errors_total",
		Help: "Failed getUpdates calls",
	})

	PollBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "triage_poll_batch_size",
		Help:    "Number of updates returned by one getUpdates call",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})

	CursorOffset = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "triage_cursor_offset",
		Help: "Last persisted delivery cursor",
	})

	CursorSaveErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triage_cursor_save_errors_total",
		Help: "Failed attempts to persist the delivery cursor",
	})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "triage_llm_request_duration_seconds",
		Help:    "Duration of LLM requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_llm_requests_total",
		Help: "LLM completion requests by status",
	}, []string{"status"})

	TriageFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_fallbacks_total",
		Help: "Triage calls downgraded to the inbox fallback, by reason",
	}, []string{"reason"})

	CaptureItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_capture_items_total",
		Help: "Capture items produced by triage, by display type",
	}, []string{"type"})

	NotionRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "triage_notion_request_duration_seconds",
		Help:    "Duration of Notion page creation requests",
		Buckets: prometheus.DefBuckets,
	})

	NotionPages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_notion_pages_total",
		Help: "Notion page creation attempts by status",
	}, []string{"status"})

	RepliesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "triage_replies_total",
		Help: "Replies sent back to Telegram by status",
	}, []string{"status"})
)
