package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "startarot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "startarot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ConsultationsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "startarot_consultations_created_total",
			Help: "Total number of consultations created",
		},
		[]string{"path"}, // ai or human
	)

	ConsultationsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "startarot_consultations_processed_total",
			Help: "Total number of due consultations processed by the sweep",
		},
		[]string{"result"}, // answered, retried, dead_letter, skipped
	)

	SweepRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "startarot_sweep_runs_total",
			Help: "Total number of sweep invocations",
		},
	)

	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "startarot_llm_requests_total",
			Help: "Total number of completion API calls",
		},
		[]string{"status"}, // ok, error
	)

	LLMRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "startarot_llm_request_duration_seconds",
			Help:    "Completion API call duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30},
		},
	)

	WalletOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "startarot_wallet_operations_total",
			Help: "Total number of wallet ledger operations",
		},
		[]string{"type"},
	)

	WhatsAppQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "startarot_whatsapp_queue_length",
			Help: "Current length of the WhatsApp dispatch queue",
		},
	)

	WhatsAppSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "startarot_whatsapp_sent_total",
			Help: "Total number of WhatsApp dispatch attempts",
		},
		[]string{"status"}, // sent, failed
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordConsultationCreated(path string) {
	ConsultationsCreatedTotal.WithLabelValues(path).Inc()
}

func RecordConsultationProcessed(result string) {
	ConsultationsProcessedTotal.WithLabelValues(result).Inc()
}

func RecordLLMRequest(status string, duration float64) {
	LLMRequestsTotal.WithLabelValues(status).Inc()
	LLMRequestDuration.Observe(duration)
}

func RecordWalletOperation(txType string) {
	WalletOperationsTotal.WithLabelValues(txType).Inc()
}

func RecordWhatsAppDispatch(status string) {
	WhatsAppSentTotal.WithLabelValues(status).Inc()
}
