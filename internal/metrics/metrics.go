package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons reported by the record filter.
const (
	DropDuplicate   = "duplicate"
	DropIncomplete  = "incomplete"
	DropWrongBridge = "wrong_bridge"
	DropUnsupported = "unsupported_chain"
)

// Enrichment outcomes.
const (
	OutcomeEnriched       = "enriched"
	OutcomeForeignSender  = "foreign_sender"
	OutcomeNotMined       = "not_mined"
	OutcomeMissingMsgHash = "missing_msg_hash"
	OutcomeError          = "error"
)

// Metrics holds the Prometheus collectors used by the reconciliation pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	feedRequestsTotal   *prometheus.CounterVec
	feedRequestDuration *prometheus.HistogramVec
	feedRetriesTotal    *prometheus.CounterVec

	recordsFetchedTotal prometheus.Counter
	recordsDroppedTotal *prometheus.CounterVec

	enrichmentOutcomesTotal *prometheus.CounterVec
	chainReadDuration       *prometheus.HistogramVec

	sinkWritesTotal *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		feedRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relayer_requests_total",
				Help: "Total number of relayer API requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),
		feedRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "relayer_request_duration_seconds",
				Help:    "Duration of relayer API requests in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"endpoint"},
		),
		feedRetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relayer_request_retries_total",
				Help: "Total number of retried relayer API requests",
			},
			[]string{"endpoint"},
		),
		recordsFetchedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bridge_records_fetched_total",
				Help: "Total number of raw event records received from the relayer",
			},
		),
		recordsDroppedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_records_dropped_total",
				Help: "Total number of raw event records dropped by the filter",
			},
			[]string{"reason"},
		),
		enrichmentOutcomesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_enrichment_outcomes_total",
				Help: "Total number of transaction enrichments by outcome",
			},
			[]string{"outcome"},
		),
		chainReadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chain_read_duration_seconds",
				Help:    "Duration of on-chain reads in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"chain_id", "method"},
		),
		sinkWritesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_sink_writes_total",
				Help: "Total number of reconciled transactions exported by sink",
			},
			[]string{"sink", "status"},
		),
	}
}

// RecordFeedRequest records a relayer API request with its duration.
func (m *Metrics) RecordFeedRequest(endpoint string, statusCode int, duration float64) {
	if m == nil {
		return
	}
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	m.feedRequestsTotal.WithLabelValues(endpoint, status).Inc()
	m.feedRequestDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordFeedRetry records a retried relayer API request.
func (m *Metrics) RecordFeedRetry(endpoint string) {
	if m == nil {
		return
	}
	m.feedRetriesTotal.WithLabelValues(endpoint).Inc()
}

// RecordRecordsFetched records raw records received from the relayer.
func (m *Metrics) RecordRecordsFetched(count int) {
	if m == nil {
		return
	}
	m.recordsFetchedTotal.Add(float64(count))
}

// RecordRecordDropped records a filtered-out raw record.
func (m *Metrics) RecordRecordDropped(reason string) {
	if m == nil {
		return
	}
	m.recordsDroppedTotal.WithLabelValues(reason).Inc()
}

// RecordEnrichment records the outcome of a transaction enrichment.
func (m *Metrics) RecordEnrichment(outcome string) {
	if m == nil {
		return
	}
	m.enrichmentOutcomesTotal.WithLabelValues(outcome).Inc()
}

// RecordChainRead records the duration of an on-chain read.
func (m *Metrics) RecordChainRead(chainID uint64, method string, duration float64) {
	if m == nil {
		return
	}
	m.chainReadDuration.WithLabelValues(strconv.FormatUint(chainID, 10), method).Observe(duration)
}

// RecordSinkWrite records exported transactions.
func (m *Metrics) RecordSinkWrite(sink, status string, count int) {
	if m == nil {
		return
	}
	m.sinkWritesTotal.WithLabelValues(sink, status).Add(float64(count))
}

// WriteTextfile writes the gathered metrics in the node_exporter textfile format.
func WriteTextfile(path string, gatherer prometheus.Gatherer) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
