package telemetry

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/hyperledger-labs/namada-relayer/log"
)

const (
	namespaceRoot = "relayer.namada"
)

// The instruments are no-op until InitializeMetrics is called
var (
	TxsSubmittedCounter   api.Int64Counter = noop.Int64Counter{}
	TxsConfirmedCounter   api.Int64Counter = noop.Int64Counter{}
	TxsUnconfirmedCounter api.Int64Counter = noop.Int64Counter{}
	QueriesCounter        api.Int64Counter = noop.Int64Counter{}
	PendingTxsGauge       *Int64SyncGauge

	meter = otel.Meter(name)
)

func InitializeMetrics() error {
	var err error

	// create the instrument "relayer.namada.txs_submitted"
	name := fmt.Sprintf("%s.txs_submitted", namespaceRoot)
	if TxsSubmittedCounter, err = meter.Int64Counter(
		name,
		api.WithUnit("1"),
		api.WithDescription("number of wrapper transactions accepted by broadcast_tx_sync"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	// create the instrument "relayer.namada.txs_confirmed"
	name = fmt.Sprintf("%s.txs_confirmed", namespaceRoot)
	if TxsConfirmedCounter, err = meter.Int64Counter(
		name,
		api.WithUnit("1"),
		api.WithDescription("number of transactions whose events were found after submission"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	// create the instrument "relayer.namada.txs_unconfirmed"
	name = fmt.Sprintf("%s.txs_unconfirmed", namespaceRoot)
	if TxsUnconfirmedCounter, err = meter.Int64Counter(
		name,
		api.WithUnit("1"),
		api.WithDescription("number of transactions still pending when the confirmation timed out"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	// create the instrument "relayer.namada.queries"
	name = fmt.Sprintf("%s.queries", namespaceRoot)
	if QueriesCounter, err = meter.Int64Counter(
		name,
		api.WithUnit("1"),
		api.WithDescription("number of storage queries sent to the node"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	// create the instrument "relayer.namada.pending_txs"
	name = fmt.Sprintf("%s.pending_txs", namespaceRoot)
	if PendingTxsGauge, err = NewInt64SyncGauge(
		meter,
		name,
		api.WithUnit("1"),
		api.WithDescription("number of transactions waiting for confirmation"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	return nil
}

func NewPrometheusExporter(addr string) (*prometheus.Exporter, error) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger := log.GetLogger().WithModule("core.metrics")
			logger.Fatal("Prometheus exporter server failed", err)
		}
	}()

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create the Prometheus Exporter: %v", err)
	}

	return exporter, nil
}
