package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestInt64SyncGauge(t *testing.T) {
	g, err := NewInt64SyncGauge(noop.Meter{}, "test.gauge")
	require.NoError(t, err)

	chainA := attribute.String("chain_id", "a")
	chainB := attribute.String("chain_id", "b")

	g.Set(3, chainA)
	g.Set(5, chainB)
	g.Set(1, chainA)

	v, ok := g.Value(chainA)
	require.True(t, ok)
	require.Equal(t, int64(1), v)

	v, ok = g.Value(chainB)
	require.True(t, ok)
	require.Equal(t, int64(5), v)

	_, ok = g.Value(attribute.String("chain_id", "c"))
	require.False(t, ok)
}

func TestInt64SyncGaugeNil(t *testing.T) {
	var g *Int64SyncGauge
	g.Set(1)
	_, ok := g.Value()
	require.False(t, ok)
}
