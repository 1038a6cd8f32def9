package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	api "go.opentelemetry.io/otel/metric"
)

// Int64SyncGauge is an observable gauge reporting the last value set per attribute set
type Int64SyncGauge struct {
	mu     sync.RWMutex
	values map[attribute.Distinct]gaugeValue
}

type gaugeValue struct {
	value int64
	attrs attribute.Set
}

func NewInt64SyncGauge(meter api.Meter, name string, options ...api.Int64ObservableGaugeOption) (*Int64SyncGauge, error) {
	g := &Int64SyncGauge{values: make(map[attribute.Distinct]gaugeValue)}
	options = append(options, api.WithInt64Callback(g.observe))
	if _, err := meter.Int64ObservableGauge(name, options...); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Int64SyncGauge) observe(_ context.Context, observer api.Int64Observer) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, v := range g.values {
		observer.Observe(v.value, api.WithAttributeSet(v.attrs))
	}
	return nil
}

// Set records the value for the attributes. It does nothing on a nil gauge.
func (g *Int64SyncGauge) Set(value int64, attrs ...attribute.KeyValue) {
	if g == nil {
		return
	}
	set := attribute.NewSet(attrs...)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[set.Equivalent()] = gaugeValue{value: value, attrs: set}
}

// Value returns the value last set for the attributes
func (g *Int64SyncGauge) Value(attrs ...attribute.KeyValue) (int64, bool) {
	if g == nil {
		return 0, false
	}
	set := attribute.NewSet(attrs...)
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.values[set.Equivalent()]
	return v.value, ok
}
