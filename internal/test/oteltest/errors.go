package oteltest

import (
	"slices"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// NewMeterProviderWithError returns a new [metric.MeterProvider] whose meters fail to create any counter or histogram.
func NewMeterProviderWithError(e error) metric.MeterProvider {
	return WrapMeterProviderWithError(noop.NewMeterProvider(), e)
}

// WrapMeterProviderWithError wraps a [metric.MeterProvider] so that creating the named counters and histograms fails
// with the given error. Every one of them fails when no name is given.
func WrapMeterProviderWithError(p metric.MeterProvider, e error, instruments ...string) metric.MeterProvider {
	return &errorMeterProvider{
		MeterProvider: p,
		err:           e,
		instruments:   instruments,
	}
}

type errorMeterProvider struct {
	metric.MeterProvider

	err         error
	instruments []string
}

func (p *errorMeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	return &errorMeter{
		Meter:    p.MeterProvider.Meter(name, opts...),
		provider: p,
	}
}

func (p *errorMeterProvider) fails(instrument string) bool {
	return len(p.instruments) == 0 || slices.Contains(p.instruments, instrument)
}

type errorMeter struct {
	metric.Meter

	provider *errorMeterProvider
}

func (m *errorMeter) Int64Counter(name string, opts ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	if m.provider.fails(name) {
		return nil, m.provider.err
	}

	return m.Meter.Int64Counter(name, opts...)
}

func (m *errorMeter) Float64Counter(name string, opts ...metric.Float64CounterOption) (metric.Float64Counter, error) {
	if m.provider.fails(name) {
		return nil, m.provider.err
	}

	return m.Meter.Float64Counter(name, opts...)
}

func (m *errorMeter) Int64Histogram(name string, opts ...metric.Int64HistogramOption) (metric.Int64Histogram, error) {
	if m.provider.fails(name) {
		return nil, m.provider.err
	}

	return m.Meter.Int64Histogram(name, opts...)
}

func (m *errorMeter) Float64Histogram(name string, opts ...metric.Float64HistogramOption) (metric.Float64Histogram, error) {
	if m.provider.fails(name) {
		return nil, m.provider.err
	}

	return m.Meter.Float64Histogram(name, opts...)
}
