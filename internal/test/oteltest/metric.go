package oteltest

import (
	"context"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel/attribute"
	metricsdk "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// metricReader exports everything it collected when it is shut down.
type metricReader struct {
	exporter metricsdk.Exporter
	metricsdk.Reader
}

func (r *metricReader) Shutdown(ctx context.Context) error {
	var metrics metricdata.ResourceMetrics

	if err := r.Reader.Collect(ctx, &metrics); err != nil {
		return err
	}

	if err := r.exporter.Export(ctx, &metrics); err != nil {
		return err
	}

	return r.Reader.Shutdown(ctx)
}

// Metric is a data point of an instrument.
type Metric struct {
	Name       string            `json:"Name"`
	Attributes map[string]string `json:"Attributes"`
	Last       any               `json:"Last,omitempty"`
	Sum        any               `json:"Sum,omitempty"`
	Count      any               `json:"Count,omitempty"`
}

// Attribute returns the value of an attribute of the data point.
func (m Metric) Attribute(key string) (string, bool) {
	v, ok := m.Attributes[key]

	return v, ok
}

// FindMetrics returns the data points of an instrument.
func FindMetrics(metrics []Metric, name string) []Metric {
	result := make([]Metric, 0, len(metrics))

	for _, m := range metrics {
		if m.Name == name {
			result = append(result, m)
		}
	}

	return result
}

type metricEncoder struct {
	*json.Encoder
}

func (e *metricEncoder) Encode(v any) error {
	var resMetrics *metricdata.ResourceMetrics

	switch rm := v.(type) {
	case *metricdata.ResourceMetrics:
		resMetrics = rm

	case metricdata.ResourceMetrics:
		resMetrics = &rm

	default:
		return e.Encoder.Encode(v)
	}

	metrics := make([]Metric, 0)

	for _, scopedMetrics := range resMetrics.ScopeMetrics {
		for _, scopedMetric := range scopedMetrics.Metrics {
			attrs := resMetrics.Resource.Attributes()
			attrs = append(attrs, attribute.String("instrumentation.name", scopedMetrics.Scope.Name))

			switch smd := scopedMetric.Data.(type) {
			case metricdata.Gauge[int64]:
				metrics = append(metrics, metricsFromGauge(scopedMetric.Name, smd, attrs)...)

			case metricdata.Gauge[float64]:
				metrics = append(metrics, metricsFromGauge(scopedMetric.Name, smd, attrs)...)

			case metricdata.Sum[int64]:
				metrics = append(metrics, metricsFromSum(scopedMetric.Name, smd, attrs)...)

			case metricdata.Sum[float64]:
				metrics = append(metrics, metricsFromSum(scopedMetric.Name, smd, attrs)...)

			case metricdata.Histogram[float64]:
				metrics = append(metrics, metricsFromHistogram(scopedMetric.Name, smd, attrs)...)

			case metricdata.Histogram[int64]:
				metrics = append(metrics, metricsFromHistogram(scopedMetric.Name, smd, attrs)...)
			}
		}
	}

	return e.Encoder.Encode(metrics)
}

func metricsFromGauge[N int64 | float64](name string, g metricdata.Gauge[N], attrs []attribute.KeyValue) []Metric {
	result := make([]Metric, 0, len(g.DataPoints))

	for _, dp := range g.DataPoints {
		result = append(result, Metric{
			Name:       name,
			Attributes: metricAttributes(attrs, dp.Attributes.ToSlice()),
			Last:       dp.Value,
		})
	}

	return result
}

func metricsFromSum[N int64 | float64](name string, g metricdata.Sum[N], attrs []attribute.KeyValue) []Metric {
	result := make([]Metric, 0, len(g.DataPoints))

	for _, dp := range g.DataPoints {
		result = append(result, Metric{
			Name:       name,
			Attributes: metricAttributes(attrs, dp.Attributes.ToSlice()),
			Sum:        dp.Value,
		})
	}

	return result
}

func metricsFromHistogram[N int64 | float64](name string, g metricdata.Histogram[N], attrs []attribute.KeyValue) []Metric {
	result := make([]Metric, 0, len(g.DataPoints))

	for _, dp := range g.DataPoints {
		result = append(result, Metric{
			Name:       name,
			Attributes: metricAttributes(attrs, dp.Attributes.ToSlice()),
			Count:      dp.Count,
			Sum:        dp.Sum,
		})
	}

	return result
}

func metricAttributes(groups ...[]attribute.KeyValue) map[string]string {
	result := make(map[string]string)

	for _, attrs := range groups {
		for _, attr := range attrs {
			result[string(attr.Key)] = attr.Value.Emit()
		}
	}

	return result
}
