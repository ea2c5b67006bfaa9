// Package metrics instruments the API client transport with Prometheus
// collectors on a private registry.
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "drugguard_client"

// ClientMetrics holds the collectors for one client.
type ClientMetrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// New creates ClientMetrics registered on a fresh registry.
func New() *ClientMetrics {
	m := &ClientMetrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of API requests that received a response.",
			},
			[]string{"code", "method"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of API requests in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "in_flight_requests",
			Help:      "Number of API requests currently in flight.",
		}),
	}
	m.registry.MustRegister(m.requests, m.duration, m.inFlight)

	return m
}

// Registry exposes the collectors, e.g. for promhttp.HandlerFor.
func (m *ClientMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Wrap instruments next. It fits drugguard.ClientConfig.WrapTransport.
func (m *ClientMetrics) Wrap(next http.RoundTripper) http.RoundTripper {
	return promhttp.InstrumentRoundTripperInFlight(m.inFlight,
		promhttp.InstrumentRoundTripperCounter(m.requests,
			promhttp.InstrumentRoundTripperDuration(m.duration, next),
		),
	)
}

// Sample is the request count for one method and status code.
type Sample struct {
	Method string
	Code   string
	Count  float64
}

func (s Sample) String() string {
	return fmt.Sprintf("%s %s: %.0f", strings.ToUpper(s.Method), s.Code, s.Count)
}

// Snapshot returns the request counters sorted by method then code.
func (m *ClientMetrics) Snapshot() ([]Sample, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gathering metrics: %w", err)
	}

	var samples []Sample
	for _, mf := range families {
		if mf.GetName() != namespace+"_requests_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			s := Sample{Count: metric.GetCounter().GetValue()}
			for _, lp := range metric.GetLabel() {
				switch lp.GetName() {
				case "method":
					s.Method = lp.GetValue()
				case "code":
					s.Code = lp.GetValue()
				}
			}
			samples = append(samples, s)
		}
	}

	sort.Slice(samples, func(i, j int) bool {
		if samples[i].Method != samples[j].Method {
			return samples[i].Method < samples[j].Method
		}

		return samples[i].Code < samples[j].Code
	})

	return samples, nil
}
