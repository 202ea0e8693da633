package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SolarRequests  *prometheus.CounterVec
	RequestSeconds prometheus.Histogram
	RoofSegments   *prometheus.CounterVec
	StaleResponses prometheus.Counter
	GeocoderErrors prometheus.Counter
	ActiveSessions prometheus.Gauge
	InFlightClicks prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		SolarRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "helios_solar_requests_total",
			Help: "Total number of building insights lookups by outcome.",
		}, []string{"outcome"}),
		RequestSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "helios_solar_request_duration_seconds",
			Help:    "Duration of requests to the Solar API.",
			Buckets: prometheus.DefBuckets,
		}),
		RoofSegments: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "helios_roof_segments_total",
			Help: "Total number of roof segments seen by the renderer, by result.",
		}, []string{"result"}),
		StaleResponses: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "helios_stale_responses_total",
			Help: "Total number of responses discarded because a newer click was issued.",
		}),
		GeocoderErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "helios_geocoder_errors_total",
			Help: "Total number of failed reverse geocoding lookups.",
		}),
		ActiveSessions: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "helios_active_sessions",
			Help: "Current number of live map sessions.",
		}),
		InFlightClicks: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "helios_in_flight_clicks",
			Help: "Current number of clicks waiting for the Solar API.",
		}),
	}
}
