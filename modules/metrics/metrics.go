// Package metrics contains the prometheus metrics exposed by mediakit objects.
//
// Metrics are updated whether or not they are registered; RegisterMetrics
// attaches them to a registry chosen by the embedding application.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "mediakit"

var (
	// ObjectsCreated counts reference-counted objects initialized, by class.
	ObjectsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "comobj",
			Name:      "objects_created_total",
			Help:      "Total number of reference-counted objects created.",
		},
		[]string{"class"},
	)

	// ObjectsDestroyed counts objects whose refcount reached zero, by class.
	ObjectsDestroyed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "comobj",
			Name:      "objects_destroyed_total",
			Help:      "Total number of reference-counted objects destroyed.",
		},
		[]string{"class"},
	)

	// QueryFailures counts QueryInterface calls for unsupported capabilities.
	QueryFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "comobj",
			Name:      "query_failures_total",
			Help:      "Total number of capability queries answered with no such interface.",
		},
		[]string{"class"},
	)

	// RegionLoads counts pixel region loads by result.
	RegionLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pixelregion",
			Name:      "loads_total",
			Help:      "Total number of pixel region loads by result.",
		},
		[]string{"result"},
	)

	// TexelsConverted counts destination texels written by the pipeline.
	TexelsConverted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pixelregion",
			Name:      "texels_converted_total",
			Help:      "Total number of destination texels written.",
		},
	)

	// LoadDuration tracks region load latency.
	LoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pixelregion",
			Name:      "load_duration_seconds",
			Help:      "Pixel region load duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
	)

	// TransformSamples counts samples seen by transforms, by direction and result.
	TransformSamples = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transform",
			Name:      "samples_total",
			Help:      "Total number of samples processed by transforms.",
		},
		[]string{"direction", "result"},
	)
)

// RegisterMetrics registers all mediakit metrics with the given prometheus registerer.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(ObjectsCreated)
	reg.MustRegister(ObjectsDestroyed)
	reg.MustRegister(QueryFailures)
	reg.MustRegister(RegionLoads)
	reg.MustRegister(TexelsConverted)
	reg.MustRegister(LoadDuration)
	reg.MustRegister(TransformSamples)
}
