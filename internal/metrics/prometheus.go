package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/polycryst/internal/engine"
)

const namespace = "polycryst"

// Collector exports engine progress as Prometheus metrics. It is an engine
// observer and step observer.
type Collector struct {
	StepsTotal      prometheus.Counter
	NucleationTotal prometheus.Counter
	StepDuration    prometheus.Histogram
	Grains          prometheus.Gauge
	StressIntensity prometheus.Gauge
	StrainIntensity prometheus.Gauge
	MeanEnergy      prometheus.Gauge
	MeanGrainSize   prometheus.Gauge
}

// NewCollector registers the collectors on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		StepsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Time steps completed",
		}),
		NucleationTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nucleation_events_total",
			Help:      "Grains created by recrystallization nucleation",
		}),
		StepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Wall time of one time step",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		Grains: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "grains",
			Help:      "Live grain count",
		}),
		StressIntensity: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stress_intensity_mpa",
			Help:      "Von Mises intensity of the mean stress at the last snapshot",
		}),
		StrainIntensity: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "strain_intensity",
			Help:      "Equivalent intensity of the mean strain at the last snapshot",
		}),
		MeanEnergy: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mean_stored_energy",
			Help:      "Mean stored energy at the last snapshot",
		}),
		MeanGrainSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mean_grain_size_meters",
			Help:      "Mean grain radius at the last snapshot",
		}),
	}
}

func (c *Collector) OnStep(s engine.StepStats) {
	c.StepsTotal.Inc()
	c.NucleationTotal.Add(float64(s.Nucleated))
	c.StepDuration.Observe(s.Duration.Seconds())
	c.Grains.Set(float64(s.Grains))
}

func (c *Collector) OnSnapshot(s engine.Snapshot) error {
	c.Grains.Set(float64(s.Grains))
	c.StressIntensity.Set(s.StressIntensity)
	c.StrainIntensity.Set(s.StrainIntensity)
	c.MeanEnergy.Set(s.MeanEnergy)
	c.MeanGrainSize.Set(s.MeanGrainSize)
	return nil
}

// Handler serves the metrics of reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
