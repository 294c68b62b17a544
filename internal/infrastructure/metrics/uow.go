package metrics

import (
	"uow-coordinator/internal/uow"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ uow.Recorder = (*UowRecorder)(nil)

type UowRecorder struct {
	units *prometheus.CounterVec
	ops   *prometheus.HistogramVec
}

func NewUowRecorder(reg prometheus.Registerer) *UowRecorder {
	f := promauto.With(reg)
	return &UowRecorder{
		units: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uow_units_total",
				Help: "Finished units of work by mode and outcome",
			},
			[]string{"name", "mode", "outcome"},
		),
		ops: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "uow_unit_operations",
				Help:    "Number of operations applied or discarded per unit of work",
				Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
			},
			[]string{"name", "mode"},
		),
	}
}

func (r *UowRecorder) ObserveUnit(name string, mode uow.Mode, outcome uow.Outcome, ops int) {
	r.units.WithLabelValues(name, string(mode), string(outcome)).Inc()
	r.ops.WithLabelValues(name, string(mode)).Observe(float64(ops))
}
