package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"parking-reservations/internal/parking"
)

// newMetricsRegistry exposes runtime metrics plus spot occupancy read from
// the lot on every scrape.
func newMetricsRegistry(lot *parking.InstrumentedLot) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "parking",
			Name:      "spots_total",
			Help:      "Number of parking spots in the registry.",
		}, func() float64 {
			return float64(lot.Registry().Len())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "parking",
			Name:      "spots_occupied",
			Help:      "Number of parking spots holding a reservation.",
		}, func() float64 {
			return float64(lot.Registry().Occupied())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "parking",
			Name:      "spots_available",
			Help:      "Number of parking spots that can be reserved now.",
		}, func() float64 {
			return float64(len(lot.Lot.Available()))
		}),
	)
	return reg
}
