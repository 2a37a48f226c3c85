package parking

import "github.com/prometheus/client_golang/prometheus"

// OccupancyCollector exposes engine state on /metrics. Every scrape reads one
// Status snapshot so the numbers agree with each other.
type OccupancyCollector struct {
	engine *Engine

	capacity    *prometheus.Desc
	occupied    *prometheus.Desc
	openTickets *prometheus.Desc
	revenue     *prometheus.Desc
	rate        *prometheus.Desc
}

func NewOccupancyCollector(engine *Engine) *OccupancyCollector {
	return &OccupancyCollector{
		engine: engine,
		capacity: prometheus.NewDesc("parking_spots_total",
			"Number of parking spots by vehicle class.",
			[]string{"vehicle_type"}, nil),
		occupied: prometheus.NewDesc("parking_spots_occupied",
			"Number of occupied parking spots by vehicle class.",
			[]string{"vehicle_type"}, nil),
		openTickets: prometheus.NewDesc("parking_tickets_open",
			"Number of tickets not yet settled.",
			nil, nil),
		revenue: prometheus.NewDesc("parking_revenue_total",
			"Sum of fees on settled tickets.",
			nil, nil),
		rate: prometheus.NewDesc("parking_rate_per_hour",
			"Flat hourly parking rate.",
			nil, nil),
	}
}

func (c *OccupancyCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.capacity
	ch <- c.occupied
	ch <- c.openTickets
	ch <- c.revenue
	ch <- c.rate
}

func (c *OccupancyCollector) Collect(ch chan<- prometheus.Metric) {
	status := c.engine.Status()

	for _, cs := range status.Classes {
		ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(cs.Capacity), cs.Class.String())
		ch <- prometheus.MustNewConstMetric(c.occupied, prometheus.GaugeValue, float64(cs.Occupied), cs.Class.String())
	}
	ch <- prometheus.MustNewConstMetric(c.openTickets, prometheus.GaugeValue, float64(status.OpenTickets))
	ch <- prometheus.MustNewConstMetric(c.revenue, prometheus.CounterValue, status.Revenue)
	ch <- prometheus.MustNewConstMetric(c.rate, prometheus.GaugeValue, c.engine.Rate())
}
