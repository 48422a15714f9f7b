package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	billOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lotto",
			Subsystem: "bills",
			Name:      "operations_total",
			Help:      "Bills created, updated and deleted.",
		},
		[]string{"op"},
	)

	ticketsSold = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lotto",
			Subsystem: "tickets",
			Name:      "sold_total",
			Help:      "Tickets stored, by bet type.",
		},
		[]string{"bet_type"},
	)

	salesAmount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lotto",
			Subsystem: "bills",
			Name:      "sales_amount_total",
			Help:      "Sum of the totals of created bills.",
		},
	)
)

func init() {
	Registry.MustRegister(
		billOps,
		ticketsSold,
		salesAmount,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// BillCreated counts a stored bill with its tickets and total.
func BillCreated(betTypes []string, total float64) {
	billOps.WithLabelValues("create").Inc()
	for _, bt := range betTypes {
		ticketsSold.WithLabelValues(bt).Inc()
	}
	salesAmount.Add(total)
}

func BillUpdated() {
	billOps.WithLabelValues("update").Inc()
}

func BillDeleted() {
	billOps.WithLabelValues("delete").Inc()
}
