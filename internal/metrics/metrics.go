package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "empdir"

// Metrics holds the collectors of one server instance. Each instance owns
// its registry so tests can build several without duplicate registration.
type Metrics struct {
	registry *prometheus.Registry

	Requests         *prometheus.CounterVec
	EmployeesAdded   prometheus.Counter
	EmployeeLookups  *prometheus.CounterVec
	StoreErrors      *prometheus.CounterVec
	Theme            *prometheus.GaugeVec
}

// New creates and registers the collectors. extra collectors, such as the
// connection pool stats, are registered alongside.
func New(extra ...prometheus.Collector) *Metrics {
	reg := prometheus.NewRegistry()

	this := &Metrics{
		registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		EmployeesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "employees_added_total",
			Help:      "Employees inserted successfully.",
		}),
		EmployeeLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "employee_lookups_total",
			Help:      "Employee lookups by outcome (found, not_found, error).",
		}, []string{"outcome"}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Failed persistence operations.",
		}, []string{"op"}),
		Theme: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "theme_info",
			Help:      "Always 1; labels carry the configured version and color.",
		}, []string{"version", "color"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		this.Requests,
		this.EmployeesAdded,
		this.EmployeeLookups,
		this.StoreErrors,
		this.Theme,
	)
	for _, c := range extra {
		reg.MustRegister(c)
	}
	return this
}

// SetTheme records the configured version and color.
func (this *Metrics) SetTheme(version, color string) {
	this.Theme.WithLabelValues(version, color).Set(1)
}

// ObserveRequest counts one finished request.
func (this *Metrics) ObserveRequest(route, method string, status int) {
	this.Requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (this *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(this.registry, promhttp.HandlerOpts{})
}
