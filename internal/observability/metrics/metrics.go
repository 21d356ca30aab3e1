package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Config labels every series with the running service.
type Config struct {
	ServiceName string
	Environment string
}

const (
	MovementSourceSale   = "sale"
	MovementSourceReport = "report"
)

// POSMetrics counts register activity. A nil *POSMetrics is valid and drops
// every observation.
type POSMetrics struct {
	sales           *prometheus.CounterVec
	revenue         *prometheus.CounterVec
	reports         prometheus.Counter
	transitions     *prometheus.CounterVec
	stockMovements  *prometheus.CounterVec
	lowStockCrossed *prometheus.CounterVec
	lowStock        prometheus.Gauge
	commitDuration  *prometheus.HistogramVec
}

func New(registerer prometheus.Registerer, cfg Config) *POSMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "snackbar"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &POSMetrics{
		sales: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "snackbar_sales_total",
			Help:        "Registered sales by payment method.",
			ConstLabels: constLabels,
		}, []string{"payment_method"}),
		revenue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "snackbar_sales_revenue_total",
			Help:        "Sum of sale totals by payment method.",
			ConstLabels: constLabels,
		}, []string{"payment_method"}),
		reports: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "snackbar_usage_reports_total",
			Help:        "Registered daily usage reports.",
			ConstLabels: constLabels,
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "snackbar_lifecycle_transitions_total",
			Help:        "Soft delete, restore and purge operations by record kind.",
			ConstLabels: constLabels,
		}, []string{"kind", "action"}),
		stockMovements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "snackbar_stock_movements_total",
			Help:        "Ingredient stock deductions by source.",
			ConstLabels: constLabels,
		}, []string{"source"}),
		lowStockCrossed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "snackbar_low_stock_crossings_total",
			Help:        "Deductions that moved an ingredient into low stock.",
			ConstLabels: constLabels,
		}, []string{"source"}),
		lowStock: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "snackbar_low_stock_ingredients",
			Help:        "Ingredients at or below their minimum stock.",
			ConstLabels: constLabels,
		}),
		commitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "snackbar_store_commit_duration_seconds",
			Help:        "Latency of store transaction commits.",
			Buckets:     []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			ConstLabels: constLabels,
		}, []string{"result"}),
	}

	registerer.MustRegister(
		m.sales,
		m.revenue,
		m.reports,
		m.transitions,
		m.stockMovements,
		m.lowStockCrossed,
		m.lowStock,
		m.commitDuration,
	)
	return m
}

func (m *POSMetrics) ObserveSale(paymentMethod string, total decimal.Decimal) {
	if m == nil {
		return
	}
	m.sales.WithLabelValues(paymentMethod).Inc()
	m.revenue.WithLabelValues(paymentMethod).Add(total.InexactFloat64())
}

func (m *POSMetrics) IncReport() {
	if m == nil {
		return
	}
	m.reports.Inc()
}

func (m *POSMetrics) IncTransition(kind, action string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(kind, action).Inc()
}

func (m *POSMetrics) AddStockMovements(source string, count, crossedLowStock int) {
	if m == nil {
		return
	}
	m.stockMovements.WithLabelValues(source).Add(float64(count))
	if crossedLowStock > 0 {
		m.lowStockCrossed.WithLabelValues(source).Add(float64(crossedLowStock))
	}
}

func (m *POSMetrics) SetLowStock(count int) {
	if m == nil {
		return
	}
	m.lowStock.Set(float64(count))
}

func (m *POSMetrics) ObserveCommit(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.commitDuration.WithLabelValues(result).Observe(elapsed.Seconds())
}
