package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// OrdersCreatedTotal counts quick-sell order creation outcomes.
	OrdersCreatedTotal *prometheus.CounterVec
	// OrderValue records settled order grand totals in minor units.
	OrderValue *prometheus.HistogramVec
	// InvoicesRenderedTotal counts printable invoice render outcomes.
	InvoicesRenderedTotal *prometheus.CounterVec
	// DueRemindersTotal counts due reminder task outcomes.
	DueRemindersTotal *prometheus.CounterVec
	// StockAlertsTotal counts low-stock alert task outcomes.
	StockAlertsTotal *prometheus.CounterVec
	// AttendanceEventsTotal counts employee attendance check-ins and check-outs.
	AttendanceEventsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		OrdersCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Count of order creation outcomes.",
		}, []string{"payment_method", "result"})
		OrderValue = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_value_minor_units",
			Help:      "Distribution of settled order grand totals in minor units.",
			Buckets:   []float64{1000, 5000, 10000, 50000, 100000, 500000, 1000000},
		}, []string{"payment_method"})
		InvoicesRenderedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_rendered_total",
			Help:      "Count of printable invoice render outcomes.",
		}, []string{"result"})
		DueRemindersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "due_reminders_total",
			Help:      "Count of customer due reminder task outcomes.",
		}, []string{"result"})
		StockAlertsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_alerts_total",
			Help:      "Count of low-stock alert task outcomes.",
		}, []string{"result"})
		AttendanceEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attendance_events_total",
			Help:      "Count of attendance check-in and check-out events.",
		}, []string{"kind", "result"})

		mustRegisterCollector(reg, OrdersCreatedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				OrdersCreatedTotal = v
			}
		})
		mustRegisterCollector(reg, OrderValue, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				OrderValue = v
			}
		})
		mustRegisterCollector(reg, InvoicesRenderedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				InvoicesRenderedTotal = v
			}
		})
		mustRegisterCollector(reg, DueRemindersTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				DueRemindersTotal = v
			}
		})
		mustRegisterCollector(reg, StockAlertsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				StockAlertsTotal = v
			}
		})
		mustRegisterCollector(reg, AttendanceEventsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				AttendanceEventsTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
