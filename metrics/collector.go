// Package metrics exports observer routing decisions as Prometheus
// counters. A Collector implements deepwatch.Recorder and can be shared by
// any number of observers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/reoring/deepwatch"
)

// DefaultNamespace prefixes every metric name unless overridden.
const DefaultNamespace = "deepwatch"

// Collector counts delivered, rejected, rolled back and suppressed changes
// and observer teardowns.
type Collector struct {
	notifications *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	rollbacks     *prometheus.CounterVec
	suppressions  *prometheus.CounterVec
	teardowns     prometheus.Counter
}

var _ deepwatch.Recorder = (*Collector)(nil)

// New returns a Collector under namespace, or DefaultNamespace when empty.
func New(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	counterVec := func(name, help, label string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, []string{label})
	}
	return &Collector{
		notifications: counterVec("notifications_total", "Changes delivered to the change callback.", "op"),
		rejections:    counterVec("rejections_total", "Changes vetoed by the validation hook.", "op"),
		rollbacks:     counterVec("rollbacks_total", "Rejected method calls that were undone.", "method"),
		suppressions:  counterVec("suppressions_total", "Changes dropped by the routing filters.", "reason"),
		teardowns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "teardowns_total",
			Help:      "Observers unsubscribed.",
		}),
	}
}

// Register registers every counter with reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, col := range []prometheus.Collector{c.notifications, c.rejections, c.rollbacks, c.suppressions, c.teardowns} {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister is Register that panics on error.
func (c *Collector) MustRegister(reg prometheus.Registerer) {
	if err := c.Register(reg); err != nil {
		panic(err)
	}
}

func (c *Collector) Notified(op string)       { c.notifications.WithLabelValues(op).Inc() }
func (c *Collector) Rejected(op string)       { c.rejections.WithLabelValues(op).Inc() }
func (c *Collector) RolledBack(method string) { c.rollbacks.WithLabelValues(method).Inc() }
func (c *Collector) Suppressed(reason string) { c.suppressions.WithLabelValues(reason).Inc() }
func (c *Collector) TornDown()                { c.teardowns.Inc() }
