package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Register registers the collector with the default prometheus registry. If an
// equivalent collector was already registered, the existing one is returned so
// package level collectors can be safely re-initialized.
func Register(c prometheus.Collector) prometheus.Collector {
	if err := prometheus.Register(c); err != nil {
		if e, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return e.ExistingCollector
		}

		logrus.StandardLogger().WithError(err).Warn("failed to register prometheus collector")
	}
	return c
}
