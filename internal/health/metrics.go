package health

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var checkStatus = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "gateway",
		Subsystem: "health",
		Name:      "check_status",
		Help:      "Last readiness check result (1=ok, 0=failed)",
	},
	[]string{"check"},
)

func recordCheck(name string, ok bool) {
	value := 0.0
	if ok {
		value = 1
	}
	checkStatus.WithLabelValues(name).Set(value)
}
