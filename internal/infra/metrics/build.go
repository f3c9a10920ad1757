package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(buildInfo)
}

var buildInfo = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "upibot_build_info",
		Help: "Constant 1, labelled with build metadata.",
	},
	[]string{"version", "commit", "goversion"},
)

func SetBuildInfo(version, commit string) {
	buildInfo.WithLabelValues(version, commit, runtime.Version()).Set(1)
}
