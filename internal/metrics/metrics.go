// Package metrics holds the Prometheus instruments of the option pipeline.
// All collectors are registered with the global registry.  rocksopts runs
// once at startup and exits, so nothing scrapes it; WriteTextfile dumps the
// registry for the node-exporter textfile collector instead.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	OptionsAppliedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rocksopts_options_applied_total",
			Help: "Options whose value was taken from the environment.",
		})

	OptionsSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rocksopts_options_skipped_total",
			Help: "Options skipped because their feature gate was off.",
		})

	OptionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rocksopts_option_errors_total",
			Help: "Rejected option values by error kind.",
		}, []string{"kind"})

	SourcesLoadedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rocksopts_sources_loaded_total",
			Help: "Configuration layers merged into the environment, by source.",
		}, []string{"source"})
)

func init() {
	prometheus.MustRegister(
		OptionsAppliedTotal,
		OptionsSkippedTotal,
		OptionErrorsTotal,
		SourcesLoadedTotal,
	)
}

// WriteTextfile writes every registered metric to path in the text
// exposition format.  The file is replaced atomically.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
