package metrics

import (
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()

	matchedProcesses = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "botctl",
		Name:      "matched_processes",
		Help:      "Worker processes found by the most recent process table scan.",
	})

	signalsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "botctl",
		Name:      "signals_total",
		Help:      "Signals delivered to worker processes by signal and outcome.",
	}, []string{"signal", "outcome"})

	stopOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "botctl",
		Name:      "stop_total",
		Help:      "Completed termination sequences by outcome (clean, residual, cancelled).",
	}, []string{"outcome"})

	startOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "botctl",
		Name:      "start_total",
		Help:      "Start attempts by outcome.",
	}, []string{"outcome"})

	childExitCode = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "botctl",
		Name:      "child_exit_code",
		Help:      "Exit code of the last worker spawned by botctl (negated signal number when killed by a signal).",
	})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "botctl",
		Name:      "build_info",
		Help:      "Build metadata for the running botctl binary.",
	}, []string{"go_version", "vcs", "vcs_revision", "vcs_time", "vcs_modified"})

	buildInfoOnce sync.Once
)

func init() {
	registry.MustRegister(matchedProcesses, signalsSent, stopOutcomes, startOutcomes, childExitCode, buildInfo)
}

// Registry returns the Prometheus registry containing all botctl metrics.
func Registry() *prometheus.Registry {
	return registry
}

// WriteTextfile writes the current metrics to path in the text exposition
// format understood by the node exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, registry)
}

// SetMatchedProcesses records the size of the latest discovery result.
func SetMatchedProcesses(n int) {
	matchedProcesses.Set(float64(n))
}

// ObserveSignal counts a delivered signal. Outcome is one of "sent", "gone"
// or "failed".
func ObserveSignal(signal, outcome string) {
	if signal == "" || outcome == "" {
		return
	}
	signalsSent.WithLabelValues(signal, outcome).Inc()
}

// ObserveStop counts a finished termination sequence.
func ObserveStop(outcome string) {
	if outcome == "" {
		return
	}
	stopOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveStart counts a start attempt.
func ObserveStart(outcome string) {
	if outcome == "" {
		return
	}
	startOutcomes.WithLabelValues(outcome).Inc()
}

// SetChildExitCode records the exit status of the last spawned worker.
func SetChildExitCode(code int) {
	childExitCode.Set(float64(code))
}

// EmitBuildInfo publishes build metadata about the running binary.
func EmitBuildInfo() {
	buildInfoOnce.Do(func() {
		labels := prometheus.Labels{
			"go_version":   runtime.Version(),
			"vcs":          "",
			"vcs_revision": "",
			"vcs_time":     "",
			"vcs_modified": "",
		}
		if info, ok := debug.ReadBuildInfo(); ok {
			if info.GoVersion != "" {
				labels["go_version"] = info.GoVersion
			}
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs":
					labels["vcs"] = setting.Value
				case "vcs.revision":
					labels["vcs_revision"] = setting.Value
				case "vcs.time":
					labels["vcs_time"] = setting.Value
				case "vcs.modified":
					labels["vcs_modified"] = setting.Value
				}
			}
		}
		buildInfo.With(labels).Set(1)
	})
}
