package statistics

import (
	"github.com/billtubbs/pid-ref/internal/control_loop"
	"github.com/billtubbs/pid-ref/internal/pid"
	"github.com/prometheus/client_golang/prometheus"
)

const loopSubsystem = "loop"

var modes = []pid.Mode{pid.ModeAuto, pid.ModeTrack, pid.ModeManual}

type LoopCollector struct {
	loops []control_loop.ControlLoop

	u     *prometheus.Desc
	r     *prometheus.Desc
	y     *prometheus.Desc
	yf    *prometheus.Desc
	dyf   *prometheus.Desc
	txAvg *prometheus.Desc

	samples           *prometheus.Desc
	errors            *prometheus.Desc
	rediscretizations *prometheus.Desc

	mode *prometheus.Desc
}

func NewLoopCollector(loops []control_loop.ControlLoop) *LoopCollector {
	return &LoopCollector{
		loops: loops,
		u: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "u"),
			"Control signal applied by the loop",
			[]string{"id"}, nil,
		),
		r: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "r"),
			"Reference of the loop",
			[]string{"id"}, nil,
		),
		y: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "y"),
			"Last process measurement of the loop",
			[]string{"id"}, nil,
		),
		yf: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "yf"),
			"Filtered process measurement of the loop",
			[]string{"id"}, nil,
		),
		dyf: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "dyf"),
			"Filtered derivative of the process measurement of the loop",
			[]string{"id"}, nil,
		),
		txAvg: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "tx_avg"),
			"Average execution period of the loop, normalized to its sample time",
			[]string{"id"}, nil,
		),
		samples: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "samples_total"),
			"Number of samples computed by the loop",
			[]string{"id"}, nil,
		),
		errors: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "errors_total"),
			"Number of failed or skipped samples of the loop",
			[]string{"id"}, nil,
		),
		rediscretizations: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "rediscretizations_total"),
			"Number of measurement filter rediscretizations caused by a changed execution period",
			[]string{"id"}, nil,
		),
		mode: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "mode"),
			"Mode of the last sample of the loop (1 for the active mode)",
			[]string{"id", "mode"}, nil,
		),
	}
}

func (collector *LoopCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.u
	ch <- collector.r
	ch <- collector.y
	ch <- collector.yf
	ch <- collector.dyf
	ch <- collector.txAvg
	ch <- collector.samples
	ch <- collector.errors
	ch <- collector.rediscretizations
	ch <- collector.mode
}

// Collect implements required collect function for all prometheus collectors
func (collector *LoopCollector) Collect(ch chan<- prometheus.Metric) {
	for _, loop := range collector.loops {
		s := loop.Snapshot()
		id := s.ID

		ch <- prometheus.MustNewConstMetric(collector.u, prometheus.GaugeValue, s.Result.U, id)
		ch <- prometheus.MustNewConstMetric(collector.r, prometheus.GaugeValue, s.Command.R, id)
		ch <- prometheus.MustNewConstMetric(collector.y, prometheus.GaugeValue, s.Y, id)
		ch <- prometheus.MustNewConstMetric(collector.yf, prometheus.GaugeValue, s.Result.Yf, id)
		ch <- prometheus.MustNewConstMetric(collector.dyf, prometheus.GaugeValue, s.Result.Dyf, id)
		ch <- prometheus.MustNewConstMetric(collector.txAvg, prometheus.GaugeValue, s.TxAvg, id)
		ch <- prometheus.MustNewConstMetric(collector.samples, prometheus.CounterValue, float64(s.Samples), id)
		ch <- prometheus.MustNewConstMetric(collector.errors, prometheus.CounterValue, float64(s.Errors), id)
		ch <- prometheus.MustNewConstMetric(collector.rediscretizations, prometheus.CounterValue, float64(s.Rediscretizations), id)

		for _, mode := range modes {
			value := 0.0
			if s.Samples > 0 && s.Result.Mode == mode {
				value = 1
			}
			ch <- prometheus.MustNewConstMetric(collector.mode, prometheus.GaugeValue, value, id, string(mode))
		}
	}
}
