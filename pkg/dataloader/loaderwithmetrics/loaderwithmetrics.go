package loaderwithmetrics

import (
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	log "github.com/sirupsen/logrus"

	"github.com/openshift/testgrade/pkg/dataloader"
	"github.com/openshift/testgrade/pkg/xrayclient"
)

var loadMetric = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "testgrade_data_load_millis",
	Help:    "Milliseconds to collect data from Xray into the cache",
	Buckets: []float64{500, 1000, 5000, 10000, 30000, 60000, 300000, 600000, 1200000},
}, []string{"loader"})

var errorMetric = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "testgrade_data_load_errors",
	Help:    "Errors encountered while collecting data from Xray",
	Buckets: []float64{0, 1, 10, 100},
}, []string{"loader"})

// loaderOrder lists loaders that depend on the ones before them.
var loaderOrder = []string{"tests", "executions", "runs"}

type LoaderWithMetrics struct {
	loaders    []dataloader.DataLoader
	promPusher *push.Pusher
}

// New wraps the loaders. Metrics are pushed to pushgateway when it is set.
func New(wrappedLoaders []dataloader.DataLoader, pushgateway string) *LoaderWithMetrics {
	loader := &LoaderWithMetrics{
		loaders: wrappedLoaders,
	}
	loader.sortLoaders()

	if pushgateway != "" {
		loader.promPusher = push.New(pushgateway, "testgrade-plan-loader")
		loader.promPusher.Collector(errorMetric)
		loader.promPusher.Collector(loadMetric)
		for _, c := range xrayclient.Collectors() {
			loader.promPusher.Collector(c)
		}
	}

	return loader
}

// sortLoaders puts known loaders in dependency order ahead of unknown ones, which keep
// their relative order.
func (l *LoaderWithMetrics) sortLoaders() {
	rank := func(name string) int {
		for i, n := range loaderOrder {
			if n == name {
				return i
			}
		}
		return len(loaderOrder)
	}
	sort.SliceStable(l.loaders, func(i, j int) bool {
		return rank(l.loaders[i].Name()) < rank(l.loaders[j].Name())
	})
}

func (l *LoaderWithMetrics) Name() string {
	return "metrics"
}

func (l *LoaderWithMetrics) Load() {
	overallStart := time.Now()
	log.Infof("starting %d loaders...", len(l.loaders))
	for _, loader := range l.loaders {
		log.Infof("starting loader %q with metrics wrapper", loader.Name())
		start := time.Now()
		loader.Load()
		totalTime := time.Since(start)
		log.Infof("loader %q complete after %+v", loader.Name(), totalTime)

		loadMetric.WithLabelValues(loader.Name()).Observe(float64(totalTime.Milliseconds()))
		errorMetric.WithLabelValues(loader.Name()).Observe(float64(len(loader.Errors())))

		if len(loader.Errors()) > 0 {
			log.Warnf("loader %q failed, skipping the remaining loaders", loader.Name())
			break
		}
	}
	overallDuration := time.Since(overallStart)
	log.Infof("%d loaders finished in %+v...", len(l.loaders), overallDuration)
	loadMetric.WithLabelValues("total").Observe(float64(overallDuration.Milliseconds()))

	if l.promPusher != nil {
		log.Info("pushing metrics to prometheus gateway")
		if err := l.promPusher.Add(); err != nil {
			log.WithError(err).Error("could not push to prometheus pushgateway")
		} else {
			log.Info("successfully pushed metrics to prometheus gateway")
		}
	}
}

func (l *LoaderWithMetrics) Errors() []error {
	var errs []error
	for _, loader := range l.loaders {
		for _, err := range loader.Errors() {
			errs = append(errs, errors.Wrap(err, fmt.Sprintf("loader %q returned error", loader.Name())))
		}
	}
	return errs
}
