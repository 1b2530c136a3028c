package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/stepscale/autoscaler/models"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
	cache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
)

// NewStaleSampleCounter is shared by all pollers of a service so duplicate
// and out-of-order drops land on one series.
func NewStaleSampleCounter() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "autoscaler",
		Subsystem: "metric_poller",
		Name:      "stale_samples_dropped_total",
		Help:      "Number of out-of-order or duplicate metric samples dropped before evaluation",
	})
}

// MetricPoller polls one metric stream at its alarm's period and feeds the
// samples to the alarm evaluator. The metric API gives no ordering or
// dedup guarantee, so the poller enforces both: timestamps must be
// monotonically non-decreasing, and at most one sample per window is let
// through.
type MetricPoller struct {
	logger        lager.Logger
	pclock        clock.Clock
	metricName    string
	dimensions    map[string]string
	period        time.Duration
	aggregation   models.Aggregation
	metricClient  MetricClient
	sampleChan    chan<- *models.MetricSample
	doneChan      chan bool
	seen          *cache.Cache
	lastTimestamp int64
	staleCounter  prometheus.Counter
}

func NewMetricPoller(logger lager.Logger, pclock clock.Clock, metricName string, dimensions map[string]string,
	period time.Duration, aggregation models.Aggregation, metricClient MetricClient,
	sampleChan chan<- *models.MetricSample, staleCounter prometheus.Counter) *MetricPoller {
	return &MetricPoller{
		logger:       logger.Session("metric-poller", lager.Data{"metricName": metricName}),
		pclock:       pclock,
		metricName:   metricName,
		dimensions:   dimensions,
		period:       period,
		aggregation:  aggregation,
		metricClient: metricClient,
		sampleChan:   sampleChan,
		doneChan:     make(chan bool),
		seen:         cache.New(2*period, period),
		staleCounter: staleCounter,
	}
}

func (p *MetricPoller) Start() {
	go p.start()
	p.logger.Info("started", lager.Data{"period": p.period})
}

func (p *MetricPoller) start() {
	ticker := p.pclock.NewTicker(p.period)
	defer ticker.Stop()
	for {
		select {
		case <-p.doneChan:
			return
		case <-ticker.C():
			p.poll()
		}
	}
}

func (p *MetricPoller) Stop() {
	close(p.doneChan)
	p.logger.Info("stopped")
}

func (p *MetricPoller) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), p.period)
	defer cancel()

	sample, err := p.metricClient.Query(ctx, p.metricName, p.dimensions, p.period, p.aggregation)
	if err != nil {
		p.logger.Error("failed-querying-metric", err)
		return
	}
	if sample == nil {
		p.logger.Debug("no-sample-available")
		return
	}

	if sample.Timestamp < p.lastTimestamp {
		p.logger.Debug("dropping-out-of-order-sample", lager.Data{"timestamp": sample.Timestamp, "lastTimestamp": p.lastTimestamp})
		p.staleCounter.Inc()
		return
	}

	windowKey := fmt.Sprintf("%s/%d", p.metricName, sample.Timestamp)
	if _, dup := p.seen.Get(windowKey); dup {
		p.logger.Debug("dropping-duplicate-sample", lager.Data{"timestamp": sample.Timestamp})
		p.staleCounter.Inc()
		return
	}
	p.seen.SetDefault(windowKey, struct{}{})
	p.lastTimestamp = sample.Timestamp

	select {
	case p.sampleChan <- sample:
	case <-p.doneChan:
	}
}
