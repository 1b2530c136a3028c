package aggregator_test

import (
	"errors"
	"time"

	. "github.com/stepscale/autoscaler/aggregator"
	"github.com/stepscale/autoscaler/fakes"
	"github.com/stepscale/autoscaler/models"

	"code.cloudfoundry.org/clock/fakeclock"
	"code.cloudfoundry.org/lager/v3/lagertest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("MetricPoller", func() {
	var (
		logger       *lagertest.TestLogger
		fclock       *fakeclock.FakeClock
		metricClient *fakes.FakeMetricClient
		sampleChan   chan *models.MetricSample
		poller       *MetricPoller
		baseTime     int64
	)

	sampleAt := func(value float64, timestamp int64) *models.MetricSample {
		return &models.MetricSample{
			MetricName: "cpu_utilization",
			Unit:       models.UnitPercentage,
			Value:      value,
			Timestamp:  timestamp,
			Window:     time.Minute,
		}
	}

	BeforeEach(func() {
		logger = lagertest.NewTestLogger("poller-test")
		fclock = fakeclock.NewFakeClock(time.Now())
		metricClient = &fakes.FakeMetricClient{}
		sampleChan = make(chan *models.MetricSample, 10)
		baseTime = time.Now().UnixNano()

		poller = NewMetricPoller(logger, fclock, "cpu_utilization",
			map[string]string{"service": "payment-service"}, time.Minute,
			models.AggregationAverage, metricClient, sampleChan, NewStaleSampleCounter())
	})

	JustBeforeEach(func() {
		poller.Start()
	})

	AfterEach(func() {
		poller.Stop()
	})

	It("queries the metric source every period and forwards the sample", func() {
		metricClient.QueryReturns(sampleAt(72, baseTime), nil)

		fclock.WaitForWatcherAndIncrement(time.Minute)

		var sample *models.MetricSample
		Eventually(sampleChan).Should(Receive(&sample))
		Expect(sample.Value).To(Equal(72.0))

		Eventually(metricClient.QueryCallCount).Should(Equal(1))
		_, metricName, dimensions, period, aggregation := metricClient.QueryArgsForCall(0)
		Expect(metricName).To(Equal("cpu_utilization"))
		Expect(dimensions).To(HaveKeyWithValue("service", "payment-service"))
		Expect(period).To(Equal(time.Minute))
		Expect(aggregation).To(Equal(models.AggregationAverage))
	})

	It("drops out-of-order samples", func() {
		metricClient.QueryReturnsOnCall(0, sampleAt(72, baseTime), nil)
		metricClient.QueryReturnsOnCall(1, sampleAt(50, baseTime-int64(time.Minute)), nil)
		metricClient.QueryReturnsOnCall(2, sampleAt(80, baseTime+int64(time.Minute)), nil)

		fclock.WaitForWatcherAndIncrement(time.Minute)
		Eventually(sampleChan).Should(Receive())

		fclock.WaitForWatcherAndIncrement(time.Minute)
		Eventually(metricClient.QueryCallCount).Should(Equal(2))
		Consistently(sampleChan).ShouldNot(Receive())

		fclock.WaitForWatcherAndIncrement(time.Minute)
		var sample *models.MetricSample
		Eventually(sampleChan).Should(Receive(&sample))
		Expect(sample.Value).To(Equal(80.0))
	})

	It("lets at most one sample per window through", func() {
		metricClient.QueryReturns(sampleAt(72, baseTime), nil)

		fclock.WaitForWatcherAndIncrement(time.Minute)
		Eventually(sampleChan).Should(Receive())

		fclock.WaitForWatcherAndIncrement(time.Minute)
		Eventually(metricClient.QueryCallCount).Should(Equal(2))
		Consistently(sampleChan).ShouldNot(Receive())
	})

	It("skips a failed query and keeps polling", func() {
		metricClient.QueryReturnsOnCall(0, nil, errors.New("metric api down"))
		metricClient.QueryReturnsOnCall(1, sampleAt(72, baseTime), nil)

		fclock.WaitForWatcherAndIncrement(time.Minute)
		Eventually(metricClient.QueryCallCount).Should(Equal(1))
		Consistently(sampleChan).ShouldNot(Receive())

		fclock.WaitForWatcherAndIncrement(time.Minute)
		Eventually(sampleChan).Should(Receive())
	})

	It("skips an empty result", func() {
		metricClient.QueryReturns(nil, nil)

		fclock.WaitForWatcherAndIncrement(time.Minute)
		Eventually(metricClient.QueryCallCount).Should(Equal(1))
		Consistently(sampleChan).ShouldNot(Receive())
	})
})
