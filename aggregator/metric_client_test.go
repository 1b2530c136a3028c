package aggregator_test

import (
	"context"
	"net/http"
	"time"

	. "github.com/stepscale/autoscaler/aggregator"
	"github.com/stepscale/autoscaler/models"

	"code.cloudfoundry.org/lager/v3/lagertest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("MetricClient", func() {
	var (
		fakeMetricApi *ghttp.Server
		client        MetricClient
		ctx           context.Context
	)

	retry := RetryConfig{
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		MaxElapsedTime:  100 * time.Millisecond,
	}

	dimensions := map[string]string{"service": "payment-service"}

	BeforeEach(func() {
		fakeMetricApi = ghttp.NewServer()
		logger := lagertest.NewTestLogger("metric-client-test")
		client = NewHTTPMetricClient(logger, fakeMetricApi.URL(), &http.Client{}, retry)
		ctx = context.Background()
	})

	AfterEach(func() {
		fakeMetricApi.Close()
	})

	Describe("Query", func() {
		It("queries one aggregated sample", func() {
			fakeMetricApi.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodGet, "/v1/metrics/cpu_utilization",
					"period=1m0s&aggregation=avg&dim.service=payment-service"),
				ghttp.RespondWithJSONEncoded(http.StatusOK, models.MetricSample{
					MetricName: "cpu_utilization",
					Unit:       models.UnitPercentage,
					Value:      85,
					Timestamp:  1000,
					Window:     time.Minute,
				}),
			))

			sample, err := client.Query(ctx, "cpu_utilization", dimensions, time.Minute, models.AggregationAverage)
			Expect(err).NotTo(HaveOccurred())
			Expect(sample).To(Equal(&models.MetricSample{
				MetricName: "cpu_utilization",
				Unit:       models.UnitPercentage,
				Value:      85,
				Timestamp:  1000,
				Window:     time.Minute,
			}))
		})

		It("retries transient failures before succeeding", func() {
			fakeMetricApi.AppendHandlers(
				ghttp.RespondWith(http.StatusInternalServerError, ""),
				ghttp.RespondWithJSONEncoded(http.StatusOK, models.MetricSample{MetricName: "cpu_utilization", Value: 42, Timestamp: 1000}),
			)

			sample, err := client.Query(ctx, "cpu_utilization", dimensions, time.Minute, models.AggregationAverage)
			Expect(err).NotTo(HaveOccurred())
			Expect(sample.Value).To(Equal(42.0))
			Expect(fakeMetricApi.ReceivedRequests()).To(HaveLen(2))
		})

		It("does not retry client errors", func() {
			fakeMetricApi.AppendHandlers(
				ghttp.RespondWith(http.StatusNotFound, ""),
			)

			_, err := client.Query(ctx, "unknown_metric", dimensions, time.Minute, models.AggregationAverage)
			Expect(err).To(MatchError(ContainSubstring("404")))
			Expect(fakeMetricApi.ReceivedRequests()).To(HaveLen(1))
		})

		It("fails on an unparsable body without retrying", func() {
			fakeMetricApi.AppendHandlers(
				ghttp.RespondWith(http.StatusOK, "not json"),
			)

			_, err := client.Query(ctx, "cpu_utilization", dimensions, time.Minute, models.AggregationAverage)
			Expect(err).To(MatchError(ContainSubstring("parse")))
			Expect(fakeMetricApi.ReceivedRequests()).To(HaveLen(1))
		})
	})
})
