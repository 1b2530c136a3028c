package healthendpoint_test

import (
	"net/http"
	"net/http/httptest"

	. "github.com/stepscale/autoscaler/healthendpoint"
	"github.com/stepscale/autoscaler/models"

	"code.cloudfoundry.org/lager/v3/lagertest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
)

var _ = Describe("HealthRouter", func() {
	var (
		conf     models.HealthConfig
		registry *prometheus.Registry
		router   http.Handler
		resp     *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		conf = models.HealthConfig{Port: 8081}
		registry = prometheus.NewRegistry()
		logger := lagertest.NewTestLogger("health-router-test")
		RegisterCollectors(registry, []prometheus.Collector{
			prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "autoscaler",
				Name:      "noop",
				Help:      "Noop counter to exercise the gatherer",
			}),
		}, false, logger)
		resp = httptest.NewRecorder()
	})

	Context("without credentials", func() {
		JustBeforeEach(func() {
			var err error
			router, err = NewHealthRouter(conf, lagertest.NewTestLogger("health-router-test"), registry)
			Expect(err).NotTo(HaveOccurred())
		})

		It("serves the prometheus gatherer unauthenticated", func() {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			router.ServeHTTP(resp, req)

			Expect(resp.Code).To(Equal(http.StatusOK))
			Expect(resp.Body.String()).To(ContainSubstring("autoscaler_noop"))
		})
	})

	Context("with cleartext credentials", func() {
		BeforeEach(func() {
			conf.HealthCheckUsername = "operator"
			conf.HealthCheckPassword = "some-password"
		})

		JustBeforeEach(func() {
			var err error
			router, err = NewHealthRouter(conf, lagertest.NewTestLogger("health-router-test"), registry)
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects requests without basic auth", func() {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			router.ServeHTTP(resp, req)

			Expect(resp.Code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects requests with the wrong password", func() {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			req.SetBasicAuth("operator", "wrong-password")
			router.ServeHTTP(resp, req)

			Expect(resp.Code).To(Equal(http.StatusUnauthorized))
		})

		It("serves requests with the right credentials", func() {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			req.SetBasicAuth("operator", "some-password")
			router.ServeHTTP(resp, req)

			Expect(resp.Code).To(Equal(http.StatusOK))
			Expect(resp.Body.String()).To(ContainSubstring("autoscaler_noop"))
		})
	})
})

var _ = Describe("HTTPStatusCollectMiddleware", func() {
	It("tracks requests in flight", func() {
		collector := NewHTTPStatusCollector("autoscaler", "test")
		middleware := NewHTTPStatusCollectMiddleware(collector)

		inFlight := make(chan struct{})
		release := make(chan struct{})
		handler := middleware.Collect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			close(inFlight)
			<-release
		}))

		go handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		Eventually(inFlight).Should(BeClosed())
		Expect(gaugeValue(collector)).To(Equal(1.0))

		close(release)
		Eventually(func() float64 { return gaugeValue(collector) }).Should(Equal(0.0))
	})
})

func gaugeValue(collector prometheus.Collector) float64 {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)
	families, err := registry.Gather()
	Expect(err).NotTo(HaveOccurred())
	Expect(families).To(HaveLen(1))
	return families[0].GetMetric()[0].GetGauge().GetValue()
}
