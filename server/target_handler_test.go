package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/stepscale/autoscaler/capacity"
	"github.com/stepscale/autoscaler/fakes"
	"github.com/stepscale/autoscaler/models"
	"github.com/stepscale/autoscaler/registry"
	. "github.com/stepscale/autoscaler/server"

	"code.cloudfoundry.org/clock/fakeclock"
	"code.cloudfoundry.org/lager/v3/lagertest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	circuit "github.com/rubyist/circuitbreaker"
)

var _ = Describe("TargetHandler", func() {
	var (
		controller     *capacity.Controller
		healthRegistry *registry.Registry
		handler        *TargetHandler
		resp           *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		logger := lagertest.NewTestLogger("target-handler-test")
		fclock := fakeclock.NewFakeClock(time.Now())
		orchClient := &fakes.FakeOrchestratorClient{}
		historyDB := &fakes.FakeScalingHistoryDB{}

		var err error
		controller, err = capacity.NewController(logger, fclock, models.ScalableTarget{
			ServiceId:       "service-guid",
			MinCapacity:     2,
			MaxCapacity:     10,
			DesiredCapacity: 4,
		}, make(chan *models.CapacityDelta, 1), orchClient, circuit.NewConsecutiveBreaker(3), historyDB, 10*time.Second)
		Expect(err).NotTo(HaveOccurred())
		controller.Start()
		DeferCleanup(func() {
			go fclock.WaitForWatcherAndIncrement(11 * time.Second)
			controller.Stop()
		})

		directoryClient := &fakes.FakeDiscoveryClient{}
		healthRegistry = registry.New(logger, "payment-service", 3, directoryClient)
		healthRegistry.EnsureReplicas(context.Background(), []models.Replica{
			{Id: "replica-0", Address: "10.0.0.1:8080"},
			{Id: "replica-1", Address: "10.0.0.2:8080"},
		})
		Expect(healthRegistry.OnProbeResult(context.Background(), "replica-1", true)).To(Succeed())

		handler = NewTargetHandler(logger, controller, healthRegistry)
		resp = httptest.NewRecorder()
	})

	Describe("GetTarget", func() {
		It("returns the current scalable target", func() {
			req, err := http.NewRequest(http.MethodGet, "/v1/target", nil)
			Expect(err).NotTo(HaveOccurred())

			handler.GetTarget(resp, req)

			Expect(resp.Code).To(Equal(http.StatusOK))
			var target models.ScalableTarget
			Expect(json.Unmarshal(resp.Body.Bytes(), &target)).To(Succeed())
			Expect(target).To(Equal(models.ScalableTarget{
				ServiceId:       "service-guid",
				MinCapacity:     2,
				MaxCapacity:     10,
				DesiredCapacity: 4,
			}))
		})
	})

	Describe("GetReplicas", func() {
		It("returns the replica health records ordered by replica id", func() {
			req, err := http.NewRequest(http.MethodGet, "/v1/replicas", nil)
			Expect(err).NotTo(HaveOccurred())

			handler.GetReplicas(resp, req)

			Expect(resp.Code).To(Equal(http.StatusOK))
			var replicas []models.ReplicaHealth
			Expect(json.Unmarshal(resp.Body.Bytes(), &replicas)).To(Succeed())
			Expect(replicas).To(HaveLen(2))
			Expect(replicas[0].ReplicaId).To(Equal("replica-0"))
			Expect(replicas[0].State).To(Equal(models.ReplicaStateUnregistered))
			Expect(replicas[1].ReplicaId).To(Equal("replica-1"))
			Expect(replicas[1].State).To(Equal(models.ReplicaStateRegistered))
			Expect(replicas[1].Registered).To(BeTrue())
		})
	})
})
