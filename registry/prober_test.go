package registry_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/stepscale/autoscaler/fakes"
	"github.com/stepscale/autoscaler/models"
	. "github.com/stepscale/autoscaler/registry"

	"code.cloudfoundry.org/clock/fakeclock"
	"code.cloudfoundry.org/lager/v3/lagertest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/tedsuo/ifrit"
)

var _ = Describe("Prober", func() {
	var (
		logger         *lagertest.TestLogger
		fclock         *fakeclock.FakeClock
		orchClient     *fakes.FakeOrchestratorClient
		directory      *fakes.FakeDiscoveryClient
		healthRegistry *Registry
		prober         *Prober
		process        ifrit.Process

		probeLock   sync.Mutex
		probed      []string
		probeErrors map[string]error
	)

	probe := func(_ context.Context, address string) error {
		probeLock.Lock()
		defer probeLock.Unlock()
		probed = append(probed, address)
		return probeErrors[address]
	}

	probedAddresses := func() []string {
		probeLock.Lock()
		defer probeLock.Unlock()
		return append([]string{}, probed...)
	}

	BeforeEach(func() {
		logger = lagertest.NewTestLogger("prober-test")
		fclock = fakeclock.NewFakeClock(time.Now())
		orchClient = &fakes.FakeOrchestratorClient{}
		directory = &fakes.FakeDiscoveryClient{}
		healthRegistry = New(logger, "payment-service", 3, directory)
		probed = nil
		probeErrors = map[string]error{}

		orchClient.ListReplicasReturns([]models.Replica{
			{Id: "replica-0", Address: "10.0.0.1:8080"},
			{Id: "replica-1", Address: "10.0.0.2:8080"},
		}, nil)

		prober = NewProber(logger, fclock, 10*time.Second, 3*time.Second, 1000,
			"payment-service-guid", orchClient, healthRegistry, probe)
	})

	JustBeforeEach(func() {
		process = ifrit.Background(prober)
		Eventually(process.Ready()).Should(BeClosed())
	})

	AfterEach(func() {
		process.Signal(os.Interrupt)
		Eventually(process.Wait()).Should(Receive(BeNil()))
	})

	It("refreshes the replica set and probes every replica each cycle", func() {
		fclock.WaitForWatcherAndIncrement(10 * time.Second)

		Eventually(orchClient.ListReplicasCallCount).Should(Equal(1))
		_, serviceId := orchClient.ListReplicasArgsForCall(0)
		Expect(serviceId).To(Equal("payment-service-guid"))

		Eventually(probedAddresses).Should(ConsistOf("10.0.0.1:8080", "10.0.0.2:8080"))
		Eventually(directory.RegisterCallCount).Should(Equal(2))
	})

	It("feeds probe failures into the registry", func() {
		probeLock.Lock()
		probeErrors["10.0.0.2:8080"] = errors.New("connection refused")
		probeLock.Unlock()

		fclock.WaitForWatcherAndIncrement(10 * time.Second)

		// only the healthy replica gets registered
		Eventually(directory.RegisterCallCount).Should(Equal(1))
		_, _, replicaId, _ := directory.RegisterArgsForCall(0)
		Expect(replicaId).To(Equal("replica-0"))
	})

	It("keeps probing on orchestrator errors using the known replica set", func() {
		fclock.WaitForWatcherAndIncrement(10 * time.Second)
		Eventually(directory.RegisterCallCount).Should(Equal(2))

		orchClient.ListReplicasReturns(nil, errors.New("orchestrator down"))
		fclock.WaitForWatcherAndIncrement(10 * time.Second)

		Eventually(orchClient.ListReplicasCallCount).Should(Equal(2))
		Eventually(func() int { return len(probedAddresses()) }).Should(Equal(4))
	})
})
