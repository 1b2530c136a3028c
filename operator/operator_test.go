package operator_test

import (
	"context"
	"os"
	"sync"
	"time"

	. "github.com/stepscale/autoscaler/operator"

	"code.cloudfoundry.org/clock/fakeclock"
	"code.cloudfoundry.org/lager/v3/lagertest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/tedsuo/ifrit"
)

type countingOperator struct {
	mu    sync.Mutex
	count int
}

func (o *countingOperator) Operate(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.count++
}

func (o *countingOperator) operations() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.count
}

var _ = Describe("OperatorRunner", func() {
	var (
		op      *countingOperator
		fclock  *fakeclock.FakeClock
		runner  *OperatorRunner
		process ifrit.Process
	)

	interval := time.Hour

	BeforeEach(func() {
		op = &countingOperator{}
		fclock = fakeclock.NewFakeClock(time.Now())
		logger := lagertest.NewTestLogger("operator-runner-test")
		runner = NewOperatorRunner(op, interval, fclock, logger)
	})

	JustBeforeEach(func() {
		process = ifrit.Background(runner)
		Eventually(process.Ready()).Should(BeClosed())
	})

	AfterEach(func() {
		process.Signal(os.Interrupt)
		Eventually(process.Wait()).Should(Receive(BeNil()))
	})

	It("does not operate before the first interval elapses", func() {
		Consistently(op.operations).Should(BeZero())
	})

	It("operates once per interval", func() {
		fclock.WaitForWatcherAndIncrement(interval)
		Eventually(op.operations).Should(Equal(1))

		fclock.WaitForWatcherAndIncrement(interval)
		Eventually(op.operations).Should(Equal(2))
	})

	It("stops operating once signalled", func() {
		fclock.WaitForWatcherAndIncrement(interval)
		Eventually(op.operations).Should(Equal(1))

		process.Signal(os.Interrupt)
		Eventually(process.Wait()).Should(Receive(BeNil()))

		fclock.Increment(2 * interval)
		Consistently(op.operations).Should(Equal(1))
	})
})
