package operator_test

import (
	"context"
	"errors"
	"time"

	"github.com/stepscale/autoscaler/fakes"
	. "github.com/stepscale/autoscaler/operator"

	"code.cloudfoundry.org/clock/fakeclock"
	"code.cloudfoundry.org/lager/v3/lagertest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ScalingHistoryDbPruner", func() {
	var (
		historyDB *fakes.FakeScalingHistoryDB
		fclock    *fakeclock.FakeClock
		pruner    *ScalingHistoryDbPruner
	)

	retention := 10 * 24 * time.Hour

	BeforeEach(func() {
		historyDB = &fakes.FakeScalingHistoryDB{}
		fclock = fakeclock.NewFakeClock(time.Now())
		logger := lagertest.NewTestLogger("scaling-history-db-pruner-test")
		pruner = NewScalingHistoryDbPruner(historyDB, retention, fclock, logger)
	})

	It("prunes rows older than the retention", func() {
		pruner.Operate(context.Background())

		Expect(historyDB.PruneScalingHistoriesCallCount()).To(Equal(1))
		Expect(historyDB.PruneScalingHistoriesArgsForCall(0)).To(Equal(fclock.Now().Add(-retention).UnixNano()))
	})

	It("keeps going when pruning fails", func() {
		historyDB.PruneScalingHistoriesReturns(errors.New("db down"))

		pruner.Operate(context.Background())
		fclock.Increment(time.Hour)
		pruner.Operate(context.Background())

		Expect(historyDB.PruneScalingHistoriesCallCount()).To(Equal(2))
	})
})
