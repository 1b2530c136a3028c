package models_test

import (
	"time"

	. "github.com/stepscale/autoscaler/models"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func bound(v float64) *float64 {
	return &v
}

var _ = Describe("StepAdjustment", func() {

	Describe("Contains", func() {
		step := StepAdjustment{LowerBound: bound(0), UpperBound: bound(15), Delta: 1}

		It("includes the lower bound and excludes the upper bound", func() {
			Expect(step.Contains(0)).To(BeTrue())
			Expect(step.Contains(14.9)).To(BeTrue())
			Expect(step.Contains(15)).To(BeFalse())
			Expect(step.Contains(-0.1)).To(BeFalse())
		})

		It("treats nil bounds as unbounded", func() {
			open := StepAdjustment{LowerBound: bound(25), Delta: 3}
			Expect(open.Contains(1e12)).To(BeTrue())
			Expect(open.Contains(24.9)).To(BeFalse())
		})
	})

	Describe("String", func() {
		It("renders the interval and delta", func() {
			Expect(StepAdjustment{LowerBound: bound(0), UpperBound: bound(15), Delta: 1}.String()).To(Equal("[0,15)->+1"))
			Expect(StepAdjustment{UpperBound: bound(-15), Delta: -2}.String()).To(Equal("[-inf,-15)->-2"))
		})
	})
})

var _ = Describe("ScalingPolicy", func() {
	Describe("CoolDown", func() {
		It("uses the configured cooldown", func() {
			policy := ScalingPolicy{CoolDownSeconds: 120}
			Expect(policy.CoolDown(300)).To(Equal(120 * time.Second))
		})

		It("falls back to the default when unset", func() {
			policy := ScalingPolicy{}
			Expect(policy.CoolDown(300)).To(Equal(300 * time.Second))
		})
	})
})

var _ = Describe("Alarm", func() {
	Describe("Breached", func() {
		It("compares with >=", func() {
			alarm := Alarm{Comparator: ComparatorGreaterOrEqual, Threshold: 70}
			Expect(alarm.Breached(70)).To(BeTrue())
			Expect(alarm.Breached(69.9)).To(BeFalse())
		})

		It("compares with <=", func() {
			alarm := Alarm{Comparator: ComparatorLessOrEqual, Threshold: 10}
			Expect(alarm.Breached(10)).To(BeTrue())
			Expect(alarm.Breached(10.1)).To(BeFalse())
		})

		It("rejects unsupported comparators", func() {
			alarm := Alarm{Comparator: "!="}
			_, err := alarm.Breached(1)
			Expect(err).To(MatchError("unsupported comparator: !="))
		})
	})
})
