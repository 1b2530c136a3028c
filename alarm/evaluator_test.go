package alarm_test

import (
	"time"

	. "github.com/stepscale/autoscaler/alarm"
	"github.com/stepscale/autoscaler/models"

	"code.cloudfoundry.org/lager/v3/lagertest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Evaluator", func() {
	var (
		logger         *lagertest.TestLogger
		alarms         []models.Alarm
		sampleChan     chan *models.MetricSample
		transitionChan chan *models.AlarmTransition
		evaluator      *Evaluator
		err            error
		timestamp      int64
	)

	sample := func(value float64) *models.MetricSample {
		timestamp += int64(time.Second)
		return &models.MetricSample{
			MetricName: "cpu_utilization",
			Unit:       models.UnitPercentage,
			Value:      value,
			Timestamp:  timestamp,
			Window:     time.Minute,
		}
	}

	BeforeEach(func() {
		logger = lagertest.NewTestLogger("evaluator-test")
		sampleChan = make(chan *models.MetricSample, 1)
		transitionChan = make(chan *models.AlarmTransition, 1)
		timestamp = time.Now().UnixNano()
		alarms = []models.Alarm{
			{
				Id:                "alarm-cpu-high",
				MetricName:        "cpu_utilization",
				Comparator:        models.ComparatorGreaterOrEqual,
				Threshold:         70,
				EvaluationPeriods: 3,
				Period:            time.Minute,
			},
		}
	})

	JustBeforeEach(func() {
		evaluator, err = NewEvaluator(logger, alarms, sampleChan, transitionChan)
	})

	Describe("NewEvaluator", func() {
		Context("with a duplicate alarm id", func() {
			BeforeEach(func() {
				alarms = append(alarms, alarms[0])
			})

			It("fails", func() {
				Expect(err).To(MatchError(ContainSubstring("duplicate alarm id")))
			})
		})

		Context("with non-positive evaluation periods", func() {
			BeforeEach(func() {
				alarms[0].EvaluationPeriods = 0
			})

			It("fails", func() {
				Expect(err).To(MatchError(ContainSubstring("evaluation periods must be positive")))
			})
		})

		Context("with an unsupported comparator", func() {
			BeforeEach(func() {
				alarms[0].Comparator = ">"
			})

			It("fails", func() {
				Expect(err).To(MatchError(ContainSubstring("unsupported comparator")))
			})
		})
	})

	Describe("Evaluate", func() {
		It("fires only after the configured number of consecutive breaches", func() {
			Expect(err).NotTo(HaveOccurred())

			Expect(evaluator.Evaluate(sample(75))).To(BeEmpty())
			Expect(evaluator.Evaluate(sample(80))).To(BeEmpty())

			transitions := evaluator.Evaluate(sample(85))
			Expect(transitions).To(HaveLen(1))
			Expect(transitions[0].AlarmId).To(Equal("alarm-cpu-high"))
			Expect(transitions[0].From).To(Equal(models.AlarmStateOK))
			Expect(transitions[0].To).To(Equal(models.AlarmStateAlarm))
			Expect(transitions[0].MetricValue).To(Equal(85.0))
			Expect(transitions[0].Threshold).To(Equal(70.0))
		})

		It("treats a value equal to the threshold as breaching", func() {
			Expect(evaluator.Evaluate(sample(70))).To(BeEmpty())
			Expect(evaluator.Evaluate(sample(70))).To(BeEmpty())
			Expect(evaluator.Evaluate(sample(70))).To(HaveLen(1))
		})

		It("resets the breach count on any non-breaching sample", func() {
			Expect(evaluator.Evaluate(sample(75))).To(BeEmpty())
			Expect(evaluator.Evaluate(sample(80))).To(BeEmpty())
			Expect(evaluator.Evaluate(sample(60))).To(BeEmpty())

			Expect(evaluator.Evaluate(sample(75))).To(BeEmpty())
			Expect(evaluator.Evaluate(sample(75))).To(BeEmpty())
			Expect(evaluator.Evaluate(sample(75))).To(HaveLen(1))
		})

		It("does not emit again while the alarm state holds", func() {
			evaluator.Evaluate(sample(75))
			evaluator.Evaluate(sample(75))
			Expect(evaluator.Evaluate(sample(75))).To(HaveLen(1))

			Expect(evaluator.Evaluate(sample(90))).To(BeEmpty())
			Expect(evaluator.Evaluate(sample(95))).To(BeEmpty())
		})

		It("returns to OK on the first non-breaching sample", func() {
			evaluator.Evaluate(sample(75))
			evaluator.Evaluate(sample(75))
			Expect(evaluator.Evaluate(sample(75))).To(HaveLen(1))

			transitions := evaluator.Evaluate(sample(50))
			Expect(transitions).To(HaveLen(1))
			Expect(transitions[0].From).To(Equal(models.AlarmStateAlarm))
			Expect(transitions[0].To).To(Equal(models.AlarmStateOK))
		})

		It("drops samples older than the last one seen", func() {
			evaluator.Evaluate(sample(75))
			evaluator.Evaluate(sample(75))

			stale := &models.MetricSample{
				MetricName: "cpu_utilization",
				Value:      10,
				Timestamp:  timestamp - int64(time.Hour),
			}
			Expect(evaluator.Evaluate(stale)).To(BeEmpty())

			// the stale non-breaching sample must not reset the run
			Expect(evaluator.Evaluate(sample(75))).To(HaveLen(1))
		})

		It("ignores samples for metrics no alarm watches", func() {
			unwatched := sample(99)
			unwatched.MetricName = "memory_utilization"
			Expect(evaluator.Evaluate(unwatched)).To(BeEmpty())
		})

		Context("with a single evaluation period", func() {
			BeforeEach(func() {
				alarms[0].EvaluationPeriods = 1
			})

			It("fires on the first breaching sample", func() {
				Expect(evaluator.Evaluate(sample(75))).To(HaveLen(1))
			})
		})

		Context("with a less-or-equal alarm", func() {
			BeforeEach(func() {
				alarms = []models.Alarm{
					{
						Id:                "alarm-throughput-low",
						MetricName:        "throughput",
						Comparator:        models.ComparatorLessOrEqual,
						Threshold:         100,
						EvaluationPeriods: 2,
						Period:            time.Minute,
					},
				}
			})

			It("breaches downwards", func() {
				low := func(value float64) *models.MetricSample {
					s := sample(value)
					s.MetricName = "throughput"
					return s
				}
				Expect(evaluator.Evaluate(low(90))).To(BeEmpty())
				transitions := evaluator.Evaluate(low(80))
				Expect(transitions).To(HaveLen(1))
				Expect(transitions[0].To).To(Equal(models.AlarmStateAlarm))
			})
		})

		Context("with two alarms on one metric", func() {
			BeforeEach(func() {
				alarms = append(alarms, models.Alarm{
					Id:                "alarm-cpu-very-high",
					MetricName:        "cpu_utilization",
					Comparator:        models.ComparatorGreaterOrEqual,
					Threshold:         90,
					EvaluationPeriods: 1,
					Period:            time.Minute,
				})
			})

			It("evaluates each alarm independently", func() {
				transitions := evaluator.Evaluate(sample(95))
				Expect(transitions).To(HaveLen(1))
				Expect(transitions[0].AlarmId).To(Equal("alarm-cpu-very-high"))

				evaluator.Evaluate(sample(95))
				transitions = evaluator.Evaluate(sample(95))
				Expect(transitions).To(HaveLen(1))
				Expect(transitions[0].AlarmId).To(Equal("alarm-cpu-high"))
			})
		})
	})

	Describe("Start and Stop", func() {
		It("forwards transitions for samples arriving on the channel", func() {
			evaluator.Start()
			defer evaluator.Stop()

			sampleChan <- sample(75)
			sampleChan <- sample(75)
			sampleChan <- sample(75)

			var transition *models.AlarmTransition
			Eventually(transitionChan).Should(Receive(&transition))
			Expect(transition.To).To(Equal(models.AlarmStateAlarm))
		})
	})
})
