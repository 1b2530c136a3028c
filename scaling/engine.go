package scaling

import (
	"fmt"
	"sync"
	"time"

	"github.com/stepscale/autoscaler/models"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
	"github.com/prometheus/client_golang/prometheus"
)

// policyRecord is the engine-owned runtime state of one scaling policy. The
// cooldown check and the lastAppliedAt update form a single critical section
// per policy, so concurrent alarm firings on one policy cannot both pass the
// cooldown gate.
type policyRecord struct {
	sync.Mutex
	policy        models.ScalingPolicy
	table         *StepTable
	lastAppliedAt time.Time
}

// Engine maps OK->ALARM transitions to capacity deltas through each policy's
// step table, suppressing firings inside the cooldown window. Alarm binding
// is 1:1 - each alarm triggers exactly one policy.
type Engine struct {
	logger              lager.Logger
	eclock              clock.Clock
	defaultCoolDownSecs int
	policies            map[string]*policyRecord
	byAlarm             map[string]*policyRecord
	transitionChan      <-chan *models.AlarmTransition
	deltaChan           chan<- *models.CapacityDelta
	doneChan            chan bool

	firedCounter      prometheus.Counter
	suppressedCounter prometheus.Counter
}

func NewEngine(logger lager.Logger, eclock clock.Clock, defaultCoolDownSecs int, policies []models.ScalingPolicy,
	transitionChan <-chan *models.AlarmTransition, deltaChan chan<- *models.CapacityDelta) (*Engine, error) {
	engine := &Engine{
		logger:              logger.Session("scaling-engine"),
		eclock:              eclock,
		defaultCoolDownSecs: defaultCoolDownSecs,
		policies:            make(map[string]*policyRecord),
		byAlarm:             make(map[string]*policyRecord),
		transitionChan:      transitionChan,
		deltaChan:           deltaChan,
		doneChan:            make(chan bool),
		firedCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "autoscaler",
			Subsystem: "scaling_engine",
			Name:      "policy_firings_total",
			Help:      "Number of capacity deltas emitted by scaling policies",
		}),
		suppressedCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "autoscaler",
			Subsystem: "scaling_engine",
			Name:      "cooldown_suppressions_total",
			Help:      "Number of alarm firings dropped because the policy was in cooldown",
		}),
	}

	for _, policy := range policies {
		if _, exists := engine.policies[policy.Id]; exists {
			return nil, fmt.Errorf("duplicate policy id: %s", policy.Id)
		}
		if _, exists := engine.byAlarm[policy.AlarmId]; exists {
			return nil, fmt.Errorf("alarm %s is bound to more than one policy", policy.AlarmId)
		}
		table, err := NewStepTable(policy.Steps)
		if err != nil {
			return nil, fmt.Errorf("policy %s: %w", policy.Id, err)
		}
		record := &policyRecord{policy: policy, table: table}
		engine.policies[policy.Id] = record
		engine.byAlarm[policy.AlarmId] = record
	}

	return engine, nil
}

func (e *Engine) Start() {
	go e.start()
	e.logger.Info("started")
}

func (e *Engine) start() {
	for {
		select {
		case <-e.doneChan:
			return
		case transition := <-e.transitionChan:
			if delta := e.OnAlarm(transition); delta != nil {
				e.deltaChan <- delta
			}
		}
	}
}

func (e *Engine) Stop() {
	close(e.doneChan)
	e.logger.Info("stopped")
}

// OnAlarm evaluates one alarm transition against its bound policy and
// returns the capacity delta to apply, or nil when nothing fires. ALARM->OK
// transitions are informational and never produce a delta.
func (e *Engine) OnAlarm(transition *models.AlarmTransition) *models.CapacityDelta {
	logger := e.logger.WithData(lager.Data{"alarmId": transition.AlarmId})

	if transition.To != models.AlarmStateAlarm {
		logger.Info("alarm-cleared", lager.Data{"metricValue": transition.MetricValue})
		return nil
	}

	record, exists := e.byAlarm[transition.AlarmId]
	if !exists {
		logger.Error("no-policy-bound-to-alarm", nil)
		return nil
	}

	record.Lock()
	defer record.Unlock()

	now := e.eclock.Now()
	coolDown := record.policy.CoolDown(e.defaultCoolDownSecs)
	if !record.lastAppliedAt.IsZero() && now.Sub(record.lastAppliedAt) < coolDown {
		logger.Info("scaling-suppressed-policy-in-cooldown", lager.Data{
			"policyId":      record.policy.Id,
			"lastAppliedAt": record.lastAppliedAt,
			"coolDown":      coolDown,
		})
		e.suppressedCounter.Inc()
		return nil
	}

	deviation := transition.MetricValue - transition.Threshold
	delta, ok := record.table.Select(deviation)
	if !ok {
		logger.Debug("no-step-covers-deviation", lager.Data{"policyId": record.policy.Id, "deviation": deviation})
		return nil
	}

	// Cooldown timing is driven by the policy firing, not by whether the
	// capacity controller later clamps the delta away.
	record.lastAppliedAt = now
	e.firedCounter.Inc()

	logger.Info("policy-fired", lager.Data{"policyId": record.policy.Id, "deviation": deviation, "delta": delta})
	return &models.CapacityDelta{
		PolicyId: record.policy.Id,
		Delta:    delta,
		Reason:   scalingReason(record.policy.Id, delta, transition.MetricValue, transition.Threshold),
	}
}

func (e *Engine) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.firedCounter.Desc()
	ch <- e.suppressedCounter.Desc()
}

func (e *Engine) Collect(ch chan<- prometheus.Metric) {
	ch <- e.firedCounter
	ch <- e.suppressedCounter
}

func scalingReason(policyId string, delta int, metricValue float64, threshold float64) string {
	return fmt.Sprintf("%+d replica(s) by policy %s because metric value %g deviates %g from threshold %g",
		delta, policyId, metricValue, metricValue-threshold, threshold)
}
