package alarm

import (
	"fmt"

	"github.com/stepscale/autoscaler/models"

	"code.cloudfoundry.org/lager/v3"
	"github.com/prometheus/client_golang/prometheus"
)

// Evaluator owns all alarm records for one service. Alarms are addressed by
// id through a private map and mutated only by the evaluation goroutine, so
// no per-alarm locking is needed. Transitions are edge-triggered: an event is
// emitted only when an alarm crosses OK->ALARM or ALARM->OK, never while the
// state holds steady.
type Evaluator struct {
	logger         lager.Logger
	alarms         map[string]*models.Alarm
	byMetric       map[string][]*models.Alarm
	lastTimestamps map[string]int64
	sampleChan     <-chan *models.MetricSample
	transitionChan chan<- *models.AlarmTransition
	doneChan       chan bool

	staleCounter prometheus.Counter
}

func NewEvaluator(logger lager.Logger, alarms []models.Alarm,
	sampleChan <-chan *models.MetricSample, transitionChan chan<- *models.AlarmTransition) (*Evaluator, error) {
	evaluator := &Evaluator{
		logger:         logger.Session("alarm-evaluator"),
		alarms:         make(map[string]*models.Alarm),
		byMetric:       make(map[string][]*models.Alarm),
		lastTimestamps: make(map[string]int64),
		sampleChan:     sampleChan,
		transitionChan: transitionChan,
		doneChan:       make(chan bool),
		staleCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "autoscaler",
			Subsystem: "alarm_evaluator",
			Name:      "stale_samples_dropped_total",
			Help:      "Number of out-of-order metric samples dropped",
		}),
	}

	for _, alarm := range alarms {
		if _, exists := evaluator.alarms[alarm.Id]; exists {
			return nil, fmt.Errorf("duplicate alarm id: %s", alarm.Id)
		}
		if alarm.EvaluationPeriods <= 0 {
			return nil, fmt.Errorf("alarm %s: evaluation periods must be positive", alarm.Id)
		}
		if _, err := (&alarm).Breached(0); err != nil {
			return nil, fmt.Errorf("alarm %s: %w", alarm.Id, err)
		}
		owned := alarm
		owned.State = models.AlarmStateOK
		owned.ConsecutiveBreaches = 0
		evaluator.alarms[owned.Id] = &owned
		evaluator.byMetric[owned.MetricName] = append(evaluator.byMetric[owned.MetricName], &owned)
	}

	return evaluator, nil
}

func (e *Evaluator) Start() {
	go e.start()
	e.logger.Info("started")
}

func (e *Evaluator) start() {
	for {
		select {
		case <-e.doneChan:
			return
		case sample := <-e.sampleChan:
			for _, transition := range e.Evaluate(sample) {
				e.transitionChan <- transition
			}
		}
	}
}

func (e *Evaluator) Stop() {
	close(e.doneChan)
	e.logger.Info("stopped")
}

// Evaluate feeds one sample to every alarm bound to its metric and returns
// the resulting transitions. Samples older than the last one seen by an
// alarm are dropped without a reordering buffer.
func (e *Evaluator) Evaluate(sample *models.MetricSample) []*models.AlarmTransition {
	var transitions []*models.AlarmTransition
	for _, alarm := range e.byMetric[sample.MetricName] {
		if transition := e.evaluateAlarm(alarm, sample); transition != nil {
			transitions = append(transitions, transition)
		}
	}
	return transitions
}

func (e *Evaluator) evaluateAlarm(alarm *models.Alarm, sample *models.MetricSample) *models.AlarmTransition {
	if sample.Timestamp < e.lastTimestamps[alarm.Id] {
		e.logger.Debug("dropping-stale-sample", lager.Data{"alarmId": alarm.Id, "timestamp": sample.Timestamp})
		e.staleCounter.Inc()
		return nil
	}
	e.lastTimestamps[alarm.Id] = sample.Timestamp

	breached, err := alarm.Breached(sample.Value)
	if err != nil {
		e.logger.Error("failed-comparing-sample", err, lager.Data{"alarmId": alarm.Id})
		return nil
	}

	if !breached {
		// Strict consecutive-run policy: any non-breaching sample resets the
		// count, there is no partial credit.
		alarm.ConsecutiveBreaches = 0
		if alarm.State == models.AlarmStateAlarm {
			alarm.State = models.AlarmStateOK
			return e.transition(alarm, models.AlarmStateAlarm, models.AlarmStateOK, sample)
		}
		return nil
	}

	alarm.ConsecutiveBreaches++
	if alarm.State == models.AlarmStateOK && alarm.ConsecutiveBreaches >= alarm.EvaluationPeriods {
		alarm.State = models.AlarmStateAlarm
		return e.transition(alarm, models.AlarmStateOK, models.AlarmStateAlarm, sample)
	}
	return nil
}

func (e *Evaluator) transition(alarm *models.Alarm, from models.AlarmState, to models.AlarmState, sample *models.MetricSample) *models.AlarmTransition {
	e.logger.Info("alarm-transition", lager.Data{
		"alarmId": alarm.Id,
		"from":    from,
		"to":      to,
		"value":   sample.Value,
	})
	return &models.AlarmTransition{
		AlarmId:     alarm.Id,
		From:        from,
		To:          to,
		MetricValue: sample.Value,
		Threshold:   alarm.Threshold,
		Timestamp:   sample.Timestamp,
	}
}

func (e *Evaluator) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.staleCounter.Desc()
}

func (e *Evaluator) Collect(ch chan<- prometheus.Metric) {
	ch <- e.staleCounter
}
