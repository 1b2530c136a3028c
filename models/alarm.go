package models

import (
	"fmt"
	"time"
)

type AlarmState string

const (
	AlarmStateOK    AlarmState = "OK"
	AlarmStateAlarm AlarmState = "ALARM"
)

const (
	ComparatorGreaterOrEqual = ">="
	ComparatorLessOrEqual    = "<="
)

var ValidComparators = []string{ComparatorGreaterOrEqual, ComparatorLessOrEqual}

// Alarm tracks a single threshold condition over a metric stream. State is
// mutated only by the alarm evaluator; transitions to ALARM happen after
// EvaluationPeriods consecutive breaching samples, and any non-breaching
// sample resets the consecutive count to zero.
type Alarm struct {
	Id                  string
	MetricName          string
	Comparator          string
	Threshold           float64
	EvaluationPeriods   int
	Period              time.Duration
	State               AlarmState
	ConsecutiveBreaches int
}

// Breached reports whether the sample value satisfies the alarm's comparison
// condition.
func (a *Alarm) Breached(value float64) (bool, error) {
	switch a.Comparator {
	case ComparatorGreaterOrEqual:
		return value >= a.Threshold, nil
	case ComparatorLessOrEqual:
		return value <= a.Threshold, nil
	default:
		return false, fmt.Errorf("unsupported comparator: %s", a.Comparator)
	}
}

// AlarmTransition is an edge-triggered state-change event. It carries the
// breaching metric value and the alarm threshold so the policy engine can
// compute the deviation without re-reading alarm state.
type AlarmTransition struct {
	AlarmId     string
	From        AlarmState
	To          AlarmState
	MetricValue float64
	Threshold   float64
	Timestamp   int64
}
