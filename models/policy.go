package models

import (
	"fmt"
	"math"
	"time"
)

type ScalingDirection string

const (
	ScalingDirectionUp   ScalingDirection = "up"
	ScalingDirectionDown ScalingDirection = "down"
)

// StepAdjustment maps a half-open interval [LowerBound, UpperBound) of metric
// deviation from the alarm threshold to a capacity delta. A nil bound means
// the interval is unbounded on that side.
type StepAdjustment struct {
	LowerBound *float64 `yaml:"lower_bound" json:"lower_bound,omitempty"`
	UpperBound *float64 `yaml:"upper_bound" json:"upper_bound,omitempty"`
	Delta      int      `yaml:"delta" json:"delta"`
}

func (s StepAdjustment) Lower() float64 {
	if s.LowerBound == nil {
		return math.Inf(-1)
	}
	return *s.LowerBound
}

func (s StepAdjustment) Upper() float64 {
	if s.UpperBound == nil {
		return math.Inf(1)
	}
	return *s.UpperBound
}

// Contains reports whether the deviation lies in [lower, upper). Boundaries
// belong to the step whose lower bound equals the value.
func (s StepAdjustment) Contains(deviation float64) bool {
	return deviation >= s.Lower() && deviation < s.Upper()
}

func (s StepAdjustment) String() string {
	lower, upper := "-inf", "+inf"
	if s.LowerBound != nil {
		lower = fmt.Sprintf("%g", *s.LowerBound)
	}
	if s.UpperBound != nil {
		upper = fmt.Sprintf("%g", *s.UpperBound)
	}
	return fmt.Sprintf("[%s,%s)->%+d", lower, upper, s.Delta)
}

// ScalingPolicy binds one alarm to an ordered step table. CoolDownSeconds of
// zero falls back to the configured default at evaluation time.
type ScalingPolicy struct {
	Id              string           `yaml:"id" json:"id"`
	AlarmId         string           `yaml:"alarm_id" json:"alarm_id"`
	Direction       ScalingDirection `yaml:"direction" json:"direction"`
	Aggregation     Aggregation      `yaml:"aggregation" json:"aggregation"`
	CoolDownSeconds int              `yaml:"cool_down_secs" json:"cool_down_secs"`
	Steps           []StepAdjustment `yaml:"steps" json:"steps"`
}

func (p *ScalingPolicy) CoolDown(defaultCoolDownSecs int) time.Duration {
	if p.CoolDownSeconds <= 0 {
		return time.Duration(defaultCoolDownSecs) * time.Second
	}
	return time.Duration(p.CoolDownSeconds) * time.Second
}

// CapacityDelta is one bounded adjustment request emitted by the policy
// engine towards the capacity controller.
type CapacityDelta struct {
	PolicyId string
	Delta    int
	Reason   string
}
