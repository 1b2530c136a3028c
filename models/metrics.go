package models

import (
	"fmt"
	"time"
)

const (
	UnitPercentage   = "percentage"
	UnitBytes        = "bytes"
	UnitNum          = "num"
	UnitMilliseconds = "milliseconds"
	UnitRPS          = "rps"
)

type Aggregation string

const (
	AggregationAverage Aggregation = "avg"
	AggregationMin     Aggregation = "min"
	AggregationMax     Aggregation = "max"
)

func ParseAggregation(value string) (Aggregation, error) {
	switch Aggregation(value) {
	case AggregationAverage, AggregationMin, AggregationMax:
		return Aggregation(value), nil
	case "":
		return AggregationAverage, nil
	default:
		return "", fmt.Errorf("unsupported aggregation: %s", value)
	}
}

// MetricSample is one aggregated observation of a metric over a sampling
// window. Samples are immutable once emitted by the metric source.
type MetricSample struct {
	MetricName string        `json:"metric_name"`
	Unit       string        `json:"unit"`
	Value      float64       `json:"value"`
	Timestamp  int64         `json:"timestamp"`
	Window     time.Duration `json:"window"`
}
