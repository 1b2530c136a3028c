package models

// ScalableTarget is the authoritative desired-count record for one service.
// The capacity controller is its single writer; the capacity invariant
// MinCapacity <= DesiredCapacity <= MaxCapacity holds on every write.
type ScalableTarget struct {
	ServiceId       string `json:"service_id"`
	MinCapacity     int    `json:"min_capacity"`
	MaxCapacity     int    `json:"max_capacity"`
	DesiredCapacity int    `json:"desired_capacity"`
}

type ScalingStatus int

const (
	ScalingStatusSucceeded ScalingStatus = iota
	ScalingStatusFailed
	ScalingStatusIgnored
)

// ScalingHistory records the outcome of one capacity delta, including deltas
// fully absorbed by the capacity bounds (those are ignored, not failed).
type ScalingHistory struct {
	ServiceId  string        `json:"service_id"`
	Timestamp  int64         `json:"timestamp"`
	PolicyId   string        `json:"policy_id"`
	OldDesired int           `json:"old_desired"`
	NewDesired int           `json:"new_desired"`
	Delta      int           `json:"delta"`
	Status     ScalingStatus `json:"status"`
	Reason     string        `json:"reason"`
	Message    string        `json:"message,omitempty"`
	Error      string        `json:"error,omitempty"`
}
