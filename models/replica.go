package models

type ReplicaState string

const (
	ReplicaStateUnregistered ReplicaState = "unregistered"
	ReplicaStateRegistered   ReplicaState = "registered"
	ReplicaStateDegraded     ReplicaState = "degraded"
	ReplicaStateDeregistered ReplicaState = "deregistered"
)

// Replica is a replica identity as reported by the orchestrator.
type Replica struct {
	Id      string `json:"id"`
	Address string `json:"address"`
}

// ReplicaHealth is the per-replica probe record. One instance exists per live
// replica; deregistered is terminal for that instance, a replacement replica
// starts fresh as unregistered.
type ReplicaHealth struct {
	ReplicaId           string       `json:"replica_id"`
	Address             string       `json:"address"`
	ConsecutiveFailures int          `json:"consecutive_failures"`
	Registered          bool         `json:"registered"`
	State               ReplicaState `json:"state"`
}

// DiscoveryRecord exists in the external directory iff the corresponding
// replica record has Registered == true.
type DiscoveryRecord struct {
	ServiceName string `json:"service_name"`
	ReplicaId   string `json:"replica_id"`
	Address     string `json:"address"`
}
