package registry

import (
	"context"
	"sync"

	"github.com/stepscale/autoscaler/discovery"
	"github.com/stepscale/autoscaler/models"

	"code.cloudfoundry.org/lager/v3"
	"github.com/prometheus/client_golang/prometheus"
)

// Registry tracks per-replica consecutive probe failures against the
// failure threshold and keeps the external discovery directory consistent
// with which replicas are considered healthy. The prober goroutine is the
// only writer; the lock exists for snapshot readers.
//
// Per-replica state machine:
//
//	unregistered -> registered -> degraded -> deregistered
//
// A successful probe grants full recovery credit (failures reset to zero,
// not decremented). Deregistration removes the discovery record
// synchronously with the state transition, so no stale record outlives it.
type Registry struct {
	logger           lager.Logger
	serviceName      string
	failureThreshold int
	directory        discovery.Client

	lock     sync.RWMutex
	replicas map[string]*models.ReplicaHealth

	registrationsCounter   prometheus.Counter
	deregistrationsCounter prometheus.Counter
	probeFailuresCounter   prometheus.Counter
}

func New(logger lager.Logger, serviceName string, failureThreshold int, directory discovery.Client) *Registry {
	return &Registry{
		logger:           logger.Session("health-registry", lager.Data{"serviceName": serviceName}),
		serviceName:      serviceName,
		failureThreshold: failureThreshold,
		directory:        directory,
		replicas:         make(map[string]*models.ReplicaHealth),
		registrationsCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "autoscaler",
			Subsystem: "health_registry",
			Name:      "registrations_total",
			Help:      "Number of replica registrations published to the discovery directory",
		}),
		deregistrationsCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "autoscaler",
			Subsystem: "health_registry",
			Name:      "deregistrations_total",
			Help:      "Number of replicas removed from the discovery directory after crossing the failure threshold",
		}),
		probeFailuresCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "autoscaler",
			Subsystem: "health_registry",
			Name:      "probe_failures_total",
			Help:      "Number of failed health probes",
		}),
	}
}

// EnsureReplicas seeds records for replicas newly reported by the
// orchestrator and garbage-collects records whose replica the orchestrator
// no longer lists. A collected replica that was still published is
// deregistered from the directory before its record is dropped.
func (r *Registry) EnsureReplicas(ctx context.Context, current []models.Replica) {
	r.lock.Lock()
	defer r.lock.Unlock()

	listed := make(map[string]bool, len(current))
	for _, replica := range current {
		listed[replica.Id] = true
		if _, exists := r.replicas[replica.Id]; !exists {
			r.replicas[replica.Id] = &models.ReplicaHealth{
				ReplicaId: replica.Id,
				Address:   replica.Address,
				State:     models.ReplicaStateUnregistered,
			}
			r.logger.Info("replica-joined", lager.Data{"replicaId": replica.Id, "address": replica.Address})
		}
	}

	for replicaId, record := range r.replicas {
		if listed[replicaId] {
			continue
		}
		if record.Registered {
			if err := r.directory.Deregister(ctx, r.serviceName, replicaId); err != nil {
				r.logger.Error("failed-deregistering-terminated-replica", err, lager.Data{"replicaId": replicaId})
				continue
			}
		}
		delete(r.replicas, replicaId)
		r.logger.Info("replica-terminated", lager.Data{"replicaId": replicaId})
	}
}

// OnProbeResult advances one replica's state machine. Directory calls are
// synchronous with the transitions that need them: a record is never left
// published past its deregistration.
func (r *Registry) OnProbeResult(ctx context.Context, replicaId string, success bool) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	record, exists := r.replicas[replicaId]
	if !exists {
		r.logger.Debug("probe-result-for-unknown-replica", lager.Data{"replicaId": replicaId})
		return nil
	}

	if success {
		return r.handleSuccess(ctx, record)
	}
	return r.handleFailure(ctx, record)
}

func (r *Registry) handleSuccess(ctx context.Context, record *models.ReplicaHealth) error {
	switch record.State {
	case models.ReplicaStateUnregistered:
		return r.register(ctx, record)
	case models.ReplicaStateDegraded:
		record.ConsecutiveFailures = 0
		record.State = models.ReplicaStateRegistered
		r.logger.Info("replica-recovered", lager.Data{"replicaId": record.ReplicaId})
		return nil
	case models.ReplicaStateRegistered:
		record.ConsecutiveFailures = 0
		return nil
	case models.ReplicaStateDeregistered:
		// The old instance's state machine has ended. A probe succeeding on
		// the same id means a replacement is serving there; it starts fresh.
		record.ConsecutiveFailures = 0
		r.logger.Info("replica-returned-treating-as-fresh-instance", lager.Data{"replicaId": record.ReplicaId})
		return r.register(ctx, record)
	}
	return nil
}

func (r *Registry) handleFailure(ctx context.Context, record *models.ReplicaHealth) error {
	r.probeFailuresCounter.Inc()

	switch record.State {
	case models.ReplicaStateUnregistered, models.ReplicaStateDeregistered:
		return nil
	case models.ReplicaStateRegistered, models.ReplicaStateDegraded:
		record.ConsecutiveFailures++
		if record.ConsecutiveFailures < r.failureThreshold {
			record.State = models.ReplicaStateDegraded
			r.logger.Info("replica-degraded", lager.Data{
				"replicaId":           record.ReplicaId,
				"consecutiveFailures": record.ConsecutiveFailures,
				"failureThreshold":    r.failureThreshold,
			})
			return nil
		}
		return r.deregister(ctx, record)
	}
	return nil
}

func (r *Registry) register(ctx context.Context, record *models.ReplicaHealth) error {
	if err := r.directory.Register(ctx, r.serviceName, record.ReplicaId, record.Address); err != nil {
		r.logger.Error("failed-registering-replica", err, lager.Data{"replicaId": record.ReplicaId})
		return err
	}
	record.Registered = true
	record.ConsecutiveFailures = 0
	record.State = models.ReplicaStateRegistered
	r.registrationsCounter.Inc()
	r.logger.Info("replica-registered", lager.Data{"replicaId": record.ReplicaId, "address": record.Address})
	return nil
}

func (r *Registry) deregister(ctx context.Context, record *models.ReplicaHealth) error {
	if err := r.directory.Deregister(ctx, r.serviceName, record.ReplicaId); err != nil {
		r.logger.Error("failed-deregistering-replica", err, lager.Data{"replicaId": record.ReplicaId})
		return err
	}
	record.Registered = false
	record.State = models.ReplicaStateDeregistered
	r.deregistrationsCounter.Inc()
	r.logger.Info("replica-deregistered", lager.Data{
		"replicaId":           record.ReplicaId,
		"consecutiveFailures": record.ConsecutiveFailures,
	})
	return nil
}

// Snapshot returns a copy of all replica records.
func (r *Registry) Snapshot() []models.ReplicaHealth {
	r.lock.RLock()
	defer r.lock.RUnlock()

	records := make([]models.ReplicaHealth, 0, len(r.replicas))
	for _, record := range r.replicas {
		records = append(records, *record)
	}
	return records
}

func (r *Registry) Describe(ch chan<- *prometheus.Desc) {
	ch <- r.registrationsCounter.Desc()
	ch <- r.deregistrationsCounter.Desc()
	ch <- r.probeFailuresCounter.Desc()
}

func (r *Registry) Collect(ch chan<- prometheus.Metric) {
	ch <- r.registrationsCounter
	ch <- r.deregistrationsCounter
	ch <- r.probeFailuresCounter
}
