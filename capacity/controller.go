package capacity

import (
	"context"
	"fmt"
	"time"

	"github.com/stepscale/autoscaler/db"
	"github.com/stepscale/autoscaler/models"
	"github.com/stepscale/autoscaler/orchestrator"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
	"github.com/prometheus/client_golang/prometheus"
	circuit "github.com/rubyist/circuitbreaker"
)

// Controller is the single owner of the service's ScalableTarget. Deltas
// from independent policies are linearized through one channel, so there is
// no racing on the desired-count field; reads go through Snapshot. The
// orchestrator update is asynchronous: the in-memory desired value is the
// source of truth and orchestrator convergence is best effort.
type Controller struct {
	logger       lager.Logger
	cclock       clock.Clock
	serviceId    string
	target       models.ScalableTarget
	deltaChan    <-chan *models.CapacityDelta
	snapshotChan chan chan models.ScalableTarget
	updateChan   chan int
	doneChan     chan bool
	runDone      chan struct{}
	updaterDone  chan struct{}
	orchClient   orchestrator.Client
	breaker      *circuit.Breaker
	historyDB    db.ScalingHistoryDB
	drainTimeout time.Duration

	clampedCounter prometheus.Counter
	appliedCounter prometheus.Counter
}

func NewController(logger lager.Logger, cclock clock.Clock, target models.ScalableTarget,
	deltaChan <-chan *models.CapacityDelta, orchClient orchestrator.Client, breaker *circuit.Breaker,
	historyDB db.ScalingHistoryDB, drainTimeout time.Duration) (*Controller, error) {
	if target.MinCapacity > target.MaxCapacity {
		return nil, fmt.Errorf("min capacity %d exceeds max capacity %d", target.MinCapacity, target.MaxCapacity)
	}
	target.DesiredCapacity = clamp(target.DesiredCapacity, target.MinCapacity, target.MaxCapacity)

	return &Controller{
		logger:       logger.Session("capacity-controller", lager.Data{"serviceId": target.ServiceId}),
		cclock:       cclock,
		serviceId:    target.ServiceId,
		target:       target,
		deltaChan:    deltaChan,
		snapshotChan: make(chan chan models.ScalableTarget),
		updateChan:   make(chan int, 1),
		doneChan:     make(chan bool),
		runDone:      make(chan struct{}),
		updaterDone:  make(chan struct{}),
		orchClient:   orchClient,
		breaker:      breaker,
		historyDB:    historyDB,
		drainTimeout: drainTimeout,
		clampedCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "autoscaler",
			Subsystem: "capacity_controller",
			Name:      "clamped_adjustments_total",
			Help:      "Number of capacity deltas partially or fully absorbed by the capacity bounds",
		}),
		appliedCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "autoscaler",
			Subsystem: "capacity_controller",
			Name:      "applied_adjustments_total",
			Help:      "Number of capacity deltas that changed the desired count",
		}),
	}, nil
}

// Apply is the pure clamping function over target state. Absorbing a delta
// at a bound is normal operation, not a failure.
func Apply(target models.ScalableTarget, delta int) (models.ScalableTarget, bool) {
	newDesired := clamp(target.DesiredCapacity+delta, target.MinCapacity, target.MaxCapacity)
	clamped := newDesired != target.DesiredCapacity+delta
	target.DesiredCapacity = newDesired
	return target, clamped
}

func clamp(value int, minValue int, maxValue int) int {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}
	return value
}

func (c *Controller) Start() {
	go c.updater()
	go c.run()
	c.logger.Info("started", lager.Data{"target": c.target})
}

func (c *Controller) run() {
	defer close(c.runDone)
	for {
		select {
		case <-c.doneChan:
			return
		case delta := <-c.deltaChan:
			c.handleDelta(delta)
		case reply := <-c.snapshotChan:
			reply <- c.target
		}
	}
}

// Stop stops accepting deltas, then drains the in-flight orchestrator
// update with a bounded timeout. A drain that overruns the timeout abandons
// the update and logs it rather than blocking shutdown.
func (c *Controller) Stop() {
	close(c.doneChan)
	<-c.runDone
	close(c.updateChan)

	timer := c.cclock.NewTimer(c.drainTimeout)
	defer timer.Stop()
	select {
	case <-c.updaterDone:
		c.logger.Info("stopped")
	case <-timer.C():
		c.logger.Error("drain-timeout-abandoning-pending-updates", nil, lager.Data{"drainTimeout": c.drainTimeout})
	}
}

// Snapshot returns the current target without exposing the controller's
// internal state to torn reads.
func (c *Controller) Snapshot() models.ScalableTarget {
	reply := make(chan models.ScalableTarget, 1)
	select {
	case c.snapshotChan <- reply:
		return <-reply
	case <-c.doneChan:
		// the run loop has exited and no writer remains
		return c.target
	}
}

func (c *Controller) handleDelta(delta *models.CapacityDelta) {
	now := c.cclock.Now()
	oldTarget := c.target
	newTarget, clamped := Apply(oldTarget, delta.Delta)

	history := &models.ScalingHistory{
		ServiceId:  c.target.ServiceId,
		Timestamp:  now.UnixNano(),
		PolicyId:   delta.PolicyId,
		OldDesired: oldTarget.DesiredCapacity,
		NewDesired: newTarget.DesiredCapacity,
		Delta:      delta.Delta,
		Status:     models.ScalingStatusSucceeded,
		Reason:     delta.Reason,
	}
	defer func() {
		if err := c.historyDB.SaveScalingHistory(history); err != nil {
			c.logger.Error("failed-to-save-scaling-history", err)
		}
	}()

	if clamped {
		c.clampedCounter.Inc()
		if newTarget.DesiredCapacity > oldTarget.DesiredCapacity || delta.Delta > 0 {
			history.Message = fmt.Sprintf("limited by max capacity %d", c.target.MaxCapacity)
		} else {
			history.Message = fmt.Sprintf("limited by min capacity %d", c.target.MinCapacity)
		}
		c.logger.Info("adjustment-clamped", lager.Data{
			"policyId":   delta.PolicyId,
			"delta":      delta.Delta,
			"oldDesired": oldTarget.DesiredCapacity,
			"newDesired": newTarget.DesiredCapacity,
		})
	}

	if newTarget.DesiredCapacity == oldTarget.DesiredCapacity {
		history.Status = models.ScalingStatusIgnored
		c.logger.Info("ignoring-delta-desired-count-unchanged", lager.Data{"policyId": delta.PolicyId, "desired": oldTarget.DesiredCapacity})
		return
	}

	c.target = newTarget
	c.appliedCounter.Inc()
	c.logger.Info("applied-delta", lager.Data{
		"policyId":   delta.PolicyId,
		"delta":      delta.Delta,
		"newDesired": newTarget.DesiredCapacity,
	})
	c.pushUpdate(newTarget.DesiredCapacity)
}

// pushUpdate hands the new desired count to the updater without blocking;
// a pending update that has not been sent yet is superseded by the newer
// value.
func (c *Controller) pushUpdate(desired int) {
	for {
		select {
		case c.updateChan <- desired:
			return
		default:
			select {
			case stale := <-c.updateChan:
				c.logger.Debug("superseding-pending-update", lager.Data{"stale": stale, "desired": desired})
			default:
			}
		}
	}
}

func (c *Controller) updater() {
	defer close(c.updaterDone)
	for desired := range c.updateChan {
		c.setDesiredCount(desired)
	}
}

func (c *Controller) setDesiredCount(desired int) {
	ctx, cancel := context.WithTimeout(context.Background(), c.drainTimeout)
	defer cancel()

	call := func() error {
		return c.orchClient.SetDesiredCount(ctx, c.serviceId, desired)
	}

	var err error
	if c.breaker != nil {
		if c.breaker.Tripped() {
			c.logger.Info("circuit-tripped", lager.Data{"consecutiveFailures": c.breaker.ConsecFailures()})
		}
		err = c.breaker.Call(call, 0)
	} else {
		err = call()
	}
	if err != nil {
		c.logger.Error("failed-to-set-desired-count", err, lager.Data{"desired": desired})
		return
	}
	c.logger.Debug("desired-count-updated", lager.Data{"desired": desired})
}

func (c *Controller) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.clampedCounter.Desc()
	ch <- c.appliedCounter.Desc()
}

func (c *Controller) Collect(ch chan<- prometheus.Metric) {
	ch <- c.clampedCounter
	ch <- c.appliedCounter
}
