package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/stepscale/autoscaler/models"
	"github.com/stepscale/autoscaler/orchestrator"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
	"golang.org/x/time/rate"
)

// ProbeFunc performs one health probe against a replica address.
type ProbeFunc func(ctx context.Context, address string) error

// Prober drives the health registry: each cycle it refreshes the replica
// set from the orchestrator, then probes every replica, rate-capped so a
// large replica set cannot stampede the network. It runs as an ifrit
// process; probing never blocks metric ingestion or alarm evaluation.
type Prober struct {
	logger       lager.Logger
	pclock       clock.Clock
	interval     time.Duration
	probeTimeout time.Duration
	limiter      *rate.Limiter
	serviceId    string
	orchClient   orchestrator.Client
	registry     *Registry
	probe        ProbeFunc
}

func NewProber(logger lager.Logger, pclock clock.Clock, interval time.Duration, probeTimeout time.Duration,
	maxProbesPerSecond float64, serviceId string, orchClient orchestrator.Client, registry *Registry, probe ProbeFunc) *Prober {
	return &Prober{
		logger:       logger.Session("prober", lager.Data{"serviceId": serviceId}),
		pclock:       pclock,
		interval:     interval,
		probeTimeout: probeTimeout,
		limiter:      rate.NewLimiter(rate.Limit(maxProbesPerSecond), 1),
		serviceId:    serviceId,
		orchClient:   orchClient,
		registry:     registry,
		probe:        probe,
	}
}

// HTTPProbe probes the conventional health path of a replica.
func HTTPProbe(httpClient *http.Client, path string) ProbeFunc {
	return func(ctx context.Context, address string) error {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+address+path, nil)
		if err != nil {
			return err
		}
		response, err := httpClient.Do(request)
		if err != nil {
			return err
		}
		defer func() { _ = response.Body.Close() }()
		_, _ = io.Copy(io.Discard, response.Body)
		if response.StatusCode != http.StatusOK {
			return fmt.Errorf("got %d probing %s", response.StatusCode, address)
		}
		return nil
	}
}

func (p *Prober) Run(signals <-chan os.Signal, ready chan<- struct{}) error {
	close(ready)
	ticker := p.pclock.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("started", lager.Data{"interval": p.interval})
	for {
		select {
		case <-signals:
			p.logger.Info("stopped")
			return nil
		case <-ticker.C():
			p.cycle()
		}
	}
}

func (p *Prober) cycle() {
	ctx, cancel := context.WithTimeout(context.Background(), p.interval)
	defer cancel()

	replicas, err := p.orchClient.ListReplicas(ctx, p.serviceId)
	if err != nil {
		p.logger.Error("failed-listing-replicas", err)
	} else {
		p.registry.EnsureReplicas(ctx, replicas)
	}

	for _, record := range p.registry.Snapshot() {
		if err := p.limiter.Wait(ctx); err != nil {
			p.logger.Error("probe-cycle-cancelled", err)
			return
		}
		p.probeOne(ctx, record)
	}
}

func (p *Prober) probeOne(ctx context.Context, record models.ReplicaHealth) {
	probeCtx, cancel := context.WithTimeout(ctx, p.probeTimeout)
	defer cancel()

	probeErr := p.probe(probeCtx, record.Address)
	if probeErr != nil {
		p.logger.Debug("probe-failed", lager.Data{"replicaId": record.ReplicaId, "error": probeErr.Error()})
	}
	if err := p.registry.OnProbeResult(ctx, record.ReplicaId, probeErr == nil); err != nil {
		p.logger.Error("failed-recording-probe-result", err, lager.Data{"replicaId": record.ReplicaId})
	}
}
