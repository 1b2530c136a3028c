package operator

import (
	"context"
	"os"
	"time"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
)

type Operator interface {
	Operate(ctx context.Context)
}

// OperatorRunner wraps a housekeeping Operator into an ifrit process that
// fires it on a fixed interval.
type OperatorRunner struct {
	operator Operator
	interval time.Duration
	oclock   clock.Clock
	logger   lager.Logger
}

func NewOperatorRunner(operator Operator, interval time.Duration, oclock clock.Clock, logger lager.Logger) *OperatorRunner {
	return &OperatorRunner{
		operator: operator,
		interval: interval,
		oclock:   oclock,
		logger:   logger,
	}
}

func (opr *OperatorRunner) Run(signals <-chan os.Signal, ready chan<- struct{}) error {
	close(ready)
	ticker := opr.oclock.NewTicker(opr.interval)

	opr.logger.Info("started", lager.Data{"refresh_interval": opr.interval})

	for {
		select {
		case <-signals:
			ticker.Stop()
			opr.logger.Info("stopped")
			return nil
		case <-ticker.C():
			go opr.operator.Operate(context.Background())
		}
	}
}
