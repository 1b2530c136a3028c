package operator

import (
	"context"
	"time"

	"github.com/stepscale/autoscaler/db"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
)

// ScalingHistoryDbPruner removes scaling history rows older than the
// configured retention.
type ScalingHistoryDbPruner struct {
	historyDB db.ScalingHistoryDB
	retention time.Duration
	pclock    clock.Clock
	logger    lager.Logger
}

func NewScalingHistoryDbPruner(historyDB db.ScalingHistoryDB, retention time.Duration, pclock clock.Clock, logger lager.Logger) *ScalingHistoryDbPruner {
	return &ScalingHistoryDbPruner{
		historyDB: historyDB,
		retention: retention,
		pclock:    pclock,
		logger:    logger.Session("scaling-history-db-pruner"),
	}
}

func (shp *ScalingHistoryDbPruner) Operate(ctx context.Context) {
	timestamp := shp.pclock.Now().Add(-shp.retention).UnixNano()

	err := shp.historyDB.PruneScalingHistories(timestamp)
	if err != nil {
		shp.logger.Error("failed-prune-scaling-histories", err, lager.Data{"before": timestamp})
		return
	}
	shp.logger.Debug("pruned-scaling-histories", lager.Data{"before": timestamp})
}
