package server

import (
	"fmt"
	"net/http"

	"github.com/stepscale/autoscaler/capacity"
	"github.com/stepscale/autoscaler/config"
	"github.com/stepscale/autoscaler/db"
	"github.com/stepscale/autoscaler/healthendpoint"
	"github.com/stepscale/autoscaler/registry"
	"github.com/stepscale/autoscaler/routes"

	"code.cloudfoundry.org/lager/v3"
	"github.com/tedsuo/ifrit"
	"github.com/tedsuo/ifrit/http_server"
)

// NewServer builds the read-only admin API: the current scalable target,
// the replica health snapshot and the scaling history.
func NewServer(logger lager.Logger, conf *config.Config, historyDB db.ScalingHistoryDB,
	controller *capacity.Controller, healthRegistry *registry.Registry,
	httpStatusCollector healthendpoint.HTTPStatusCollector) (ifrit.Runner, error) {
	targetHandler := NewTargetHandler(logger, controller, healthRegistry)
	historyHandler := NewScalingHistoryHandler(logger, conf.Service.ServiceId, historyDB)

	httpStatusCollectMiddleware := healthendpoint.NewHTTPStatusCollectMiddleware(httpStatusCollector)
	r := routes.AutoscalerRoutes()
	r.Use(httpStatusCollectMiddleware.Collect)
	r.Get(routes.GetTargetRouteName).Handler(http.HandlerFunc(targetHandler.GetTarget))
	r.Get(routes.GetReplicasRouteName).Handler(http.HandlerFunc(targetHandler.GetReplicas))
	r.Get(routes.GetScalingHistoriesRouteName).Handler(http.HandlerFunc(historyHandler.GetScalingHistories))

	addr := fmt.Sprintf("0.0.0.0:%d", conf.Server.Port)
	logger.Info("new-http-server", lager.Data{"serverConfig": conf.Server})

	return http_server.New(addr, r), nil
}
