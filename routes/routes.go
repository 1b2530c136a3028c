package routes

import (
	"github.com/gorilla/mux"

	"net/http"
)

const (
	TargetPath         = "/v1/target"
	GetTargetRouteName = "GetTarget"

	ReplicasPath         = "/v1/replicas"
	GetReplicasRouteName = "GetReplicas"

	ScalingHistoriesPath         = "/v1/scaling_histories"
	GetScalingHistoriesRouteName = "GetScalingHistories"
)

type AutoscalerRoute struct {
	autoscalerRoutes *mux.Router
}

var autoscalerRouteInstance = newRouters()

func newRouters() *AutoscalerRoute {
	instance := &AutoscalerRoute{
		autoscalerRoutes: mux.NewRouter(),
	}

	instance.autoscalerRoutes.Path(TargetPath).Methods(http.MethodGet).Name(GetTargetRouteName)
	instance.autoscalerRoutes.Path(ReplicasPath).Methods(http.MethodGet).Name(GetReplicasRouteName)
	instance.autoscalerRoutes.Path(ScalingHistoriesPath).Methods(http.MethodGet).Name(GetScalingHistoriesRouteName)

	return instance
}

func AutoscalerRoutes() *mux.Router {
	return autoscalerRouteInstance.autoscalerRoutes
}
