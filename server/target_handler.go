package server

import (
	"net/http"
	"sort"

	"github.com/stepscale/autoscaler/capacity"
	"github.com/stepscale/autoscaler/registry"

	"code.cloudfoundry.org/cfhttp/handlers"
	"code.cloudfoundry.org/lager/v3"
)

type TargetHandler struct {
	logger         lager.Logger
	controller     *capacity.Controller
	healthRegistry *registry.Registry
}

func NewTargetHandler(logger lager.Logger, controller *capacity.Controller, healthRegistry *registry.Registry) *TargetHandler {
	return &TargetHandler{
		logger:         logger.Session("target-handler"),
		controller:     controller,
		healthRegistry: healthRegistry,
	}
}

func (h *TargetHandler) GetTarget(w http.ResponseWriter, r *http.Request) {
	target := h.controller.Snapshot()
	h.logger.Debug("get-target", lager.Data{"target": target})
	handlers.WriteJSONResponse(w, http.StatusOK, target)
}

func (h *TargetHandler) GetReplicas(w http.ResponseWriter, r *http.Request) {
	replicas := h.healthRegistry.Snapshot()
	sort.Slice(replicas, func(i, j int) bool { return replicas[i].ReplicaId < replicas[j].ReplicaId })
	h.logger.Debug("get-replicas", lager.Data{"count": len(replicas)})
	handlers.WriteJSONResponse(w, http.StatusOK, replicas)
}
