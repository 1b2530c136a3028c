package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/stepscale/autoscaler/db"
	"github.com/stepscale/autoscaler/models"

	"code.cloudfoundry.org/cfhttp/handlers"
	"code.cloudfoundry.org/lager/v3"
)

type ScalingHistoryHandler struct {
	logger    lager.Logger
	serviceId string
	historyDB db.ScalingHistoryDB
}

func NewScalingHistoryHandler(logger lager.Logger, serviceId string, historyDB db.ScalingHistoryDB) *ScalingHistoryHandler {
	return &ScalingHistoryHandler{
		logger:    logger.Session("scaling-history-handler"),
		serviceId: serviceId,
		historyDB: historyDB,
	}
}

// GetScalingHistories serves the recorded scaling actions for the managed
// service. Ignored entries (deltas fully absorbed by the capacity bounds)
// are excluded unless include=all is given.
func (h *ScalingHistoryHandler) GetScalingHistories(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.Session("get-scaling-histories", lager.Data{"serviceId": h.serviceId})

	startParam := r.URL.Query()["start"]
	endParam := r.URL.Query()["end"]
	orderParam := r.URL.Query()["order"]
	includeParam := r.URL.Query()["include"]
	logger.Debug("handling", lager.Data{"start": startParam, "end": endParam, "order": orderParam})

	var err error
	start := int64(0)
	end := int64(-1)
	order := db.DESC
	includeIgnored := false

	if len(startParam) == 1 {
		start, err = strconv.ParseInt(startParam[0], 10, 64)
		if err != nil {
			logger.Error("failed-to-parse-start-time", err, lager.Data{"start": startParam})
			handlers.WriteJSONResponse(w, http.StatusBadRequest, models.ErrorResponse{
				Code:    "Bad-Request",
				Message: "Error parsing start time"})
			return
		}
	} else if len(startParam) > 1 {
		logger.Info("failed-to-get-start-time", lager.Data{"start": startParam})
		handlers.WriteJSONResponse(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "Bad-Request",
			Message: "Incorrect start parameter in query string"})
		return
	}

	if len(endParam) == 1 {
		end, err = strconv.ParseInt(endParam[0], 10, 64)
		if err != nil {
			logger.Error("failed-to-parse-end-time", err, lager.Data{"end": endParam})
			handlers.WriteJSONResponse(w, http.StatusBadRequest, models.ErrorResponse{
				Code:    "Bad-Request",
				Message: "Error parsing end time"})
			return
		}
	} else if len(endParam) > 1 {
		logger.Info("failed-to-get-end-time", lager.Data{"end": endParam})
		handlers.WriteJSONResponse(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "Bad-Request",
			Message: "Incorrect end parameter in query string"})
		return
	}

	if len(orderParam) == 1 {
		orderStr := strings.ToUpper(orderParam[0])
		if orderStr == db.DESCSTR {
			order = db.DESC
		} else if orderStr == db.ASCSTR {
			order = db.ASC
		} else {
			logger.Info("failed-to-get-order", lager.Data{"order": orderParam})
			handlers.WriteJSONResponse(w, http.StatusBadRequest, models.ErrorResponse{
				Code:    "Bad-Request",
				Message: fmt.Sprintf("Incorrect order parameter in query string, the value can only be %s or %s", db.ASCSTR, db.DESCSTR),
			})
			return
		}
	} else if len(orderParam) > 1 {
		logger.Info("failed-to-get-order", lager.Data{"order": orderParam})
		handlers.WriteJSONResponse(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "Bad-Request",
			Message: "Incorrect order parameter in query string"})
		return
	}

	if len(includeParam) == 1 {
		if strings.EqualFold(includeParam[0], "all") {
			includeIgnored = true
		} else {
			logger.Info("failed-to-get-include", lager.Data{"include": includeParam})
			handlers.WriteJSONResponse(w, http.StatusBadRequest, models.ErrorResponse{
				Code:    "Bad-Request",
				Message: "Incorrect include parameter in query string, the value can only be all"})
			return
		}
	} else if len(includeParam) > 1 {
		logger.Info("failed-to-get-include", lager.Data{"include": includeParam})
		handlers.WriteJSONResponse(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "Bad-Request",
			Message: "Incorrect include parameter in query string"})
		return
	}

	histories, err := h.historyDB.RetrieveScalingHistories(h.serviceId, start, end, order, includeIgnored)
	if err != nil {
		logger.Error("failed-to-retrieve-histories", err, lager.Data{"start": start, "end": end, "order": order})
		handlers.WriteJSONResponse(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "Internal-Server-Error",
			Message: "Error getting scaling histories from database"})
		return
	}

	handlers.WriteJSONResponse(w, http.StatusOK, histories)
}
