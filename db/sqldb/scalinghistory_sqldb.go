package sqldb

import (
	"database/sql"
	"time"

	"github.com/stepscale/autoscaler/db"
	"github.com/stepscale/autoscaler/models"

	"code.cloudfoundry.org/lager/v3"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type ScalingHistorySQLDB struct {
	dbConfig db.DatabaseConfig
	logger   lager.Logger
	sqldb    *sqlx.DB
}

func NewScalingHistorySQLDB(dbConfig db.DatabaseConfig, logger lager.Logger) (*ScalingHistorySQLDB, error) {
	sqldb, err := sqlx.Open(db.PostgresDriverName, dbConfig.URL)
	if err != nil {
		logger.Error("open-scaling-history-db", err, lager.Data{"dbConfig": dbConfig})
		return nil, err
	}

	err = sqldb.Ping()
	if err != nil {
		_ = sqldb.Close()
		logger.Error("ping-scaling-history-db", err, lager.Data{"dbConfig": dbConfig})
		return nil, err
	}

	sqldb.SetConnMaxLifetime(dbConfig.ConnectionMaxLifetime)
	sqldb.SetMaxIdleConns(dbConfig.MaxIdleConnections)
	sqldb.SetMaxOpenConns(dbConfig.MaxOpenConnections)
	sqldb.SetConnMaxIdleTime(dbConfig.ConnectionMaxIdleTime)

	return &ScalingHistorySQLDB{
		dbConfig: dbConfig,
		logger:   logger,
		sqldb:    sqldb,
	}, nil
}

func (sdb *ScalingHistorySQLDB) Close() error {
	err := sdb.sqldb.Close()
	if err != nil {
		sdb.logger.Error("close-scaling-history-db", err, lager.Data{"dbConfig": sdb.dbConfig})
		return err
	}
	return nil
}

func (sdb *ScalingHistorySQLDB) SaveScalingHistory(history *models.ScalingHistory) error {
	query := sdb.sqldb.Rebind("INSERT INTO scalinghistory" +
		"(serviceid, timestamp, policyid, status, olddesired, newdesired, delta, reason, message, error) " +
		" VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	_, err := sdb.sqldb.Exec(query, history.ServiceId, history.Timestamp, history.PolicyId, history.Status,
		history.OldDesired, history.NewDesired, history.Delta, history.Reason, history.Message, history.Error)

	if err != nil {
		sdb.logger.Error("save-scaling-history", err, lager.Data{"query": query, "history": history})
	}
	return err
}

func (sdb *ScalingHistorySQLDB) RetrieveScalingHistories(serviceId string, start int64, end int64, orderType db.OrderType, includeIgnored bool) ([]*models.ScalingHistory, error) {
	var orderStr string
	if orderType == db.DESC {
		orderStr = db.DESCSTR
	} else {
		orderStr = db.ASCSTR
	}

	query := sdb.sqldb.Rebind("SELECT timestamp, policyid, status, olddesired, newdesired, delta, reason, message, error FROM scalinghistory WHERE" +
		" serviceid = ? " +
		" AND timestamp >= ?" +
		" AND timestamp <= ?" +
		" ORDER BY timestamp " + orderStr)

	if end < 0 {
		end = time.Now().UnixNano()
	}

	histories := []*models.ScalingHistory{}
	rows, err := sdb.sqldb.Query(query, serviceId, start, end)
	if err != nil {
		sdb.logger.Error("retrieve-scaling-histories", err,
			lager.Data{"query": query, "serviceid": serviceId, "start": start, "end": end, "orderType": orderType})
		return nil, err
	}

	defer func() {
		_ = rows.Close()
		_ = rows.Err()
	}()

	var timestamp int64
	var status, oldDesired, newDesired, delta int
	var policyId, reason, message, errorMsg string

	for rows.Next() {
		if err = rows.Scan(&timestamp, &policyId, &status, &oldDesired, &newDesired, &delta, &reason, &message, &errorMsg); err != nil {
			sdb.logger.Error("retrieve-scaling-history-scan", err)
			return nil, err
		}

		history := models.ScalingHistory{
			ServiceId:  serviceId,
			Timestamp:  timestamp,
			PolicyId:   policyId,
			Status:     models.ScalingStatus(status),
			OldDesired: oldDesired,
			NewDesired: newDesired,
			Delta:      delta,
			Reason:     reason,
			Message:    message,
			Error:      errorMsg,
		}

		if includeIgnored || history.Status != models.ScalingStatusIgnored {
			histories = append(histories, &history)
		}
	}
	return histories, nil
}

func (sdb *ScalingHistorySQLDB) PruneScalingHistories(before int64) error {
	query := sdb.sqldb.Rebind("DELETE FROM scalinghistory WHERE timestamp <= ?")
	_, err := sdb.sqldb.Exec(query, before)
	if err != nil {
		sdb.logger.Error("failed-prune-scaling-histories-from-scalinghistory-table", err, lager.Data{"query": query, "before": before})
	}
	return err
}

func (sdb *ScalingHistorySQLDB) GetDBStatus() sql.DBStats {
	return sdb.sqldb.Stats()
}
