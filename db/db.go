package db

import (
	"fmt"
	"io"
	"time"

	"github.com/stepscale/autoscaler/healthendpoint"
	"github.com/stepscale/autoscaler/models"
)

const (
	PostgresDriverName = "postgres"
	ScalingHistoryDb   = "scaling_history_db"
)

type OrderType uint8

const (
	DESC OrderType = iota
	ASC
)
const (
	DESCSTR string = "DESC"
	ASCSTR  string = "ASC"
)

var ErrDoesNotExist = fmt.Errorf("doesn't exist")

type DatabaseConfig struct {
	URL                   string        `yaml:"url"`
	MaxOpenConnections    int           `yaml:"max_open_connections"`
	MaxIdleConnections    int           `yaml:"max_idle_connections"`
	ConnectionMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
	ConnectionMaxIdleTime time.Duration `yaml:"connection_max_idletime"`
}

type ScalingHistoryDB interface {
	healthendpoint.DatabaseStatus
	SaveScalingHistory(history *models.ScalingHistory) error
	RetrieveScalingHistories(serviceId string, start int64, end int64, orderType OrderType, includeIgnored bool) ([]*models.ScalingHistory, error)
	PruneScalingHistories(before int64) error
	io.Closer
}
