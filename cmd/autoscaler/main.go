package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/stepscale/autoscaler/aggregator"
	"github.com/stepscale/autoscaler/alarm"
	"github.com/stepscale/autoscaler/capacity"
	"github.com/stepscale/autoscaler/config"
	"github.com/stepscale/autoscaler/db"
	"github.com/stepscale/autoscaler/db/sqldb"
	"github.com/stepscale/autoscaler/discovery"
	"github.com/stepscale/autoscaler/healthendpoint"
	"github.com/stepscale/autoscaler/helpers"
	"github.com/stepscale/autoscaler/models"
	"github.com/stepscale/autoscaler/operator"
	"github.com/stepscale/autoscaler/orchestrator"
	"github.com/stepscale/autoscaler/registry"
	"github.com/stepscale/autoscaler/scaling"
	"github.com/stepscale/autoscaler/server"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
	"github.com/prometheus/client_golang/prometheus"
	circuit "github.com/rubyist/circuitbreaker"
	"github.com/tedsuo/ifrit"
	"github.com/tedsuo/ifrit/grouper"
	"github.com/tedsuo/ifrit/sigmon"
)

func main() {
	var path string
	flag.StringVar(&path, "c", "", "config file")
	flag.Parse()
	if path == "" {
		fmt.Fprintln(os.Stdout, "missing config file\nUsage:use '-c' option to specify the config file path")
		os.Exit(1)
	}

	conf, err := loadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stdout, "%s\n", err.Error())
		os.Exit(1)
	}

	logger := helpers.InitLoggerFromConfig(&conf.Logging, "autoscaler")
	asClock := clock.NewClock()

	historyDB, err := sqldb.NewScalingHistorySQLDB(conf.Db[db.ScalingHistoryDb], logger.Session("scaling-history-db"))
	if err != nil {
		logger.Error("failed to connect scaling history database", err, lager.Data{"dbConfig": conf.Db[db.ScalingHistoryDb]})
		os.Exit(1)
	}
	defer historyDB.Close()

	httpClient := helpers.CreateHTTPClient(*conf.HttpClientTimeout)
	orchClient := orchestrator.NewHTTPClient(logger, conf.Orchestrator.URL, httpClient, orchestrator.RetryConfig{
		InitialInterval: conf.Orchestrator.Retry.InitialInterval,
		MaxInterval:     conf.Orchestrator.Retry.MaxInterval,
		MaxElapsedTime:  conf.Orchestrator.Retry.MaxElapsedTime,
	})
	metricClient := aggregator.NewHTTPMetricClient(logger, conf.MetricCollector.URL, httpClient, aggregator.RetryConfig{
		InitialInterval: conf.MetricCollector.Retry.InitialInterval,
		MaxInterval:     conf.MetricCollector.Retry.MaxInterval,
		MaxElapsedTime:  conf.MetricCollector.Retry.MaxElapsedTime,
	})
	directoryClient := discovery.NewHTTPClient(logger, conf.Discovery.URL, httpClient, discovery.RetryConfig{
		InitialInterval: conf.Discovery.Retry.InitialInterval,
		MaxInterval:     conf.Discovery.Retry.MaxInterval,
		MaxElapsedTime:  conf.Discovery.Retry.MaxElapsedTime,
	})

	sampleChan := make(chan *models.MetricSample, conf.Channel.SampleChannelSize)
	transitionChan := make(chan *models.AlarmTransition, conf.Channel.TransitionChannelSize)
	deltaChan := make(chan *models.CapacityDelta, conf.Channel.DeltaChannelSize)

	alarms := make([]models.Alarm, 0, len(conf.Alarms))
	for _, alarmConf := range conf.Alarms {
		alarms = append(alarms, alarmConf.ToAlarm())
	}

	evaluator, err := alarm.NewEvaluator(logger, alarms, sampleChan, transitionChan)
	if err != nil {
		logger.Error("failed to create alarm evaluator", err)
		os.Exit(1)
	}

	engine, err := scaling.NewEngine(logger, asClock, conf.DefaultCoolDownSecs, conf.Policies, transitionChan, deltaChan)
	if err != nil {
		logger.Error("failed to create scaling engine", err)
		os.Exit(1)
	}

	breaker := circuit.NewConsecutiveBreaker(conf.CircuitBreaker.ConsecutiveFailureCount)
	target := models.ScalableTarget{
		ServiceId:       conf.Service.ServiceId,
		MinCapacity:     conf.Service.MinCapacity,
		MaxCapacity:     conf.Service.MaxCapacity,
		DesiredCapacity: conf.Service.InitialCapacity,
	}
	controller, err := capacity.NewController(logger, asClock, target, deltaChan, orchClient, breaker, historyDB, conf.DrainTimeout)
	if err != nil {
		logger.Error("failed to create capacity controller", err)
		os.Exit(1)
	}

	staleSampleCounter := aggregator.NewStaleSampleCounter()
	metricPollers := createMetricPollers(logger, conf, asClock, metricClient, sampleChan, staleSampleCounter)

	healthRegistry := registry.New(logger, conf.Service.ServiceName, conf.HealthProbe.FailureThreshold, directoryClient)
	prober := registry.NewProber(logger, asClock, conf.HealthProbe.Interval, conf.HealthProbe.Timeout,
		conf.HealthProbe.MaxProbesPerSecond, conf.Service.ServiceId, orchClient, healthRegistry,
		registry.HTTPProbe(httpClient, conf.HealthProbe.Path))

	historyPruner := operator.NewOperatorRunner(
		operator.NewScalingHistoryDbPruner(historyDB, conf.History.Retention, asClock, logger),
		conf.History.PruneInterval, asClock, logger.Session("scaling-history-db-pruner-runner"))

	httpStatusCollector := healthendpoint.NewHTTPStatusCollector("autoscaler", "autoscaler")
	promRegistry := prometheus.NewRegistry()
	healthendpoint.RegisterCollectors(promRegistry, []prometheus.Collector{
		healthendpoint.NewDatabaseStatusCollector("autoscaler", "autoscaler", "scalingHistoryDB", historyDB),
		httpStatusCollector,
		staleSampleCounter,
		evaluator,
		engine,
		controller,
		healthRegistry,
	}, true, logger.Session("autoscaler-prometheus"))

	autoscaler := ifrit.RunFunc(func(signals <-chan os.Signal, ready chan<- struct{}) error {
		controller.Start()
		engine.Start()
		evaluator.Start()
		for _, metricPoller := range metricPollers {
			metricPoller.Start()
		}

		close(ready)

		<-signals
		for _, metricPoller := range metricPollers {
			metricPoller.Stop()
		}
		evaluator.Stop()
		engine.Stop()
		controller.Stop()

		return nil
	})

	httpServer, err := server.NewServer(logger.Session("http_server"), conf, historyDB, controller, healthRegistry, httpStatusCollector)
	if err != nil {
		logger.Error("failed to create http server", err)
		os.Exit(1)
	}
	healthServer, err := healthendpoint.NewServer(conf.Health, logger.Session("health-server"), promRegistry)
	if err != nil {
		logger.Error("failed to create health server", err)
		os.Exit(1)
	}

	members := grouper.Members{
		{"autoscaler", autoscaler},
		{"prober", prober},
		{"history_pruner", historyPruner},
		{"http_server", httpServer},
		{"health_server", healthServer},
	}

	monitor := ifrit.Invoke(sigmon.New(grouper.NewOrdered(os.Interrupt, members)))

	logger.Info("started")

	err = <-monitor.Wait()
	if err != nil {
		logger.Error("exited-with-failure", err)
		os.Exit(1)
	}

	logger.Info("exited")
}

func loadConfig(path string) (*config.Config, error) {
	conf, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %s", path, err.Error())
	}

	err = conf.Validate()
	if err != nil {
		return nil, fmt.Errorf("failed to validate configuration: %s", err.Error())
	}
	return conf, nil
}

// createMetricPollers builds one poller per distinct metric stream the
// configured alarms watch. Each poller queries with the aggregation of the
// policy bound to the alarm.
func createMetricPollers(logger lager.Logger, conf *config.Config, pclock clock.Clock,
	metricClient aggregator.MetricClient, sampleChan chan<- *models.MetricSample,
	staleCounter prometheus.Counter) []*aggregator.MetricPoller {
	policiesByAlarm := make(map[string]models.ScalingPolicy)
	for _, policy := range conf.Policies {
		policiesByAlarm[policy.AlarmId] = policy
	}

	seen := make(map[string]bool)
	pollers := make([]*aggregator.MetricPoller, 0, len(conf.Alarms))
	for _, alarmConf := range conf.Alarms {
		aggregation := models.AggregationAverage
		if policy, ok := policiesByAlarm[alarmConf.Id]; ok {
			aggregation, _ = models.ParseAggregation(string(policy.Aggregation))
		}
		key := fmt.Sprintf("%s/%s/%s", alarmConf.MetricName, alarmConf.Period, aggregation)
		if seen[key] {
			continue
		}
		seen[key] = true
		pollers = append(pollers, aggregator.NewMetricPoller(logger, pclock, alarmConf.MetricName,
			conf.MetricCollector.Dimensions, alarmConf.Period, aggregation, metricClient, sampleChan, staleCounter))
	}
	return pollers
}
