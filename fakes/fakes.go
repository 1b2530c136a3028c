package fakes

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

//counterfeiter:generate -o ./fake_orchestrator_client.go -fake-name FakeOrchestratorClient ../orchestrator Client
//counterfeiter:generate -o ./fake_discovery_client.go -fake-name FakeDiscoveryClient ../discovery Client
//counterfeiter:generate -o ./fake_metric_client.go -fake-name FakeMetricClient ../aggregator MetricClient
//counterfeiter:generate -o ./fake_scalinghistory_db.go -fake-name FakeScalingHistoryDB ../db ScalingHistoryDB
