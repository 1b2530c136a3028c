package config

import (
	"fmt"
	"time"

	"github.com/stepscale/autoscaler/db"
	"github.com/stepscale/autoscaler/helpers"
	"github.com/stepscale/autoscaler/models"
	"github.com/stepscale/autoscaler/scaling"
)

const (
	DefaultLoggingLevel           = "info"
	DefaultServerPort             = 8080
	DefaultHealthServerPort       = 8081
	DefaultCoolDownSecs           = 300
	DefaultSampleChannelSize      = 200
	DefaultTransitionChannelSize  = 200
	DefaultDeltaChannelSize       = 200
	DefaultDrainTimeout           = 10 * time.Second
	DefaultProbeInterval          = 10 * time.Second
	DefaultProbeTimeout           = 3 * time.Second
	DefaultFailureThreshold       = 3
	DefaultMaxProbesPerSecond     = 50.0
	DefaultProbePath              = "/health"
	DefaultHistoryPruneInterval   = 12 * time.Hour
	DefaultHistoryRetention       = 10 * 24 * time.Hour
	DefaultBreakerFailureCount    = 3
	DefaultRetryInitialInterval   = 500 * time.Millisecond
	DefaultRetryMaxInterval       = 10 * time.Second
	DefaultRetryMaxElapsedTime    = 30 * time.Second
)

var DefaultHttpClientTimeout = 5 * time.Second

type ServiceConfig struct {
	ServiceId       string `yaml:"service_id"`
	ServiceName     string `yaml:"service_name"`
	MinCapacity     int    `yaml:"min_capacity"`
	MaxCapacity     int    `yaml:"max_capacity"`
	InitialCapacity int    `yaml:"initial_capacity"`
}

type RetryConfig struct {
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
	MaxElapsedTime  time.Duration `yaml:"max_elapsed_time"`
}

type OrchestratorConfig struct {
	URL   string      `yaml:"url"`
	Retry RetryConfig `yaml:"retry"`
}

type MetricCollectorConfig struct {
	URL        string            `yaml:"url"`
	Dimensions map[string]string `yaml:"dimensions"`
	Retry      RetryConfig       `yaml:"retry"`
}

type DiscoveryConfig struct {
	URL   string      `yaml:"url"`
	Retry RetryConfig `yaml:"retry"`
}

type AlarmConfig struct {
	Id                string        `yaml:"id"`
	MetricName        string        `yaml:"metric_name"`
	Comparator        string        `yaml:"comparator"`
	Threshold         float64       `yaml:"threshold"`
	EvaluationPeriods int           `yaml:"evaluation_periods"`
	Period            time.Duration `yaml:"period"`
}

func (a AlarmConfig) ToAlarm() models.Alarm {
	return models.Alarm{
		Id:                a.Id,
		MetricName:        a.MetricName,
		Comparator:        a.Comparator,
		Threshold:         a.Threshold,
		EvaluationPeriods: a.EvaluationPeriods,
		Period:            a.Period,
		State:             models.AlarmStateOK,
	}
}

type HealthProbeConfig struct {
	Interval           time.Duration `yaml:"interval"`
	Timeout            time.Duration `yaml:"timeout"`
	FailureThreshold   int           `yaml:"failure_threshold"`
	MaxProbesPerSecond float64       `yaml:"max_probes_per_second"`
	Path               string        `yaml:"path"`
}

type ChannelConfig struct {
	SampleChannelSize     int `yaml:"sample_channel_size"`
	TransitionChannelSize int `yaml:"transition_channel_size"`
	DeltaChannelSize      int `yaml:"delta_channel_size"`
}

type CircuitBreakerConfig struct {
	ConsecutiveFailureCount int64 `yaml:"consecutive_failure_count"`
}

type HistoryConfig struct {
	PruneInterval time.Duration `yaml:"prune_interval"`
	Retention     time.Duration `yaml:"retention"`
}

type Config struct {
	Logging             helpers.LoggingConfig        `yaml:"logging"`
	Server              helpers.ServerConfig         `yaml:"server"`
	Health              models.HealthConfig          `yaml:"health"`
	Db                  map[string]db.DatabaseConfig `yaml:"db"`
	Service             ServiceConfig                `yaml:"service"`
	Orchestrator        OrchestratorConfig           `yaml:"orchestrator"`
	MetricCollector     MetricCollectorConfig        `yaml:"metric_collector"`
	Discovery           DiscoveryConfig              `yaml:"discovery"`
	Alarms              []AlarmConfig                `yaml:"alarms"`
	Policies            []models.ScalingPolicy       `yaml:"policies"`
	HealthProbe         HealthProbeConfig            `yaml:"health_probe"`
	Channel             ChannelConfig                `yaml:"channel"`
	CircuitBreaker      CircuitBreakerConfig         `yaml:"circuit_breaker"`
	History             HistoryConfig                `yaml:"history"`
	DefaultCoolDownSecs int                          `yaml:"default_cool_down_secs"`
	DrainTimeout        time.Duration                `yaml:"drain_timeout"`
	HttpClientTimeout   *time.Duration               `yaml:"http_client_timeout,omitempty"`
}

func defaultConfig() Config {
	return Config{
		Logging: helpers.LoggingConfig{Level: DefaultLoggingLevel},
		Server:  helpers.ServerConfig{Port: DefaultServerPort},
		Health:  models.HealthConfig{Port: DefaultHealthServerPort},
		Db:      make(map[string]db.DatabaseConfig),
		Orchestrator: OrchestratorConfig{
			Retry: defaultRetryConfig(),
		},
		MetricCollector: MetricCollectorConfig{
			Retry: defaultRetryConfig(),
		},
		Discovery: DiscoveryConfig{
			Retry: defaultRetryConfig(),
		},
		HealthProbe: HealthProbeConfig{
			Interval:           DefaultProbeInterval,
			Timeout:            DefaultProbeTimeout,
			FailureThreshold:   DefaultFailureThreshold,
			MaxProbesPerSecond: DefaultMaxProbesPerSecond,
			Path:               DefaultProbePath,
		},
		Channel: ChannelConfig{
			SampleChannelSize:     DefaultSampleChannelSize,
			TransitionChannelSize: DefaultTransitionChannelSize,
			DeltaChannelSize:      DefaultDeltaChannelSize,
		},
		CircuitBreaker: CircuitBreakerConfig{
			ConsecutiveFailureCount: DefaultBreakerFailureCount,
		},
		History: HistoryConfig{
			PruneInterval: DefaultHistoryPruneInterval,
			Retention:     DefaultHistoryRetention,
		},
		DefaultCoolDownSecs: DefaultCoolDownSecs,
		DrainTimeout:        DefaultDrainTimeout,
		HttpClientTimeout:   &DefaultHttpClientTimeout,
	}
}

func defaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialInterval: DefaultRetryInitialInterval,
		MaxInterval:     DefaultRetryMaxInterval,
		MaxElapsedTime:  DefaultRetryMaxElapsedTime,
	}
}

func LoadConfig(filepath string) (*Config, error) {
	conf := defaultConfig()
	if err := helpers.LoadYamlFile(filepath, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func (c *Config) Validate() error {
	if err := c.validateService(); err != nil {
		return err
	}
	if err := c.validateEndpoints(); err != nil {
		return err
	}
	if err := c.validateAlarms(); err != nil {
		return err
	}
	if err := c.validatePolicies(); err != nil {
		return err
	}
	if err := c.validateHealthProbe(); err != nil {
		return err
	}
	if err := c.validateChannels(); err != nil {
		return err
	}
	if c.DrainTimeout <= 0 {
		return fmt.Errorf("Configuration error: drain_timeout is less-equal than 0")
	}
	if *c.HttpClientTimeout <= 0 {
		return fmt.Errorf("Configuration error: http_client_timeout is less-equal than 0")
	}
	return c.Health.Validate()
}

func (c *Config) validateService() error {
	if c.Service.ServiceId == "" {
		return fmt.Errorf("Configuration error: service.service_id is empty")
	}
	if c.Service.ServiceName == "" {
		return fmt.Errorf("Configuration error: service.service_name is empty")
	}
	if c.Service.MinCapacity < 0 {
		return fmt.Errorf("Configuration error: service.min_capacity is negative")
	}
	if c.Service.MinCapacity > c.Service.MaxCapacity {
		return fmt.Errorf("Configuration error: service.min_capacity is greater than service.max_capacity")
	}
	if c.Service.InitialCapacity < c.Service.MinCapacity || c.Service.InitialCapacity > c.Service.MaxCapacity {
		return fmt.Errorf("Configuration error: service.initial_capacity is out of [min_capacity, max_capacity]")
	}
	return nil
}

func (c *Config) validateEndpoints() error {
	if c.Orchestrator.URL == "" {
		return fmt.Errorf("Configuration error: orchestrator.url is empty")
	}
	if c.MetricCollector.URL == "" {
		return fmt.Errorf("Configuration error: metric_collector.url is empty")
	}
	if c.Discovery.URL == "" {
		return fmt.Errorf("Configuration error: discovery.url is empty")
	}
	if c.Db[db.ScalingHistoryDb].URL == "" {
		return fmt.Errorf("Configuration error: db.scaling_history_db.url is empty")
	}
	return nil
}

func (c *Config) validateAlarms() error {
	if len(c.Alarms) == 0 {
		return fmt.Errorf("Configuration error: no alarms defined")
	}
	seen := make(map[string]bool)
	for _, alarm := range c.Alarms {
		if alarm.Id == "" {
			return fmt.Errorf("Configuration error: alarm id is empty")
		}
		if seen[alarm.Id] {
			return fmt.Errorf("Configuration error: duplicate alarm id %s", alarm.Id)
		}
		seen[alarm.Id] = true
		if alarm.MetricName == "" {
			return fmt.Errorf("Configuration error: alarm %s has no metric name", alarm.Id)
		}
		if alarm.Comparator != models.ComparatorGreaterOrEqual && alarm.Comparator != models.ComparatorLessOrEqual {
			return fmt.Errorf("Configuration error: alarm %s has unsupported comparator %q", alarm.Id, alarm.Comparator)
		}
		if alarm.EvaluationPeriods <= 0 {
			return fmt.Errorf("Configuration error: alarm %s evaluation_periods is less-equal than 0", alarm.Id)
		}
		if alarm.Period <= 0 {
			return fmt.Errorf("Configuration error: alarm %s period is less-equal than 0", alarm.Id)
		}
	}
	return nil
}

func (c *Config) validatePolicies() error {
	if len(c.Policies) == 0 {
		return fmt.Errorf("Configuration error: no policies defined")
	}
	alarmIds := make(map[string]bool)
	for _, alarm := range c.Alarms {
		alarmIds[alarm.Id] = true
	}
	seenPolicies := make(map[string]bool)
	boundAlarms := make(map[string]bool)
	for _, policy := range c.Policies {
		if policy.Id == "" {
			return fmt.Errorf("Configuration error: policy id is empty")
		}
		if seenPolicies[policy.Id] {
			return fmt.Errorf("Configuration error: duplicate policy id %s", policy.Id)
		}
		seenPolicies[policy.Id] = true
		if !alarmIds[policy.AlarmId] {
			return fmt.Errorf("Configuration error: policy %s references unknown alarm %s", policy.Id, policy.AlarmId)
		}
		if boundAlarms[policy.AlarmId] {
			return fmt.Errorf("Configuration error: alarm %s is bound to more than one policy", policy.AlarmId)
		}
		boundAlarms[policy.AlarmId] = true
		if policy.Direction != models.ScalingDirectionUp && policy.Direction != models.ScalingDirectionDown {
			return fmt.Errorf("Configuration error: policy %s has unsupported direction %q", policy.Id, policy.Direction)
		}
		if _, err := models.ParseAggregation(string(policy.Aggregation)); err != nil {
			return fmt.Errorf("Configuration error: policy %s: %s", policy.Id, err.Error())
		}
		if _, err := scaling.NewStepTable(policy.Steps); err != nil {
			return fmt.Errorf("Configuration error: policy %s: %s", policy.Id, err.Error())
		}
	}
	return nil
}

func (c *Config) validateHealthProbe() error {
	if c.HealthProbe.Interval <= 0 {
		return fmt.Errorf("Configuration error: health_probe.interval is less-equal than 0")
	}
	if c.HealthProbe.Timeout <= 0 {
		return fmt.Errorf("Configuration error: health_probe.timeout is less-equal than 0")
	}
	if c.HealthProbe.FailureThreshold < 1 {
		return fmt.Errorf("Configuration error: health_probe.failure_threshold is less than 1")
	}
	if c.HealthProbe.MaxProbesPerSecond <= 0 {
		return fmt.Errorf("Configuration error: health_probe.max_probes_per_second is less-equal than 0")
	}
	return nil
}

func (c *Config) validateChannels() error {
	if c.Channel.SampleChannelSize <= 0 {
		return fmt.Errorf("Configuration error: channel.sample_channel_size is less-equal than 0")
	}
	if c.Channel.TransitionChannelSize <= 0 {
		return fmt.Errorf("Configuration error: channel.transition_channel_size is less-equal than 0")
	}
	if c.Channel.DeltaChannelSize <= 0 {
		return fmt.Errorf("Configuration error: channel.delta_channel_size is less-equal than 0")
	}
	return nil
}
