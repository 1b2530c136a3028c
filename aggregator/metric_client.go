package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/stepscale/autoscaler/models"

	"code.cloudfoundry.org/lager/v3"
	"github.com/cenkalti/backoff/v4"
)

//counterfeiter:generate . MetricClient

// MetricClient queries the external metric API for one aggregated sample of
// a metric over a sampling window. It is a poll source with no delivery
// guarantee beyond at most one sample per window.
type MetricClient interface {
	Query(ctx context.Context, metricName string, dimensions map[string]string, period time.Duration, aggregation models.Aggregation) (*models.MetricSample, error)
}

type RetryConfig struct {
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
	MaxElapsedTime  time.Duration `yaml:"max_elapsed_time"`
}

type httpMetricClient struct {
	logger     lager.Logger
	baseUrl    string
	httpClient *http.Client
	retry      RetryConfig
}

func NewHTTPMetricClient(logger lager.Logger, baseUrl string, httpClient *http.Client, retry RetryConfig) MetricClient {
	return &httpMetricClient{
		logger:     logger.Session("metric-client"),
		baseUrl:    baseUrl,
		httpClient: httpClient,
		retry:      retry,
	}
}

func (c *httpMetricClient) Query(ctx context.Context, metricName string, dimensions map[string]string, period time.Duration, aggregation models.Aggregation) (*models.MetricSample, error) {
	query := url.Values{}
	query.Set("period", period.String())
	query.Set("aggregation", string(aggregation))
	for key, value := range dimensions {
		query.Set("dim."+key, value)
	}
	requestUrl := fmt.Sprintf("%s/v1/metrics/%s?%s", c.baseUrl, url.PathEscape(metricName), query.Encode())

	var sample *models.MetricSample
	operation := func() error {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		response, err := c.httpClient.Do(request)
		if err != nil {
			c.logger.Error("failed-query-request", err, lager.Data{"metricName": metricName})
			return err
		}
		defer func() { _ = response.Body.Close() }()

		if response.StatusCode >= http.StatusInternalServerError {
			_, _ = io.Copy(io.Discard, response.Body)
			return fmt.Errorf("got %d from metric api", response.StatusCode)
		}
		if response.StatusCode >= http.StatusBadRequest {
			_, _ = io.Copy(io.Discard, response.Body)
			return backoff.Permanent(fmt.Errorf("got %d from metric api", response.StatusCode))
		}

		var parsed models.MetricSample
		if err := json.NewDecoder(response.Body).Decode(&parsed); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to parse metric sample: %w", err))
		}
		sample = &parsed
		return nil
	}

	exponential := backoff.NewExponentialBackOff()
	if c.retry.InitialInterval > 0 {
		exponential.InitialInterval = c.retry.InitialInterval
	}
	if c.retry.MaxInterval > 0 {
		exponential.MaxInterval = c.retry.MaxInterval
	}
	exponential.MaxElapsedTime = c.retry.MaxElapsedTime
	if err := backoff.Retry(operation, backoff.WithContext(exponential, ctx)); err != nil {
		return nil, err
	}
	return sample, nil
}
