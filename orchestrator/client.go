package orchestrator

import (
	"bytes"
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

//counterfeiter:generate . Client

// Client is the narrow surface of the external orchestrator the control
// plane depends on. Replica placement and convergence towards the desired
// count are the orchestrator's business.
type Client interface {
	SetDesiredCount(ctx context.Context, serviceId string, count int) error
	ListReplicas(ctx context.Context, serviceId string) ([]models.Replica, error)
}

type RetryConfig struct {
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
	MaxElapsedTime  time.Duration `yaml:"max_elapsed_time"`
}

type httpOrchestratorClient struct {
	logger     lager.Logger
	baseUrl    string
	httpClient *http.Client
	retry      RetryConfig
}

func NewHTTPClient(logger lager.Logger, baseUrl string, httpClient *http.Client, retry RetryConfig) Client {
	return &httpOrchestratorClient{
		logger:     logger.Session("orchestrator-client"),
		baseUrl:    baseUrl,
		httpClient: httpClient,
		retry:      retry,
	}
}

type setDesiredCountRequest struct {
	Count int `json:"count"`
}

type listReplicasResponse struct {
	Replicas []models.Replica `json:"replicas"`
}

func (c *httpOrchestratorClient) SetDesiredCount(ctx context.Context, serviceId string, count int) error {
	body, err := json.Marshal(setDesiredCountRequest{Count: count})
	if err != nil {
		return err
	}
	requestUrl := fmt.Sprintf("%s/v1/services/%s/desired_count", c.baseUrl, url.PathEscape(serviceId))

	return retryTransient(ctx, c.retry, func() error {
		request, err := http.NewRequestWithContext(ctx, http.MethodPut, requestUrl, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		request.Header.Set("Content-Type", "application/json")

		response, err := c.httpClient.Do(request)
		if err != nil {
			c.logger.Error("failed-set-desired-count-request", err, lager.Data{"serviceId": serviceId, "count": count})
			return err
		}
		defer func() { _ = response.Body.Close() }()
		if err := checkResponse(response); err != nil {
			return err
		}
		_, _ = io.Copy(io.Discard, response.Body)
		return nil
	})
}

func (c *httpOrchestratorClient) ListReplicas(ctx context.Context, serviceId string) ([]models.Replica, error) {
	requestUrl := fmt.Sprintf("%s/v1/services/%s/replicas", c.baseUrl, url.PathEscape(serviceId))

	var replicas []models.Replica
	err := retryTransient(ctx, c.retry, func() error {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		response, err := c.httpClient.Do(request)
		if err != nil {
			c.logger.Error("failed-list-replicas-request", err, lager.Data{"serviceId": serviceId})
			return err
		}
		defer func() { _ = response.Body.Close() }()
		if err := checkResponse(response); err != nil {
			return err
		}

		var parsed listReplicasResponse
		if err := json.NewDecoder(response.Body).Decode(&parsed); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to parse replicas response: %w", err))
		}
		replicas = parsed.Replicas
		return nil
	})
	if err != nil {
		return nil, err
	}
	return replicas, nil
}

// checkResponse treats server-side failures as transient and client-side
// failures as permanent, so retries only happen where they can help.
func checkResponse(response *http.Response) error {
	switch {
	case response.StatusCode >= http.StatusInternalServerError:
		_, _ = io.Copy(io.Discard, response.Body)
		return fmt.Errorf("got %d from orchestrator", response.StatusCode)
	case response.StatusCode >= http.StatusBadRequest:
		_, _ = io.Copy(io.Discard, response.Body)
		return backoff.Permanent(fmt.Errorf("got %d from orchestrator", response.StatusCode))
	default:
		return nil
	}
}

func retryTransient(ctx context.Context, retry RetryConfig, operation func() error) error {
	exponential := backoff.NewExponentialBackOff()
	if retry.InitialInterval > 0 {
		exponential.InitialInterval = retry.InitialInterval
	}
	if retry.MaxInterval > 0 {
		exponential.MaxInterval = retry.MaxInterval
	}
	exponential.MaxElapsedTime = retry.MaxElapsedTime
	return backoff.Retry(operation, backoff.WithContext(exponential, ctx))
}
