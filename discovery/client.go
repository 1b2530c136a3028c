package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"code.cloudfoundry.org/lager/v3"
	"github.com/cenkalti/backoff/v4"
)

//counterfeiter:generate . Client

// Client publishes replica records to the external discovery directory. Both
// operations are idempotent: registering an already-registered replica and
// deregistering an absent one are no-op successes.
type Client interface {
	Register(ctx context.Context, serviceName string, replicaId string, address string) error
	Deregister(ctx context.Context, serviceName string, replicaId string) error
}

type RetryConfig struct {
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
	MaxElapsedTime  time.Duration `yaml:"max_elapsed_time"`
}

type httpDirectoryClient struct {
	logger     lager.Logger
	baseUrl    string
	httpClient *http.Client
	retry      RetryConfig
}

func NewHTTPClient(logger lager.Logger, baseUrl string, httpClient *http.Client, retry RetryConfig) Client {
	return &httpDirectoryClient{
		logger:     logger.Session("discovery-client"),
		baseUrl:    baseUrl,
		httpClient: httpClient,
		retry:      retry,
	}
}

type registerRequest struct {
	Address string `json:"address"`
}

func (c *httpDirectoryClient) Register(ctx context.Context, serviceName string, replicaId string, address string) error {
	body, err := json.Marshal(registerRequest{Address: address})
	if err != nil {
		return err
	}
	requestUrl := c.recordUrl(serviceName, replicaId)

	return c.retryTransient(ctx, func() error {
		request, err := http.NewRequestWithContext(ctx, http.MethodPut, requestUrl, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		request.Header.Set("Content-Type", "application/json")

		response, err := c.httpClient.Do(request)
		if err != nil {
			c.logger.Error("failed-register-request", err, lager.Data{"serviceName": serviceName, "replicaId": replicaId})
			return err
		}
		defer func() { _ = response.Body.Close() }()
		// conflict means the record already exists, which is success
		return checkResponse(response, http.StatusConflict)
	})
}

func (c *httpDirectoryClient) Deregister(ctx context.Context, serviceName string, replicaId string) error {
	requestUrl := c.recordUrl(serviceName, replicaId)

	return c.retryTransient(ctx, func() error {
		request, err := http.NewRequestWithContext(ctx, http.MethodDelete, requestUrl, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		response, err := c.httpClient.Do(request)
		if err != nil {
			c.logger.Error("failed-deregister-request", err, lager.Data{"serviceName": serviceName, "replicaId": replicaId})
			return err
		}
		defer func() { _ = response.Body.Close() }()
		// the record being absent already is success
		return checkResponse(response, http.StatusNotFound)
	})
}

func (c *httpDirectoryClient) recordUrl(serviceName string, replicaId string) string {
	return fmt.Sprintf("%s/v1/services/%s/replicas/%s", c.baseUrl, url.PathEscape(serviceName), url.PathEscape(replicaId))
}

func checkResponse(response *http.Response, noopStatus int) error {
	_, _ = io.Copy(io.Discard, response.Body)
	switch {
	case response.StatusCode == noopStatus:
		return nil
	case response.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("got %d from discovery directory", response.StatusCode)
	case response.StatusCode >= http.StatusBadRequest:
		return backoff.Permanent(fmt.Errorf("got %d from discovery directory", response.StatusCode))
	default:
		return nil
	}
}

func (c *httpDirectoryClient) retryTransient(ctx context.Context, operation func() error) error {
	exponential := backoff.NewExponentialBackOff()
	if c.retry.InitialInterval > 0 {
		exponential.InitialInterval = c.retry.InitialInterval
	}
	if c.retry.MaxInterval > 0 {
		exponential.MaxInterval = c.retry.MaxInterval
	}
	exponential.MaxElapsedTime = c.retry.MaxElapsedTime
	return backoff.Retry(operation, backoff.WithContext(exponential, ctx))
}
