package helpers

import (
	"net"
	"net/http"
	"time"
)

// CreateHTTPClient returns a client tuned for the short, frequent calls the
// control loop makes against the orchestrator, metric and discovery APIs.
func CreateHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: 30 * time.Second,
			}).DialContext,
			IdleConnTimeout:     5 * time.Second,
			MaxIdleConnsPerHost: 200,
		},
	}
}

type ServerConfig struct {
	Port int `yaml:"port"`
}
