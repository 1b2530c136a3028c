package healthendpoint

import (
	"fmt"
	"net/http"

	"github.com/stepscale/autoscaler/models"

	"code.cloudfoundry.org/lager/v3"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tedsuo/ifrit"
	"github.com/tedsuo/ifrit/http_server"
	"golang.org/x/crypto/bcrypt"
)

type basicAuthenticationMiddleware struct {
	usernameHash []byte
	passwordHash []byte
}

func (bam *basicAuthenticationMiddleware) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, authOK := r.BasicAuth()

		if !authOK || bcrypt.CompareHashAndPassword(bam.usernameHash, []byte(username)) != nil || bcrypt.CompareHashAndPassword(bam.passwordHash, []byte(password)) != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewServer serves liveness plus the prometheus gatherer on the health port,
// optionally behind basic auth when credentials are configured.
func NewServer(conf models.HealthConfig, logger lager.Logger, gatherer prometheus.Gatherer) (ifrit.Runner, error) {
	healthRouter, err := NewHealthRouter(conf, logger, gatherer)
	if err != nil {
		return nil, err
	}

	addr := fmt.Sprintf("0.0.0.0:%d", conf.Port)
	logger.Info("new-health-server", lager.Data{"addr": addr})
	return http_server.New(addr, healthRouter), nil
}

func NewHealthRouter(conf models.HealthConfig, logger lager.Logger, gatherer prometheus.Gatherer) (*mux.Router, error) {
	if conf.HealthCheckUsername == "" && conf.HealthCheckPassword == "" &&
		conf.HealthCheckUsernameHash == "" && conf.HealthCheckPasswordHash == "" {
		router := mux.NewRouter()
		router.PathPrefix("").Handler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
		return router, nil
	}

	basicAuthentication, err := createBasicAuthMiddleware(logger, conf.HealthCheckUsernameHash, conf.HealthCheckUsername, conf.HealthCheckPasswordHash, conf.HealthCheckPassword)
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	everything := router.PathPrefix("").Subrouter()
	everything.Use(basicAuthentication.middleware)
	everything.PathPrefix("").Handler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return router, nil
}

func createBasicAuthMiddleware(logger lager.Logger, usernameHash string, username string, passwordHash string, password string) (*basicAuthenticationMiddleware, error) {
	usernameHashByte, err := hashOrPlaintext(logger, usernameHash, username)
	if err != nil {
		return nil, err
	}

	passwordHashByte, err := hashOrPlaintext(logger, passwordHash, password)
	if err != nil {
		return nil, err
	}

	return &basicAuthenticationMiddleware{
		usernameHash: usernameHashByte,
		passwordHash: passwordHashByte,
	}, nil
}

func hashOrPlaintext(logger lager.Logger, hash string, plaintext string) ([]byte, error) {
	if hash != "" {
		return []byte(hash), nil
	}
	// MinCost as the config already provided the value as cleartext
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.MinCost)
	if err != nil {
		logger.Error("failed-hashing-basic-auth-credential", err)
		return nil, err
	}
	return hashed, nil
}
