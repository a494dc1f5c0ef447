package gateway

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"firewatch-backend/internal/config"
)

// Registered external service names
const (
	ServiceFace = "face-service"
	ServiceFire = "fire-service"
)

// Response is the successful result of a gateway call
type Response struct {
	StatusCode int
	Body       []byte
}

// Service is the resilient HTTP client in front of the external detection
// and identification services. It owns retry-with-backoff and a per-service
// circuit breaker; everything behind it is treated as a black box.
type Service struct {
	cfg      *config.Config
	client   *resty.Client
	circuit  CircuitStore
	services map[string]string // service name -> base URL
}

// NewService creates a detection gateway over the given service registry
func NewService(cfg *config.Config, circuit CircuitStore, services map[string]string) *Service {
	client := resty.New().
		SetTimeout(cfg.GatewayTimeout).
		SetRetryCount(0) // retry policy is owned by the gateway, not the transport

	return &Service{
		cfg:      cfg,
		client:   client,
		circuit:  circuit,
		services: services,
	}
}

// Call POSTs a JSON payload to an endpoint of a registered service
func (s *Service) Call(ctx context.Context, service, endpoint string, payload interface{}) (*Response, error) {
	return s.do(ctx, service, endpoint, func(req *resty.Request, url string) (*resty.Response, error) {
		return req.SetHeader("Content-Type", "application/json").SetBody(payload).Post(url)
	})
}

// CallMultipart POSTs a multipart form with one file part to an endpoint of
// a registered service. Used for image uploads such as /detect-face.
func (s *Service) CallMultipart(ctx context.Context, service, endpoint, fileField, fileName string, fileData []byte, fields map[string]string) (*Response, error) {
	return s.do(ctx, service, endpoint, func(req *resty.Request, url string) (*resty.Response, error) {
		return req.
			SetFileReader(fileField, fileName, bytes.NewReader(fileData)).
			SetFormData(fields).
			Post(url)
	})
}

func (s *Service) do(ctx context.Context, service, endpoint string, send func(*resty.Request, string) (*resty.Response, error)) (*Response, error) {
	baseURL, ok := s.services[service]
	if !ok {
		return nil, fmt.Errorf("unknown service %q", service)
	}

	failures, err := s.circuit.Failures(ctx, service)
	if err != nil {
		// A broken circuit store must not take the gateway down with it
		log.Warn().Err(err).Str("service", service).Msg("Circuit state unavailable, proceeding with call")
	} else if failures >= s.cfg.CircuitThreshold {
		log.Warn().
			Str("service", service).
			Str("endpoint", endpoint).
			Int("failures", failures).
			Msg("Circuit open, refusing call")
		return nil, &CircuitOpenError{Service: service}
	}

	url := baseURL + endpoint
	var lastErr error

	for attempt := 1; attempt <= s.cfg.GatewayMaxRetries; attempt++ {
		resp, err := send(s.client.R().SetContext(ctx), url)

		switch {
		case err != nil:
			// Transport-level failure: timeout, refused connection, DNS
			lastErr = err
		case resp.StatusCode() >= 200 && resp.StatusCode() < 300:
			if resetErr := s.circuit.Reset(ctx, service); resetErr != nil {
				log.Warn().Err(resetErr).Str("service", service).Msg("Failed to reset circuit state")
			}
			return &Response{StatusCode: resp.StatusCode(), Body: resp.Body()}, nil
		case resp.StatusCode() >= 400 && resp.StatusCode() < 500:
			// Client errors are not transient: fail fast, never retry
			log.Warn().
				Str("service", service).
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode()).
				Msg("Client error from external service")
			return nil, &ClientError{
				Service:    service,
				Endpoint:   endpoint,
				StatusCode: resp.StatusCode(),
				Body:       string(resp.Body()),
			}
		default:
			lastErr = fmt.Errorf("status %d", resp.StatusCode())
		}

		log.Warn().
			Str("service", service).
			Str("endpoint", endpoint).
			Int("attempt", attempt).
			Err(lastErr).
			Msg("Gateway call failed")

		if attempt < s.cfg.GatewayMaxRetries {
			if err := sleepContext(ctx, s.cfg.GatewayRetryBaseDelay*time.Duration(attempt)); err != nil {
				lastErr = err
				break
			}
		}
	}

	count, recordErr := s.circuit.RecordFailure(ctx, service, s.cfg.CircuitTTL)
	if recordErr != nil {
		log.Warn().Err(recordErr).Str("service", service).Msg("Failed to record circuit failure")
	} else {
		log.Error().
			Str("service", service).
			Str("endpoint", endpoint).
			Int("consecutive_failures", count).
			Err(lastErr).
			Msg("External service unavailable after retries")
	}

	return nil, &ServiceUnavailableError{Service: service, Endpoint: endpoint, Err: lastErr}
}

// HealthCheck probes a service's /health endpoint. A single GET, short
// timeout, no retries, no circuit mutation.
func (s *Service) HealthCheck(ctx context.Context, service string) bool {
	baseURL, ok := s.services[service]
	if !ok {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.HealthCheckTimeout)
	defer cancel()

	resp, err := s.client.R().SetContext(ctx).Get(baseURL + "/health")
	if err != nil {
		log.Debug().Err(err).Str("service", service).Msg("Health check failed")
		return false
	}
	return resp.StatusCode() == 200
}

// ResetCircuit clears the circuit breaker for a service (manual recovery)
func (s *Service) ResetCircuit(ctx context.Context, service string) error {
	if err := s.circuit.Reset(ctx, service); err != nil {
		return err
	}
	log.Info().Str("service", service).Msg("Circuit breaker reset")
	return nil
}

// Services returns the registered service names
func (s *Service) Services() []string {
	names := make([]string, 0, len(s.services))
	for name := range s.services {
		names = append(names, name)
	}
	return names
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
