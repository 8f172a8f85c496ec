package dgps

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrEmptyMode is reported for a request without a mode.
var ErrEmptyMode = errors.New("mode must not be empty")

// Setter performs SetMode calls against one service. It holds no state
// between calls.
type Setter struct {
	bus     Bus
	service string
	logger  *logrus.Entry
}

// Option configures a Setter.
type Option func(*Setter)

// WithService overrides ServiceName.
func WithService(name string) Option {
	return func(s *Setter) { s.service = name }
}

// WithLogger sets the logger for diagnostics. Console output is not
// affected.
func WithLogger(logger *logrus.Entry) Option {
	return func(s *Setter) { s.logger = logger }
}

func NewSetter(bus Bus, opts ...Option) *Setter {
	s := &Setter{
		bus:     bus,
		service: ServiceName,
		logger:  logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithField("service", s.service)
	return s
}

// SetMode waits for the mode service, sends one request for mode and
// classifies the answer. It never retries.
func (s *Setter) SetMode(ctx context.Context, mode string) Result {
	result := Result{Mode: mode, Service: s.service}
	logger := s.logger.WithField("mode", mode)

	if mode == "" {
		result.Outcome = InvalidMode
		result.Err = ErrEmptyMode
		return result
	}

	logger.Debug("waiting for mode service")
	svc, err := s.bus.AwaitServiceReady(ctx, s.service)
	if err != nil {
		logger.WithError(err).Warn("mode service unavailable")
		result.Outcome = ServiceUnavailable
		result.Err = err
		return result
	}

	res, err := svc.Invoke(ctx, Request{Mode: mode})
	if err != nil {
		logger.WithError(err).Warn("mode request failed")
		result.Outcome = TransportFailure
		result.Err = err
		return result
	}

	if !res.Success {
		logger.WithField("reason", res.Message).Info("device refused mode")
		result.Outcome = LogicalFailure
		result.Reason = res.Message
		return result
	}

	logger.Info("mode set")
	result.Outcome = Success
	return result
}
