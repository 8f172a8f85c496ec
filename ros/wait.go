package ros

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// waitForServicePollInterval is the delay between readiness probes.
	waitForServicePollInterval = 300 * time.Millisecond
	probeTimeout               = 2 * time.Second
)

// probeService checks that service is registered and that its provider
// answers a probe connection header.
func probeService(ctx context.Context, masterURI, callerID, service string) error {
	serviceURL, err := lookupService(ctx, masterURI, callerID, service)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	conn, err := dialService(ctx, serviceURL)
	if err != nil {
		return err
	}
	defer conn.Close()
	deadline, _ := ctx.Deadline()
	_ = conn.SetDeadline(deadline)

	headers := []header{
		{"probe", "1"},
		{"md5sum", "*"},
		{"callerid", callerID},
		{"service", service},
	}
	if err := writeConnectionHeader(headers, conn); err != nil {
		return errors.Wrap(err, "writing probe header")
	}
	resHeaders, err := readConnectionHeader(conn)
	if err != nil {
		return errors.Wrap(err, "reading probe response")
	}
	if msg, ok := headerMap(resHeaders)["error"]; ok {
		return errors.Errorf("probe of %s refused: %s", service, msg)
	}
	return nil
}

// waitForService polls until service is ready, ctx is done or done is
// closed.
func waitForService(ctx context.Context, logger *logrus.Entry, masterURI, callerID, service string, done <-chan struct{}) error {
	ticker := time.NewTicker(waitForServicePollInterval)
	defer ticker.Stop()

	announced := false
	for {
		err := probeService(ctx, masterURI, callerID, service)
		if err == nil {
			logger.Debugf("service [%s] is ready", service)
			return nil
		}
		if !announced {
			logger.WithError(err).Infof("waiting for service [%s]", service)
			announced = true
		} else {
			logger.WithError(err).Debugf("service [%s] not ready", service)
		}

		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "waiting for service %s", service)
		case <-done:
			return errors.Wrapf(ErrNodeShutdown, "waiting for service %s", service)
		case <-ticker.C:
		}
	}
}
