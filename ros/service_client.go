package ros

import (
	"bytes"
	"context"
	"encoding/binary"
	"net"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// dialTimeout bounds connecting to a service provider.
const dialTimeout = 5 * time.Second

type defaultServiceClient struct {
	logger    *logrus.Entry
	service   string
	srvType   ServiceType
	masterURI string
	nodeID    string
}

func newDefaultServiceClient(logger *logrus.Entry, nodeID string, masterURI string, service string, srvType ServiceType) *defaultServiceClient {
	return &defaultServiceClient{
		logger:    logger.WithField("service", service),
		service:   service,
		srvType:   srvType,
		masterURI: masterURI,
		nodeID:    nodeID,
	}
}

func dialService(ctx context.Context, serviceURL *url.URL) (net.Conn, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", serviceURL.Host)
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to %s", serviceURL)
	}
	return conn, nil
}

// Call looks the service up, sends the request of srv and fills in its
// response. Cancelling ctx aborts the call by closing the connection.
func (c *defaultServiceClient) Call(ctx context.Context, srv Service) error {
	err := c.call(ctx, srv)
	if err != nil && ctx.Err() != nil {
		return errors.Wrapf(ctx.Err(), "calling %s", c.service)
	}
	return err
}

func (c *defaultServiceClient) call(ctx context.Context, srv Service) error {
	logger := c.logger

	serviceURL, err := lookupService(ctx, c.masterURI, c.nodeID, c.service)
	if err != nil {
		return err
	}
	conn, err := dialService(ctx, serviceURL)
	if err != nil {
		return err
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	// 1. Write connection header
	md5sum := c.srvType.MD5Sum()
	msgType := c.srvType.Name()
	headers := []header{
		{"service", c.service},
		{"md5sum", md5sum},
		{"type", msgType},
		{"callerid", c.nodeID},
	}
	logger.Debug("TCPROS Connection Header")
	for _, h := range headers {
		logger.Debugf("  `%s` = `%s`", h.key, h.value)
	}
	if err := writeConnectionHeader(headers, conn); err != nil {
		return errors.Wrap(err, "writing connection header")
	}

	// 2. Read response header
	resHeaders, err := readConnectionHeader(conn)
	if err != nil {
		return errors.Wrap(err, "reading connection header")
	}
	resHeaderMap := headerMap(resHeaders)
	logger.Debug("TCPROS Response Header:")
	for _, h := range resHeaders {
		logger.Debugf("  `%s` = `%s`", h.key, h.value)
	}
	if msg, ok := resHeaderMap["error"]; ok {
		return errors.Errorf("service %s refused connection: %s", c.service, msg)
	}
	if resHeaderMap["md5sum"] != md5sum {
		return errors.Wrapf(ErrIncompatibleService, "%s: md5sum %s, provider has %s",
			c.service, md5sum, resHeaderMap["md5sum"])
	}

	// 3. Send request
	var buf bytes.Buffer
	if err := srv.ReqMessage().Serialize(&buf); err != nil {
		return errors.Wrap(err, "serializing request")
	}
	if err := writeFrame(conn, buf.Bytes()); err != nil {
		return errors.Wrap(err, "sending request")
	}

	// 4. Read OK byte
	var ok byte
	if err := binary.Read(conn, binary.LittleEndian, &ok); err != nil {
		return errors.Wrap(err, "reading response status")
	}
	payload, err := readFrame(conn)
	if err != nil {
		return errors.Wrap(err, "reading response")
	}
	if ok == 0 {
		return &ServiceError{Service: c.service, Message: string(payload)}
	}

	// 5. Receive response
	logger.Debugf("Response of %d bytes", len(payload))
	if err := srv.ResMessage().Deserialize(bytes.NewReader(payload)); err != nil {
		return errors.Wrap(err, "deserializing response")
	}
	return nil
}

func (*defaultServiceClient) Shutdown() {}
