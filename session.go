package vastdb

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/vast-data/vastdb-go/errors"
	"github.com/vast-data/vastdb-go/logger"
	vnet "github.com/vast-data/vastdb-go/net"
)

// BackoffConfig bounds the connection-level retries performed around each
// transaction verb. It is the only retry policy in the SDK; the data-plane
// code above the transport never retries.
type BackoffConfig struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

func (c BackoffConfig) withDefaults() BackoffConfig {
	if c.MaxRetries == 0 {
		c.MaxRetries = 4
	}
	if c.MinBackoff == 0 {
		c.MinBackoff = 1 * time.Second
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = 30 * time.Second
	}
	return c
}

// Config configures a Session. The zero value is usable when the standard
// AWS environment variables are set.
type Config struct {
	// Endpoints lists the cluster endpoints. An endpoint whose final
	// IPv4 octet is an inclusive "first-last" range expands into one
	// endpoint per address. Defaults to $AWS_S3_ENDPOINT_URL.
	Endpoints []string

	// AccessKey and SecretKey default to $AWS_ACCESS_KEY_ID and
	// $AWS_SECRET_ACCESS_KEY.
	AccessKey string
	SecretKey string

	Backoff BackoffConfig

	// Logger defaults to a standard logger on stderr.
	Logger logger.Logger

	// Tracer defaults to the opentracing global tracer.
	Tracer opentracing.Tracer

	// Transport and ObjectStore override the HTTP transport and the S3
	// bucket store. Intended for tests.
	Transport   Transport
	ObjectStore ObjectStore
}

func (c Config) withDefaults() Config {
	if len(c.Endpoints) == 0 {
		if v := os.Getenv("AWS_S3_ENDPOINT_URL"); v != "" {
			c.Endpoints = []string{v}
		}
	}
	if c.AccessKey == "" {
		c.AccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
	}
	if c.SecretKey == "" {
		c.SecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	c.Backoff = c.Backoff.withDefaults()
	if c.Logger == nil {
		c.Logger = logger.NewStandardLogger(os.Stderr)
	}
	if c.Tracer == nil {
		c.Tracer = opentracing.GlobalTracer()
	}
	return c
}

// Session holds the connection pool against one cluster. It is safe for
// concurrent use; each transaction opened from it is not.
type Session struct {
	endpoints  []*vnet.URI
	transports []Transport
	next       uint32 // round-robin cursor over transports

	store  ObjectStore
	logger logger.Logger
	tracer opentracing.Tracer
}

// NewSession connects a session to the configured endpoints. Endpoint
// ranges are expanded once, here; expansion plays no further role after
// the pool is built.
func NewSession(cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	if len(cfg.Endpoints) == 0 {
		return nil, errors.New(ErrInvalidArgument, "no endpoint configured (set Config.Endpoints or $AWS_S3_ENDPOINT_URL)")
	}

	addresses, err := vnet.ExpandAddresses(cfg.Endpoints)
	if err != nil {
		return nil, errors.Wrap(err, "expanding endpoint addresses")
	}
	endpoints := make([]*vnet.URI, len(addresses))
	for i, address := range addresses {
		uri, err := vnet.NewURIFromAddress(address)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing endpoint %q", address)
		}
		endpoints[i] = uri
	}

	s := &Session{
		endpoints: endpoints,
		store:     cfg.ObjectStore,
		logger:    cfg.Logger,
		tracer:    cfg.Tracer,
	}

	if cfg.Transport != nil {
		s.transports = []Transport{cfg.Transport}
	} else {
		s.transports = make([]Transport, len(endpoints))
		for i, uri := range endpoints {
			s.transports[i] = newHTTPTransport(uri, cfg.Backoff, cfg.Logger)
		}
	}
	if s.store == nil {
		store, err := newS3ObjectStore(endpoints[0].Normalize(), cfg.AccessKey, cfg.SecretKey)
		if err != nil {
			return nil, err
		}
		s.store = store
	}
	return s, nil
}

// Endpoints returns the expanded endpoint pool.
func (s *Session) Endpoints() []*vnet.URI {
	return s.endpoints
}

func (s *Session) String() string {
	return fmt.Sprintf("Session(endpoint=%s, pool=%d)", s.endpoints[0], len(s.endpoints))
}

// transport picks the next pool member, round-robin.
func (s *Session) transport() Transport {
	i := atomic.AddUint32(&s.next, 1)
	return s.transports[int(i-1)%len(s.transports)]
}
