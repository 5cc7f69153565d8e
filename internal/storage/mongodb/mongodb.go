package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"golang.org/x/sync/singleflight"

	"github.com/tuanvumaihuynh/catalog-admin/internal/config"
)

const defaultConnectTimeout = 10 * time.Second

var ErrEmptyURI = errors.New("empty connection string")

// Connector owns the process-wide MongoDB client. The client is created lazily on the
// first Connect call and reused afterwards; a failed attempt is retried on the next call.
type Connector struct {
	cfg config.Store

	group singleflight.Group

	mu     sync.RWMutex
	client *mongo.Client
	db     *mongo.Database
}

func NewConnector(cfg config.Store) *Connector {
	return &Connector{cfg: cfg}
}

// Connect returns the shared database handle, dialing and pinging the server if needed.
func (c *Connector) Connect(ctx context.Context) (*mongo.Database, error) {
	if db := c.current(); db != nil {
		return db, nil
	}

	v, err, _ := c.group.Do("connect", func() (any, error) {
		if db := c.current(); db != nil {
			return db, nil
		}

		client, err := c.dial(ctx)
		if err != nil {
			return nil, err
		}

		db := client.Database(c.cfg.Database)

		c.mu.Lock()
		c.client = client
		c.db = db
		c.mu.Unlock()

		return db, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*mongo.Database), nil
}

func (c *Connector) dial(ctx context.Context) (*mongo.Client, error) {
	if c.cfg.URI == "" {
		return nil, ErrEmptyURI
	}

	timeout := c.cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	opts := options.Client().
		ApplyURI(c.cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		SetMaxPoolSize(uint64(c.cfg.MaxPoolSize)).
		SetMonitor(otelmongo.NewMonitor())

	// Validate parses the URI eagerly so a malformed string fails here rather than on first command.
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}

	// The caller's context may be a short request context, so dial with a detached one.
	dialCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	client, err := mongo.Connect(dialCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := client.Ping(dialCtx, readpref.Primary()); err != nil {
		//nolint:errcheck
		client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("ping: %w", err)
	}

	return client, nil
}

func (c *Connector) current() *mongo.Database {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// Close disconnects the shared client, if one was established.
func (c *Connector) Close(ctx context.Context) error {
	c.mu.Lock()
	client := c.client
	c.client = nil
	c.db = nil
	c.mu.Unlock()

	if client == nil {
		return nil
	}

	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}

	return nil
}
