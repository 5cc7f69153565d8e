package db

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/tuanvumaihuynh/catalog-admin/internal/config"
)

var ErrEmptyURI = errors.New("empty connection string")

// Connector owns the process-wide pgx pool. The pool is created lazily on the first
// Connect call and reused afterwards; a failed attempt is retried on the next call.
type Connector struct {
	cfg   config.Store
	group singleflight.Group

	mu     sync.RWMutex
	client *Client
}

func NewConnector(cfg config.Store) *Connector {
	return &Connector{cfg: cfg}
}

func (c *Connector) Connect(ctx context.Context) (*Client, error) {
	if client := c.current(); client != nil {
		return client, nil
	}

	v, err, _ := c.group.Do("connect", func() (any, error) {
		if client := c.current(); client != nil {
			return client, nil
		}
		if c.cfg.URI == "" {
			return nil, ErrEmptyURI
		}

		pool, err := NewPgxPool(context.WithoutCancel(ctx), c.cfg)
		if err != nil {
			return nil, err
		}

		client := NewClient(pool)

		c.mu.Lock()
		c.client = client
		c.mu.Unlock()

		return client, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Client), nil
}

func (c *Connector) current() *Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

// Close releases the pool, if one was established.
func (c *Connector) Close(context.Context) error {
	c.mu.Lock()
	client := c.client
	c.client = nil
	c.mu.Unlock()

	if client != nil {
		client.Close()
	}

	return nil
}
