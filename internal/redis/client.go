package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Client wraps the shared go-redis client.
type Client struct {
	*redis.Client
}

// Connect parses redisURL, opens a client and pings it so startup fails fast.
// URL format: redis://[:password@]host:port[/db]
func Connect(ctx context.Context, redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	c := &Client{Client: redis.NewClient(opts)}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Client.Ping(pingCtx).Err(); err != nil {
		c.Client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.WithFields(log.Fields{"addr": opts.Addr, "db": opts.DB}).Info("[Redis] Connected")
	return c, nil
}

// Close closes the connection pool.
func (c *Client) Close() error {
	return c.Client.Close()
}
