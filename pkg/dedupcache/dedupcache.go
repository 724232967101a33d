// Package dedupcache wraps the upload service's Redis dedup-key cache. DeleteManager probes
// and deletes the key of every archived file, so a later re-upload of the same name is not
// treated as a duplicate. Grounded on the teacher's
// pkg/cbox/user/rest cache.go get/set/check idiom, adapted from redigo's pool-based API to
// github.com/go-redis/redis/v8's context-aware client.
package dedupcache

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// DefaultExpiry mirrors the source's 24-hour key lifetime.
const DefaultExpiry = 24 * time.Hour

// Client wraps a Redis connection used only for this worker's dedup keys.
type Client struct {
	rdb *redis.Client
}

// Config configures a new Client.
type Config struct {
	Host     string
	Port     int
	Password string
}

// New dials the configured Redis instance. The connection is lazy; dial errors surface on
// first use, matching go-redis's own connection model.
func New(c Config) *Client {
	return &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr(c.Host, c.Port),
			Password: c.Password,
		}),
	}
}

func addr(host string, port int) string {
	if port == 0 {
		port = 6379
	}
	return host + ":" + strconv.Itoa(port)
}

// SetByKey stores content under key with the given expiry.
func (c *Client) SetByKey(ctx context.Context, key, content string, expire time.Duration) error {
	if err := c.rdb.Set(ctx, key, content, expire).Err(); err != nil {
		return errors.Wrapf(err, "error setting dedup key %q", key)
	}
	return nil
}

// CheckByKey reports whether key currently exists.
func (c *Client) CheckByKey(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, errors.Wrapf(err, "error checking dedup key %q", key)
	}
	return n > 0, nil
}

// DeleteByKey removes key, freeing the destination name for a fresh upload-dedup cycle.
func (c *Client) DeleteByKey(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return errors.Wrapf(err, "error deleting dedup key %q", key)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
