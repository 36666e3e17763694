// internal/pkg/redis/client.go
package redis

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client 是对 go-redis 的一层很薄的封装。
// addrs 支持逗号分隔的多个地址，单地址时退化为普通客户端。
type Client struct {
	client redis.UniversalClient
}

func NewClient(addrs string) (*Client, error) {
	c := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: strings.Split(addrs, ","),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Client{client: c}, nil
}

func (c *Client) GetClient() redis.UniversalClient {
	return c.client
}

// SetNX 封装了一次性的占位写入，用于幂等去重。
// 返回 true 表示本次调用抢到了 key。
func (c *Client) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, key, value, ttl).Result()
}

func (c *Client) Close() error {
	return c.client.Close()
}
