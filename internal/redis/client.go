package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// PriceTableChannel carries the id of a price table that was updated or deleted.
	PriceTableChannel = "price_table.changed"
	// SettingsChannel carries the id of the process that saved the company settings.
	SettingsChannel = "settings.changed"
)

var ErrCacheMiss = errors.New("cache miss")

type Client struct {
	rdb *redis.Client
}

type SessionData struct {
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Session management
func (c *Client) SetSession(ctx context.Context, sessionID string, data *SessionData, ttl time.Duration) error {
	return c.SetJSON(ctx, "session:"+sessionID, data, ttl)
}

func (c *Client) GetSession(ctx context.Context, sessionID string) (*SessionData, error) {
	var session SessionData
	if err := c.GetJSON(ctx, "session:"+sessionID, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.rdb.Del(ctx, "session:"+sessionID).Err()
}

// SetJSON stores value under key. A zero ttl keeps the key until deleted.
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, jsonData, ttl).Err()
}

// GetJSON decodes the value stored under key into dest, or returns ErrCacheMiss.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) error {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

// Price table cache
func priceTableKey(id uint) string {
	return fmt.Sprintf("price_table:%d", id)
}

func (c *Client) CachePriceTable(ctx context.Context, id uint, table interface{}, ttl time.Duration) error {
	return c.SetJSON(ctx, priceTableKey(id), table, ttl)
}

func (c *Client) GetCachedPriceTable(ctx context.Context, id uint, dest interface{}) error {
	return c.GetJSON(ctx, priceTableKey(id), dest)
}

// InvalidatePriceTable drops the cached copy and tells subscribers about it.
func (c *Client) InvalidatePriceTable(ctx context.Context, id uint) error {
	if err := c.rdb.Del(ctx, priceTableKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to drop cached price table %d: %w", id, err)
	}
	if err := c.Publish(ctx, PriceTableChannel, strconv.FormatUint(uint64(id), 10)); err != nil {
		return fmt.Errorf("failed to publish price table change: %w", err)
	}
	return nil
}

func (c *Client) Publish(ctx context.Context, channel, payload string) error {
	return c.rdb.Publish(ctx, channel, payload).Err()
}

// Watch calls fn for every message on channels until ctx is done. ready, when
// non-nil, runs once the server has confirmed the subscription.
func (c *Client) Watch(ctx context.Context, ready func(), fn func(channel, payload string), channels ...string) error {
	ps := c.rdb.Subscribe(ctx, channels...)
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %v: %w", channels, err)
	}
	if ready != nil {
		ready()
	}

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			fn(msg.Channel, msg.Payload)
		}
	}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
