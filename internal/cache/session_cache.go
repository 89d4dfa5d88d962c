package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"livequiz/internal/model"
)

// SessionCache keeps a short-lived snapshot of each live session so slug
// lookups during admission don't hit Mongo on every handshake.
type SessionCache interface {
	Set(ctx context.Context, session *model.Session) error
	GetByURL(ctx context.Context, url string) (*model.Session, error)
	Delete(ctx context.Context, url string) error
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *sessionCache) key(url string) string {
	return "session:url:" + url
}

func (c *sessionCache) Set(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(session.URL), data, c.ttl).Err()
}

func (c *sessionCache) GetByURL(ctx context.Context, url string) (*model.Session, error) {
	data, err := c.client.Get(ctx, c.key(url)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session model.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *sessionCache) Delete(ctx context.Context, url string) error {
	return c.client.Del(ctx, c.key(url)).Err()
}
