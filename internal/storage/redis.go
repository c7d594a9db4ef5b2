package storage

import (
	"context"
	"crypto/tls"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Redis stores entries as plain string keys without expiry.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// OpenRedis accepts either a redis:// URL or "host:port,password=...,ssl=true".
func OpenRedis(conn string) (*Redis, error) {
	if conn == "" {
		return nil, errors.New("storage: redis url is required")
	}
	opts, err := redis.ParseURL(conn)
	if err != nil {
		parts := strings.Split(conn, ",")
		opts = &redis.Options{Addr: parts[0]}
		for _, p := range parts[1:] {
			kv := strings.SplitN(p, "=", 2)
			if len(kv) != 2 {
				continue
			}
			switch strings.ToLower(kv[0]) {
			case "password":
				opts.Password = kv[1]
			case "ssl":
				if strings.ToLower(kv[1]) == "true" {
					opts.TLSConfig = &tls.Config{}
				}
			}
		}
	}
	return NewRedis(redis.NewClient(opts)), nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
