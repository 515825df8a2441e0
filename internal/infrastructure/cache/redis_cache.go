package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"jan-server/services/messaging-api/internal/domain/identity"
)

// CacheVersion is bumped whenever the cached profile layout changes.
const CacheVersion = "v1"

const profileKeyPrefix = "messaging:profile:"

// ProfileCache keeps resolved profiles in Redis for a bounded time.
type ProfileCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewProfileCache connects to Redis. redisURL may list several comma separated nodes.
func NewProfileCache(redisURL string, ttl time.Duration, log zerolog.Logger) (*ProfileCache, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis url must be provided")
	}

	opts, err := buildUniversalOptions(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if len(opts.Addrs) > 1 && opts.DB != 0 {
		log.Warn().Msg("ignoring non-zero DB when using redis cluster configuration")
		opts.DB = 0
	}

	client := redis.NewUniversalClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	log.Info().Dur("ttl", ttl).Msg("connected to redis profile cache")
	return &ProfileCache{client: client, ttl: ttl}, nil
}

func (c *ProfileCache) Get(ctx context.Context, id string) (*identity.Profile, bool, error) {
	raw, err := c.client.Get(ctx, profileKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var profile identity.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		_ = c.client.Del(ctx, profileKey(id)).Err()
		return nil, false, nil
	}
	return &profile, true, nil
}

func (c *ProfileCache) Set(ctx context.Context, profile *identity.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return c.client.Set(ctx, profileKey(profile.ID), raw, c.ttl).Err()
}

func (c *ProfileCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, profileKey(id)).Err()
}

// Close releases the underlying connections.
func (c *ProfileCache) Close() error {
	return c.client.Close()
}

func profileKey(id string) string {
	return profileKeyPrefix + CacheVersion + ":" + id
}

func buildUniversalOptions(raw string) (*redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if !strings.Contains(part, "://") {
			opts.Addrs = append(opts.Addrs, part)
			continue
		}

		parsed, err := redis.ParseURL(part)
		if err != nil {
			return nil, err
		}
		opts.Addrs = append(opts.Addrs, parsed.Addr)
		if opts.Username == "" {
			opts.Username = parsed.Username
		}
		if opts.Password == "" {
			opts.Password = parsed.Password
		}
		if opts.DB == 0 {
			opts.DB = parsed.DB
		}
		if opts.TLSConfig == nil {
			opts.TLSConfig = parsed.TLSConfig
		}
	}

	if len(opts.Addrs) == 0 {
		return nil, fmt.Errorf("no redis address in %q", raw)
	}
	return opts, nil
}
