package manifest

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keeps the manifest in a single hash so collisions are also detected
// across runs that share an output directory. The hash expires ttl after
// the last claim.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// claimScript returns the field's previous value when it names a different
// source, or "" otherwise. ARGV[3] is the hash TTL in milliseconds; zero
// leaves the expiry untouched.
var claimScript = redis.NewScript(`
local prev = redis.call("HGET", KEYS[1], ARGV[1])
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
local ttl = tonumber(ARGV[3])
if ttl > 0 then
	redis.call("PEXPIRE", KEYS[1], ttl)
end
if prev and prev ~= ARGV[2] then
	return prev
end
return ""
`)

// NewRedis connects and pings the server.
func NewRedis(addr, password, key string, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Redis{client: client, key: key, ttl: ttl}, nil
}

// Claim records source as the owner of name and returns the previous
// owner when it differs. The read, write and expiry run as one script so
// concurrent runs cannot both miss a collision.
func (r *Redis) Claim(ctx context.Context, name, source string) (string, error) {
	prev, err := claimScript.Run(ctx, r.client, []string{r.key}, name, source, r.ttl.Milliseconds()).Text()
	if err != nil {
		return "", fmt.Errorf("claim %q: %w", name, err)
	}
	return prev, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
