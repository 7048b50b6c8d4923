// file: service/cache.go

package service

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// ICacheClient is the subset of the Redis API the login limiter needs.
// *redis.Client and *redis.ClusterClient both satisfy it.
type ICacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
}
