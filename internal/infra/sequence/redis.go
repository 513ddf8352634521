package sequence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "seq:"

// RedisAllocator はINCRで採番する。INCRは原子的なので複数プロセスでも重複しない。
// Txがrollbackされても番号は戻らない（欠番になる）。
type RedisAllocator struct {
	client redis.UniversalClient
}

func NewRedisAllocator(client redis.UniversalClient) *RedisAllocator {
	return &RedisAllocator{client: client}
}

func (a *RedisAllocator) Next(ctx context.Context, name string) (int64, error) {
	n, err := a.client.Incr(ctx, keyPrefix+name).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", name, err)
	}
	return n, nil
}

// 今の値より大きいときだけ上書きする
var raiseScript = redis.NewScript(`
local cur = tonumber(redis.call("GET", KEYS[1]) or "0")
local floor = tonumber(ARGV[1])
if floor > cur then
  redis.call("SET", KEYS[1], ARGV[1])
  return floor
end
return cur
`)

// Seed はseq:<name>を少なくともfloors[name]まで進める。下げることはない。
// DB採番から切り替えたとき、払い出し済みの番号をもう一度出さないために起動時に呼ぶ。
func (a *RedisAllocator) Seed(ctx context.Context, floors map[string]int64) error {
	for name, n := range floors {
		if err := raiseScript.Run(ctx, a.client, []string{keyPrefix + name}, n).Err(); err != nil {
			return fmt.Errorf("redis seed %s: %w", name, err)
		}
	}
	return nil
}

// Ping は起動時の疎通確認
func (a *RedisAllocator) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}
