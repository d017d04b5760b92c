package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	playersKey = "wl:players"
	adminsKey  = "wl:admins"
)

// RedisStore keeps the player map as a Redis hash and the admin set as a
// Redis list. Unlike the file backend, SetPlayer and RemovePlayer mutate a
// single hash field, so concurrent writers cannot lose each other's updates.
type RedisStore struct {
	rdb *redis.Client
	ctx context.Context
}

// NewRedisStore connects to Redis and seeds the admin list with the main
// admin if it is empty.
func NewRedisStore(addr, mainAdmin string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx := context.Background()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect Redis at %s: %w", addr, err)
	}

	s := &RedisStore{rdb: rdb, ctx: ctx}
	n, err := rdb.LLen(ctx, adminsKey).Result()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if err := rdb.RPush(ctx, adminsKey, mainAdmin).Err(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *RedisStore) Players() (map[string]int64, error) {
	raw, err := s.rdb.HGetAll(s.ctx, playersKey).Result()
	if err != nil {
		return nil, err
	}
	players := make(map[string]int64, len(raw))
	for nick, idStr := range raw {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt player entry %q=%q: %w", nick, idStr, err)
		}
		players[nick] = id
	}
	return players, nil
}

func (s *RedisStore) SetPlayer(nick string, telegramID int64) error {
	return s.rdb.HSet(s.ctx, playersKey, nick, telegramID).Err()
}

func (s *RedisStore) RemovePlayer(nick string) error {
	return s.rdb.HDel(s.ctx, playersKey, nick).Err()
}

func (s *RedisStore) Admins() ([]string, error) {
	return s.rdb.LRange(s.ctx, adminsKey, 0, -1).Result()
}

func (s *RedisStore) SaveAdmins(admins []string) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(s.ctx, adminsKey)
	for _, a := range admins {
		pipe.RPush(s.ctx, adminsKey, a)
	}
	_, err := pipe.Exec(s.ctx)
	return err
}
