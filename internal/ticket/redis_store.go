package ticket

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	apperrors "go-live-auction/pkg/app_errors"

	"github.com/redis/go-redis/v9"
)

// consumedRetention 票券被兌換或過期後 key 再保留的時間
// 保留一段時間才能把「重複兌換」和「根本不存在的票」區分開
const consumedRetention = 5 * time.Minute

// redeemLua 原子性地檢查過期與 consumed 旗標並設定 consumed
// 回傳 {code, identity}：1 成功、-1 不存在、-2 過期、-3 已兌換
const redeemLua = `
local key = KEYS[1]
local now = tonumber(ARGV[1])

local fields = redis.call('HMGET', key, 'identity', 'expires_at', 'consumed')
local identity = fields[1]
local expires_at = fields[2]
local consumed = fields[3]

if not identity then
	return {-1, ''}
end

if consumed == '1' then
	return {-3, ''}
end

if now >= tonumber(expires_at) then
	return {-2, ''}
end

redis.call('HSET', key, 'consumed', '1')
return {1, identity}
`

type RedisStoreImpl struct {
	client   *redis.Client
	redeemSc *redis.Script
}

func NewRedisStore(client *redis.Client) *RedisStoreImpl {
	return &RedisStoreImpl{
		client:   client,
		redeemSc: redis.NewScript(redeemLua),
	}
}

func (s *RedisStoreImpl) getKey(token string) string {
	return fmt.Sprintf("wsticket:%s", token)
}

func (s *RedisStoreImpl) Issue(ctx context.Context, identity string, ttl time.Duration) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}

	key := s.getKey(token)
	expiresAt := time.Now().Add(ttl).UnixNano()

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"identity":   identity,
		"expires_at": strconv.FormatInt(expiresAt, 10),
		"consumed":   "0",
	})
	// key 本身活得比票券久，到期交給 Redis 自己回收
	pipe.Expire(ctx, key, ttl+consumedRetention)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}

	return token, nil
}

func (s *RedisStoreImpl) Redeem(ctx context.Context, token string) (string, error) {
	result, err := s.redeemSc.Run(ctx, s.client, []string{s.getKey(token)}, time.Now().UnixNano()).Result()
	if err != nil {
		return "", err
	}

	resSlice, ok := result.([]interface{})
	if !ok || len(resSlice) != 2 {
		return "", errors.New("unexpected result")
	}
	code := resSlice[0].(int64)

	switch code {
	case 1:
		identity, _ := resSlice[1].(string)
		return identity, nil
	case -1:
		return "", apperrors.ErrTicketInvalid
	case -2:
		return "", apperrors.ErrTicketExpired
	case -3:
		return "", apperrors.ErrTicketConsumed
	default:
		return "", errors.New("unexpected result")
	}
}

// Compile-time interface checks.
var (
	_ Store = (*RedisStoreImpl)(nil)
	_ Store = (*MemoryStoreImpl)(nil)
)
