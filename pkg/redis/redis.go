package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shiftgrid/config"
)

// Client Redis 客户端封装
// 用于手动选择存储、生成接口限流与 Token 黑名单
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// NewFromClient 包装已有的 go-redis 客户端（测试使用）
func NewFromClient(rdb *goredis.Client, logger *zap.Logger) *Client {
	return &Client{rdb: rdb, logger: logger}
}

// ── 手动选择（Hash） ──

const selectionPrefix = "roster:selections:"

// SelectionKey 会话 + 生成轮次对应的 Hash 键
func SelectionKey(sessionID, generationID string) string {
	return selectionPrefix + sessionID + ":" + generationID
}

// SessionSelectionPrefix 会话下所有生成轮次的键前缀
func SessionSelectionPrefix(sessionID string) string {
	return selectionPrefix + sessionID + ":"
}

// LoadHash 读取整个 Hash；键不存在时返回空 map
func (c *Client) LoadHash(ctx context.Context, key string) (map[string]string, error) {
	fields, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("读取 %s 失败: %w", key, err)
	}
	return fields, nil
}

// ReplaceHash 原子替换整个 Hash 并刷新 TTL
func (c *Client) ReplaceHash(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(fields) > 0 {
			values := make([]interface{}, 0, len(fields)*2)
			for k, v := range fields {
				values = append(values, k, v)
			}
			pipe.HSet(ctx, key, values...)
			if ttl > 0 {
				pipe.Expire(ctx, key, ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("写入 %s 失败: %w", key, err)
	}
	return nil
}

// DeleteKeys 删除匹配前缀的所有键（新会话登记时清理旧选择）
func (c *Client) DeleteKeys(ctx context.Context, prefix string) error {
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("扫描 %s 失败: %w", prefix, err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// ── 限流（滑动窗口） ──

// CheckRateLimit 基于有序集合的滑动窗口计数
// 返回 true 表示本次请求允许通过
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window).UnixNano()
	member := strconv.FormatInt(now.UnixNano(), 10)

	var card *goredis.IntCmd
	_, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
		pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixNano()), Member: member})
		card = pipe.ZCard(ctx, key)
		pipe.Expire(ctx, key, window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return card.Val() <= int64(limit), nil
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
