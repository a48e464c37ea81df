package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/HadiHz88/medical-records-api/pkg/config"
	"github.com/go-redis/redis/v8"
)

var (
	// Client 全局 Redis 客户端（nil表示Redis未启用）
	Client *redis.Client

	// isRedisEnabled 标记Redis是否已启用且连接正常
	isRedisEnabled bool

	// cacheTTL 缓存默认过期时间
	cacheTTL time.Duration
)

// Init 初始化 Redis 连接
// 如果Redis未启用或连接失败，会优雅降级，不影响主服务启动
func Init(cfg *config.RedisConfig) error {
	if !cfg.Enabled {
		log.Println("[Redis] Redis is disabled in config - cache bypassed")
		isRedisEnabled = false
		return nil
	}

	// 设置默认值
	cfg.SetDefaults()
	cacheTTL = time.Duration(cfg.CacheTTL) * time.Second

	// 创建Redis客户端
	Client = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  time.Duration(cfg.ConnectTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	// 测试连接（带超时）
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ConnectTimeout)*time.Second)
	defer cancel()

	if err := Client.Ping(ctx).Err(); err != nil {
		// Redis连接失败，关闭客户端并降级
		Client.Close()
		Client = nil
		isRedisEnabled = false
		return fmt.Errorf("failed to connect to Redis at %s:%d: %w (cache bypassed)", cfg.Host, cfg.Port, err)
	}

	isRedisEnabled = true
	log.Printf("[Redis] Connected to Redis at %s:%d (DB: %d, PoolSize: %d)",
		cfg.Host, cfg.Port, cfg.DB, cfg.PoolSize)
	return nil
}

// Close 关闭 Redis 连接
func Close() error {
	if Client != nil {
		err := Client.Close()
		Client = nil
		isRedisEnabled = false
		return err
	}
	return nil
}

// IsEnabled 检查 Redis 是否已启用且连接正常
func IsEnabled() bool {
	return Client != nil && isRedisEnabled
}

// GetJSON 读取缓存并反序列化到 dest
// 返回 false 表示未命中（包括Redis未启用的情况）
func GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if !IsEnabled() {
		return false
	}

	data, err := Client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// 缓存内容损坏，删除后当作未命中
		Client.Del(ctx, key)
		return false
	}
	return true
}

// SetJSON 序列化并写入缓存（使用默认TTL）
// Redis未启用或序列化失败时静默跳过，缓存永远不阻塞主流程
func SetJSON(ctx context.Context, key string, value interface{}) {
	if !IsEnabled() {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	Client.Set(ctx, key, data, cacheTTL)
}

// Del 删除缓存键（用于写操作后失效）
func Del(ctx context.Context, keys ...string) {
	if !IsEnabled() || len(keys) == 0 {
		return
	}
	Client.Del(ctx, keys...)
}
