package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/redis/go-redis/v9"
)

const (
	globalLeaderboardKey = "leaderboard:global"
	leaderboardGenKey    = "leaderboard:global:gen"
	noGeneration         = int64(-1)
)

// LeaderboardCache: cache-aside для глобального лидерборда.
// Get всегда возвращает текущее поколение; Set записывает доску под тем поколением,
// которое было прочитано до запроса к БД. Invalidate увеличивает поколение, так что
// запись, начатая до инвалидации, уже никогда не будет прочитана.
type LeaderboardCache interface {
	Get(ctx context.Context) (entries []models.LeaderboardEntry, generation int64, ok bool)
	Set(ctx context.Context, generation int64, entries []models.LeaderboardEntry)
	Invalidate(ctx context.Context) error
}

func leaderboardKey(generation int64) string {
	return fmt.Sprintf("%s:v%d", globalLeaderboardKey, generation)
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
}

// NewRedisClient подключается к Redis и пингует его. При ошибке возвращает nil:
// вызывающий код работает без кэша.
func NewRedisClient(ctx context.Context, opts RedisOptions, logger *slog.Logger) *redis.Client {
	var tlsConf *tls.Config
	if opts.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      opts.Addr,
		Password:  opts.Password,
		DB:        opts.DB,
		TLSConfig: tlsConf,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, leaderboard cache disabled", slog.String("addr", opts.Addr), slog.Any("error", err))
		_ = client.Close()
		return nil
	}
	return client
}

type redisLeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisLeaderboardCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) LeaderboardCache {
	return &redisLeaderboardCache{client: client, ttl: ttl, logger: logger}
}

func (c *redisLeaderboardCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, leaderboardGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *redisLeaderboardCache) Get(ctx context.Context) ([]models.LeaderboardEntry, int64, bool) {
	gen, err := c.generation(ctx)
	if err != nil {
		c.logger.Warn("leaderboard cache generation read failed", slog.Any("error", err))
		return nil, noGeneration, false
	}

	raw, err := c.client.Get(ctx, leaderboardKey(gen)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("leaderboard cache read failed", slog.Any("error", err))
		}
		return nil, gen, false
	}
	var entries []models.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		c.logger.Warn("leaderboard cache entry corrupted", slog.Any("error", err))
		return nil, gen, false
	}
	return entries, gen, true
}

func (c *redisLeaderboardCache) Set(ctx context.Context, generation int64, entries []models.LeaderboardEntry) {
	if generation < 0 {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, leaderboardKey(generation), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("leaderboard cache write failed", slog.Any("error", err))
	}
}

// Invalidate не удаляет доску, а сдвигает поколение; старые ключи истекают по TTL.
func (c *redisLeaderboardCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, leaderboardGenKey).Err(); err != nil {
		return fmt.Errorf("invalidate leaderboard cache: %w", err)
	}
	return nil
}

// Noop используется, когда Redis не настроен.
type Noop struct{}

func (Noop) Get(context.Context) ([]models.LeaderboardEntry, int64, bool) { return nil, noGeneration, false }
func (Noop) Set(context.Context, int64, []models.LeaderboardEntry)        {}
func (Noop) Invalidate(context.Context) error                             { return nil }

// Invalidator сбрасывает кэш лидерборда, когда применяется результат матча.
type Invalidator struct {
	Cache LeaderboardCache
}

func (i Invalidator) Deliver(ctx context.Context, event events.Event) error {
	if event.Type != events.MatchResultApplied {
		return nil
	}
	return i.Cache.Invalidate(ctx)
}
