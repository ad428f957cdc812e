package leaderboard

import (
	"context"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/riskibarqy/poule-scoring/internal/domain/scoringevent"
	"github.com/riskibarqy/poule-scoring/internal/platform/logging"
)

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisClient dials and pings Redis.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, crerr.Wrapf(err, "ping redis addr=%s", cfg.Addr)
	}
	return client, nil
}

// RedisMirror keeps a sorted-set copy of each pool's standings for fast
// leaderboard reads. Postgres stays the source of truth.
type RedisMirror struct {
	client redis.Cmdable
	keys   keyBuilder
	logger *logging.Logger
}

func NewRedisMirror(client redis.Cmdable, keyPrefix string, logger *logging.Logger) *RedisMirror {
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisMirror{
		client: client,
		keys:   newKeyBuilder(keyPrefix),
		logger: logger.Named("redis_leaderboard"),
	}
}

// PublishStandings replaces the pool's sorted set and meta hash atomically.
func (m *RedisMirror) PublishStandings(ctx context.Context, event scoringevent.StandingsUpdated) error {
	boardKey := m.keys.standings(event.PoolID)
	ranksKey := m.keys.ranks(event.PoolID)
	metaKey := m.keys.meta(event.PoolID)
	members, ranks := standingsToMembers(event.Standings)

	_, err := m.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, boardKey, ranksKey)
		if len(members) > 0 {
			pipe.ZAdd(ctx, boardKey, members...)
			pipe.HSet(ctx, ranksKey, ranks...)
		}
		pipe.HSet(ctx, metaKey,
			"run_id", event.RunID,
			"calculated_at", event.CalculatedAt.UTC().Format(time.RFC3339Nano),
			"members", len(members),
		)
		return nil
	})
	if err != nil {
		return crerr.Wrapf(err, "mirror standings pool=%s", event.PoolID)
	}

	m.logger.DebugContext(ctx, "standings mirrored", "pool_id", event.PoolID, "members", len(members), "run_id", event.RunID)
	return nil
}

// PublishPassCompleted stores the latest summary per pass.
func (m *RedisMirror) PublishPassCompleted(ctx context.Context, event scoringevent.PassCompleted) error {
	body, err := sonic.Marshal(event)
	if err != nil {
		return crerr.Wrap(err, "marshal pass summary")
	}
	if err := m.client.HSet(ctx, m.keys.lastRuns(), event.Pass, string(body)).Err(); err != nil {
		return crerr.Wrapf(err, "store pass summary pass=%s", event.Pass)
	}
	return nil
}

func standingsToMembers(rows []scoringevent.StandingRow) ([]redis.Z, []any) {
	members := make([]redis.Z, 0, len(rows))
	ranks := make([]any, 0, len(rows)*2)
	for _, row := range rows {
		members = append(members, redis.Z{Score: float64(row.Points), Member: row.UserID})
		ranks = append(ranks, row.UserID, row.Rank)
	}
	return members, ranks
}

type keyBuilder struct {
	prefix string
}

func newKeyBuilder(prefix string) keyBuilder {
	prefix = strings.Trim(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "poule"
	}
	return keyBuilder{prefix: prefix}
}

func (k keyBuilder) standings(poolID string) string {
	return k.prefix + ":{" + poolID + "}:standings"
}

func (k keyBuilder) ranks(poolID string) string {
	return k.prefix + ":{" + poolID + "}:ranks"
}

func (k keyBuilder) meta(poolID string) string {
	return k.prefix + ":{" + poolID + "}:meta"
}

func (k keyBuilder) lastRuns() string {
	return k.prefix + ":runs:last"
}
