package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/kitchen-planner/internal/config"
	"github.com/andresuchdata/kitchen-planner/internal/domain"
	"github.com/andresuchdata/kitchen-planner/internal/planner"
	"github.com/redis/go-redis/v9"
)

const (
	planKeyPrefix     = "plan"
	planScanBatchSize = 100
)

// PlanCache stores rendered plans. Evaluation is a pure function of its inputs, so a
// key built from every input identifies a result exactly.
type PlanCache interface {
	Get(ctx context.Context, key string) (*domain.PlanResponse, bool, error)
	Set(ctx context.Context, key string, plan *domain.PlanResponse) error
	InvalidateAll(ctx context.Context) error
}

type redisPlanCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopPlanCache struct{}

func NewPlanCache(cfg config.CacheConfig) (PlanCache, error) {
	if !cfg.Enabled {
		return &noopPlanCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisPlanCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopPlanCache() PlanCache {
	return &noopPlanCache{}
}

func (c *redisPlanCache) Get(ctx context.Context, key string) (*domain.PlanResponse, bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var plan domain.PlanResponse
	if err := json.Unmarshal(payload, &plan); err != nil {
		return nil, false, fmt.Errorf("decode plan cache: %w", err)
	}

	return &plan, true, nil
}

func (c *redisPlanCache) Set(ctx context.Context, key string, plan *domain.PlanResponse) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode plan cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisPlanCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, planKeyPrefix+":", planScanBatchSize)
}

func (n *noopPlanCache) Get(ctx context.Context, key string) (*domain.PlanResponse, bool, error) {
	return nil, false, nil
}

func (n *noopPlanCache) Set(ctx context.Context, key string, plan *domain.PlanResponse) error {
	return nil
}

func (n *noopPlanCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// PlanKey builds the cache key for an evaluation from the BOM, the effective
// configuration, the sales record and the ingredient states.
func PlanKey(bom []planner.BOMEntry, cfg planner.Configuration, sales planner.SalesRecord, states map[string]planner.IngredientState) string {
	parts := []string{
		"bom=" + bomFingerprint(bom),
		"cfg=" + strings.Join([]string{
			formatFloat(cfg.SafetyFactorNormal),
			formatFloat(cfg.SafetyFactorWeekend),
			formatFloat(cfg.MinStockDays),
			formatFloat(cfg.MaxStockDays),
			formatFloat(cfg.WasteLimitRatio),
		}, ","),
		"date=" + sales.Date.Format(domain.DateLayout),
		"qty=" + strconv.Itoa(sales.QuantitySold),
		"day=" + sales.DayType.String(),
	}

	names := make([]string, 0, len(states))
	for name := range states {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		st := states[name]
		parts = append(parts, fmt.Sprintf("state[%q]=%s,%s", name, formatFloat(st.CurrentStock), formatFloat(st.Waste)))
	}

	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%s:%s", planKeyPrefix, hex.EncodeToString(sum[:]))
}

// bomFingerprint keeps entry order, since output order follows the BOM.
func bomFingerprint(bom []planner.BOMEntry) string {
	entries := make([]string, len(bom))
	for i, e := range bom {
		entries[i] = fmt.Sprintf("%q:%s", e.Ingredient, formatFloat(e.UsagePerItem))
	}
	return strings.Join(entries, ",")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
