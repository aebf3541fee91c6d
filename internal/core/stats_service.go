package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"healthpanel-backend-go/internal/billing"
	"healthpanel-backend-go/internal/db"
	"healthpanel-backend-go/internal/models"
	"healthpanel-backend-go/pkg/cache"
)

const (
	statsCacheKey = "stats:subscriptions:last-known-good"
	statsCacheTTL = 24 * time.Hour
)

// SubscriptionStats is the dashboard aggregate. Source is "live" when the
// billing provider answered, "store-only" when it did not, and "cached" when
// a previous live result was served instead.
type SubscriptionStats struct {
	TotalAccounts   int            `json:"totalAccounts"`
	LinkedAccounts  int            `json:"linkedAccounts"`
	ByStatus        map[string]int `json:"byStatus"`
	LiveActiveCount int            `json:"liveActiveCount"`
	Source          string         `json:"source"`
	GeneratedAt     time.Time      `json:"generatedAt"`
}

// statsService implements the StatsService interface.
type statsService struct {
	userRepo db.UserRepository
	client   billing.Client
	cache    cache.Cache // nil disables the last-known-good fallback
	logger   *zap.Logger
}

// NewStatsService creates a new StatsService instance.
func NewStatsService(userRepo db.UserRepository, client billing.Client, c cache.Cache, logger *zap.Logger) StatsService {
	return &statsService{
		userRepo: userRepo,
		client:   client,
		cache:    c,
		logger:   logger,
	}
}

// SubscriptionStats counts accounts by persisted subscription status and
// augments them with a live active count from the billing provider. A billing
// failure degrades the response instead of failing it: the cached live count
// is served when available, store-only counts otherwise.
func (s *statsService) SubscriptionStats(ctx context.Context) (*SubscriptionStats, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for stats: %w", err)
	}

	stats := &SubscriptionStats{
		TotalAccounts: len(users),
		ByStatus:      make(map[string]int),
		GeneratedAt:   time.Now().UTC(),
	}
	var linkedCustomers []string
	for _, user := range users {
		if user.Subscription == nil {
			continue
		}
		stats.ByStatus[user.Subscription.Status]++
		if user.Subscription.StripeCustomerID != "" {
			stats.LinkedAccounts++
			// Every linked customer is polled, not just the ones the store
			// already believes active: the live count must catch records the
			// sync routine has not caught up with yet.
			linkedCustomers = append(linkedCustomers, user.Subscription.StripeCustomerID)
		}
	}

	live, err := s.liveActiveCount(ctx, linkedCustomers)
	if err != nil {
		s.logger.Warn("Billing unavailable for stats, degrading", zap.Error(err))
		if cached, ok := s.loadCached(ctx); ok {
			cached.TotalAccounts = stats.TotalAccounts
			cached.LinkedAccounts = stats.LinkedAccounts
			cached.ByStatus = stats.ByStatus
			cached.Source = "cached"
			cached.GeneratedAt = stats.GeneratedAt
			return cached, nil
		}
		stats.Source = "store-only"
		return stats, nil
	}

	stats.LiveActiveCount = live
	stats.Source = "live"
	s.storeCached(ctx, stats)
	return stats, nil
}

// liveActiveCount counts linked customers with at least one active
// subscription upstream, independent of the persisted status. The
// per-customer calls run sequentially; the first upstream failure aborts the
// whole live pass and triggers degradation.
func (s *statsService) liveActiveCount(ctx context.Context, customerIDs []string) (int, error) {
	count := 0
	for _, customerID := range customerIDs {
		subs, err := s.client.ListSubscriptions(ctx, customerID, models.SubStatusActive)
		if err != nil {
			return 0, err
		}
		if len(subs) > 0 {
			count++
		}
	}
	return count, nil
}

func (s *statsService) loadCached(ctx context.Context) (*SubscriptionStats, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, statsCacheKey)
	if err != nil || raw == "" {
		return nil, false
	}
	var stats SubscriptionStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

func (s *statsService) storeCached(ctx context.Context, stats *SubscriptionStats) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, statsCacheKey, string(raw), statsCacheTTL); err != nil {
		s.logger.Warn("Failed to cache subscription stats", zap.Error(err))
	}
}
