package renewal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DallanL/nms-like-n-subscribe/internal/models"
	"github.com/DallanL/nms-like-n-subscribe/internal/platform/nms"
	cfgpkg "github.com/DallanL/nms-like-n-subscribe/pkg/config"
	"github.com/DallanL/nms-like-n-subscribe/pkg/metrics"
	"github.com/DallanL/nms-like-n-subscribe/pkg/timefmt"
)

// ErrRefreshTokenMismatch fails a domain's renewal when its subscriptions
// hold divergent refresh tokens. All rows in a domain are supposed to share
// one token set; proceeding with an arbitrary one would silently bind the
// domain to the wrong credentials.
var ErrRefreshTokenMismatch = errors.New("renewal: subscriptions in domain hold divergent refresh tokens")

// SubscriptionStore is the slice of the store the engine needs.
type SubscriptionStore interface {
	FindExpiringBefore(ctx context.Context, threshold string) ([]*models.Subscription, error)
	FindByDomain(ctx context.Context, domain string) ([]*models.Subscription, error)
	UpdateRenewal(ctx context.Context, subscriptionID, expires, oauthToken, refreshToken, lastUpdated string) error
}

// Client is the slice of the NMS API the engine needs.
type Client interface {
	RefreshToken(ctx context.Context, refreshToken string) (*nms.TokenData, error)
	UpdateSubscription(ctx context.Context, subscriptionID, newExpire, token, domain string) error
}

// Engine renews expiring subscriptions: scan the store for rows inside the
// lead window, group them by domain, refresh each domain's token once, push
// the new expiry remotely, then persist the token triple locally.
type Engine struct {
	store   SubscriptionStore
	client  Client
	log     *zap.SugaredLogger
	metrics *metrics.RenewalMetrics

	leadWindow    time.Duration
	duration      time.Duration
	maxConcurrent int

	now func() time.Time

	// cycleMu serializes cycles; overlapping cycles could consume the same
	// domain's rotating refresh token twice.
	cycleMu sync.Mutex
}

func NewEngine(cfg *cfgpkg.Config, store SubscriptionStore, client Client, log *zap.SugaredLogger, m *metrics.RenewalMetrics) *Engine {
	return &Engine{
		store:         store,
		client:        client,
		log:           log,
		metrics:       m,
		leadWindow:    cfg.Renewal.LeadWindow,
		duration:      cfg.Renewal.SubscriptionDuration,
		maxConcurrent: cfg.Renewal.MaxConcurrentDomains,
		now:           time.Now,
	}
}

// Cycle runs one scan, renew and persist sequence. At most one cycle runs at a
// time: a trigger arriving while a cycle is in flight is skipped, and reports
// false. Errors are contained at domain or subscription granularity and never
// propagate out of the cycle.
func (e *Engine) Cycle(ctx context.Context) bool {
	if !e.cycleMu.TryLock() {
		e.metrics.CyclesSkipped.Inc()
		e.log.Warnw("renewal cycle still running, skipping trigger")
		return false
	}
	defer e.cycleMu.Unlock()
	e.metrics.Cycles.Inc()

	now := e.now()
	candidates, err := e.scan(ctx, now)
	if err != nil {
		e.log.Errorf("failed to scan expiring subscriptions: %v", err)
		return true
	}
	domains := lo.Uniq(lo.Map(candidates, func(s *models.Subscription, _ int) string { return s.Domain }))
	if len(domains) == 0 {
		e.log.Infow("no subscriptions need renewal")
		return true
	}
	e.log.Infow("renewing expiring subscriptions", "candidates", len(candidates), "domains", len(domains))

	g := new(errgroup.Group)
	g.SetLimit(e.maxConcurrent)
	for _, domain := range domains {
		// On shutdown, in-flight domains finish but no new domain starts.
		if ctx.Err() != nil {
			e.log.Warnw("shutdown requested, deferring remaining domains to next cycle", "remaining", domain)
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			dctx := context.WithoutCancel(ctx)
			if err := e.renewDomain(dctx, domain, now); err != nil {
				e.metrics.DomainsFailed.Inc()
				e.log.Errorw("domain renewal failed, retrying next cycle", "domain", domain, "err", err)
				return nil
			}
			e.metrics.DomainsRenewed.Inc()
			return nil
		})
	}
	_ = g.Wait()
	return true
}

// scan returns all rows expiring inside the lead window. No side effects.
func (e *Engine) scan(ctx context.Context, now time.Time) ([]*models.Subscription, error) {
	threshold := timefmt.Format(now.Add(e.leadWindow))
	candidates, err := e.store.FindExpiringBefore(ctx, threshold)
	if err != nil {
		return nil, err
	}
	e.metrics.CandidatesScanned.Add(float64(len(candidates)))
	return candidates, nil
}

// renewDomain renews every subscription in a domain with a single token
// refresh. Refresh failure means zero remote or local writes for the domain
// this cycle; a single subscription's push failure leaves that row stale
// without blocking its siblings.
func (e *Engine) renewDomain(ctx context.Context, domain string, now time.Time) error {
	subs, err := e.store.FindByDomain(ctx, domain)
	if err != nil {
		return fmt.Errorf("load subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil
	}

	refreshToken := subs[0].RefreshToken
	for _, sub := range subs[1:] {
		if sub.RefreshToken != refreshToken {
			return fmt.Errorf("%w: domain %s", ErrRefreshTokenMismatch, domain)
		}
	}

	token, err := e.client.RefreshToken(ctx, refreshToken)
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}
	e.metrics.TokenRefreshes.Inc()

	// Renewal resets the clock rather than extending the previous expiry.
	newExpire := timefmt.Format(now.Add(e.duration))

	for _, sub := range subs {
		if err := e.client.UpdateSubscription(ctx, sub.SubscriptionID, newExpire, token.AccessToken, sub.Domain); err != nil {
			e.metrics.SubsFailed.Inc()
			e.log.Errorw("remote update failed, row left stale until next cycle",
				"subscription_id", sub.SubscriptionID, "domain", domain, "err", err)
			continue
		}
		if err := e.store.UpdateRenewal(ctx, sub.SubscriptionID, newExpire, token.AccessToken, token.RefreshToken, timefmt.Format(e.now())); err != nil {
			e.metrics.SubsFailed.Inc()
			e.log.Errorw("persisting renewal failed, remote expiry already extended",
				"subscription_id", sub.SubscriptionID, "domain", domain, "err", err)
			continue
		}
		e.metrics.SubsRenewed.Inc()
		e.log.Infow("subscription renewed", "subscription_id", sub.SubscriptionID, "domain", domain, "expires", newExpire)
	}
	return nil
}
