package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/DallanL/nms-like-n-subscribe/internal/models"
	"github.com/DallanL/nms-like-n-subscribe/pkg/logctx"
	"github.com/DallanL/nms-like-n-subscribe/pkg/tool"
	"github.com/DallanL/nms-like-n-subscribe/pkg/types"
)

var (
	// ErrPersistence wraps storage failures; remote side effects already
	// applied when it surfaces are not rolled back.
	ErrPersistence = errors.New("store: persistence failed")
	ErrNotFound    = errors.New("store: subscription not found")
)

// Subscriptions is the durable table of subscription records, keyed by the
// platform-assigned subscription id.
type Subscriptions struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewSubscriptions(db *gorm.DB, log *zap.SugaredLogger) *Subscriptions {
	return &Subscriptions{db: db, log: log}
}

// FindExpiringBefore returns all rows whose expires is at or before threshold
// (storage layout). The fixed-width layout makes lexicographic comparison
// equivalent to chronological comparison.
func (s *Subscriptions) FindExpiringBefore(ctx context.Context, threshold string) ([]*models.Subscription, error) {
	var rows []*models.Subscription
	if err := s.db.WithContext(ctx).Where("expires <= ?", threshold).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: find expiring: %v", ErrPersistence, err)
	}
	return rows, nil
}

func (s *Subscriptions) FindByDomain(ctx context.Context, domain string) ([]*models.Subscription, error) {
	var rows []*models.Subscription
	if err := s.db.WithContext(ctx).Where("domain = ?", domain).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: find by domain: %v", ErrPersistence, err)
	}
	return rows, nil
}

func (s *Subscriptions) FindBySubscriptionID(ctx context.Context, subscriptionID string) (*models.Subscription, error) {
	var row models.Subscription
	err := s.db.WithContext(ctx).Where("subscription_id = ?", subscriptionID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, subscriptionID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find by subscription id: %v", ErrPersistence, err)
	}
	return &row, nil
}

// Upsert writes sub keyed on its subscription id, preserving the local row id
// and creation time when a row already exists.
func (s *Subscriptions) Upsert(ctx context.Context, sub *models.Subscription) error {
	var original models.Subscription
	err := s.db.WithContext(ctx).Where("subscription_id = ?", sub.SubscriptionID).First(&original).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: load original: %v", ErrPersistence, err)
	}

	var before *models.Subscription
	if original.ID != 0 {
		cp := original
		before = &cp
		sub.ID = original.ID
		sub.CreatedAt = original.CreatedAt
	}

	if err := s.db.WithContext(ctx).Save(sub).Error; err != nil {
		return fmt.Errorf("%w: upsert: %v", ErrPersistence, err)
	}

	s.appendLog(ctx, types.RenewalReasonCreate, sub.SubscriptionID, sub.Domain, before, sub)
	return nil
}

// UpdateRenewal persists a renewal's token pair and expiry for one row in a
// single statement, so a partially-applied credential update is never
// observable.
func (s *Subscriptions) UpdateRenewal(ctx context.Context, subscriptionID, expires, oauthToken, refreshToken, lastUpdated string) error {
	before, err := s.FindBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("subscription_id = ?", subscriptionID).
		Updates(map[string]interface{}{
			"expires":       expires,
			"oauth_token":   oauthToken,
			"refresh_token": refreshToken,
			"last_updated":  lastUpdated,
		})
	if res.Error != nil {
		return fmt.Errorf("%w: update renewal: %v", ErrPersistence, res.Error)
	}

	after := *before
	after.Expires = expires
	after.OauthToken = oauthToken
	after.RefreshToken = refreshToken
	after.LastUpdated = lastUpdated
	s.appendLog(ctx, types.RenewalReasonRenew, subscriptionID, before.Domain, before, &after)
	return nil
}

// Delete removes a row. Administrative path only; the renewal cycle never
// deletes.
func (s *Subscriptions) Delete(ctx context.Context, subscriptionID string) error {
	before, err := s.FindBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("subscription_id = ?", subscriptionID).Delete(&models.Subscription{}).Error; err != nil {
		return fmt.Errorf("%w: delete: %v", ErrPersistence, err)
	}
	s.appendLog(ctx, types.RenewalReasonDelete, subscriptionID, before.Domain, before, nil)
	return nil
}

// appendLog writes an audit row asynchronously; errors are logged but never
// propagated into the mutation path.
func (s *Subscriptions) appendLog(ctx context.Context, reason types.RenewalReason, subscriptionID, domain string, before, after *models.Subscription) {
	go func() {
		entry := &models.RenewalLog{
			ID:             tool.GenerateUUIDV7(),
			SubscriptionID: subscriptionID,
			Domain:         domain,
			Reason:         reason,
			Before:         datatypes.NewJSONType(before),
			After:          datatypes.NewJSONType(after),
			Extra:          datatypes.JSONMap{},
		}
		if err := s.db.Save(entry).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save renewal log: %v", err)
		}
	}()
}
