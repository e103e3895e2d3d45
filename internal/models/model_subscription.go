package models

import (
	"time"

	"github.com/DallanL/nms-like-n-subscribe/pkg/timefmt"
)

// Subscription is the durable record of a remote event subscription.
// SubscriptionID is assigned by the NMS platform at creation time and is the
// primary lookup key thereafter. A row never exists without a confirmed remote
// subscription.
//
// Expires and LastUpdated are stored as formatted strings (timefmt.Layout,
// UTC) because that is the representation the platform exchanges; Expires is
// the single source of truth for renewal scheduling.
type Subscription struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	// LastUpdated is the time of the last local mutation.
	LastUpdated string `gorm:"column:last_updated;type:varchar(30)" json:"last_updated"`
	// Domain groups subscriptions created from the same authenticated session;
	// all rows in a domain share one refresh token.
	Domain string `gorm:"column:domain;type:varchar(255);not null;index" json:"domain"`
	// Model is the subscription's event-type/category.
	Model   string `gorm:"column:model;type:varchar(255);not null" json:"model"`
	Expires string `gorm:"column:expires;type:varchar(255);not null;index" json:"expires"`
	// SubscriptionID is the platform-assigned identifier, unique across the store.
	SubscriptionID string `gorm:"column:subscription_id;type:varchar(255);not null;uniqueIndex" json:"subscription_id"`
	// PostURL is the callback target, immutable after creation.
	PostURL string `gorm:"column:post_url;type:varchar(255);not null" json:"post_url"`
	User    string `gorm:"column:user;type:varchar(255);not null" json:"user"`
	// OauthToken and RefreshToken are the current credential pair; they are
	// only ever written together with Expires.
	OauthToken   string `gorm:"column:oauth_token;type:varchar(2047);not null" json:"-"`
	RefreshToken string `gorm:"column:refresh_token;type:varchar(2047);not null" json:"-"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// ExpiresAt parses the stored expiry. Rows are written with well-formed
// timestamps, so an error here indicates corruption.
func (s *Subscription) ExpiresAt() (time.Time, error) {
	return timefmt.Parse(s.Expires)
}
