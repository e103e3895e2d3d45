package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/DallanL/nms-like-n-subscribe/pkg/types"
)

// RenewalLog records mutations of subscription rows.
// Use case: troubleshooting and manual reconciliation of orphaned remote
// subscriptions.
type RenewalLog struct {
	ID             string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	SubscriptionID string `gorm:"column:subscription_id;type:varchar(255);index;not null"`
	Domain         string `gorm:"column:domain;type:varchar(255);not null"`
	// Reason is the mutation kind (create, renew, delete).
	Reason types.RenewalReason `gorm:"column:reason;type:varchar(64);not null"`
	// Before stores the row before the mutation in JSON format.
	Before datatypes.JSONType[*Subscription] `gorm:"column:before;type:jsonb;default:'null'"`
	// After stores the row after the mutation in JSON format.
	After datatypes.JSONType[*Subscription] `gorm:"column:after;type:jsonb;default:'null'"`
	// Extra stores additional context such as the triggering cycle.
	Extra     datatypes.JSONMap `gorm:"column:extra;type:jsonb;default:'{}'"`
	CreatedAt time.Time
}

func (RenewalLog) TableName() string {
	return "renewal_log"
}
