package types

// SubscriptionModel is the event-type/category a subscription delivers.
// The set of values is defined by the NMS platform.
type SubscriptionModel string

const (
	SubscriptionModelCall       SubscriptionModel = "call"
	SubscriptionModelCallOrigID SubscriptionModel = "call_origid"
	SubscriptionModelSubscriber SubscriptionModel = "subscriber"
	SubscriptionModelPresence   SubscriptionModel = "presence"
	SubscriptionModelAuditLog   SubscriptionModel = "auditlog"
	SubscriptionModelMessage    SubscriptionModel = "message"
	SubscriptionModelAgent      SubscriptionModel = "agent"
)

var subscriptionModels = []SubscriptionModel{
	SubscriptionModelCall,
	SubscriptionModelCallOrigID,
	SubscriptionModelSubscriber,
	SubscriptionModelPresence,
	SubscriptionModelAuditLog,
	SubscriptionModelMessage,
	SubscriptionModelAgent,
}

// DefaultSubscriptionModel is used when a caller does not specify a model.
const DefaultSubscriptionModel = SubscriptionModelPresence

func (m SubscriptionModel) Valid() bool {
	for _, known := range subscriptionModels {
		if m == known {
			return true
		}
	}
	return false
}

// SubscriptionModels lists the values the platform accepts, in display order.
func SubscriptionModels() []SubscriptionModel {
	out := make([]SubscriptionModel, len(subscriptionModels))
	copy(out, subscriptionModels)
	return out
}

// RenewalReason categorizes renewal-log entries.
type RenewalReason string

const (
	RenewalReasonCreate RenewalReason = "create"
	RenewalReasonRenew  RenewalReason = "renew"
	RenewalReasonDelete RenewalReason = "delete"
)
