package subscription

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/DallanL/nms-like-n-subscribe/internal/platform/nms"
	"github.com/DallanL/nms-like-n-subscribe/internal/store"
)

// Module exposes the subscription service via Fx.
var Module = fx.Options(
	fx.Provide(func(log *zap.SugaredLogger, subs *store.Subscriptions, client *nms.Client) *Service {
		return NewService(log, subs, client)
	}),
)
