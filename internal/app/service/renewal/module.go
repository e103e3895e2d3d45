package renewal

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/DallanL/nms-like-n-subscribe/internal/platform/nms"
	"github.com/DallanL/nms-like-n-subscribe/internal/store"
	cfgpkg "github.com/DallanL/nms-like-n-subscribe/pkg/config"
	"github.com/DallanL/nms-like-n-subscribe/pkg/metrics"
)

// Module exposes the renewal engine and its background runner via Fx.
var Module = fx.Options(
	fx.Provide(func(log *zap.SugaredLogger) *metrics.RenewalMetrics {
		return metrics.NewRenewalMetrics(log)
	}),
	fx.Provide(func(cfg *cfgpkg.Config, subs *store.Subscriptions, client *nms.Client, log *zap.SugaredLogger, m *metrics.RenewalMetrics) *Engine {
		return NewEngine(cfg, subs, client, log, m)
	}),
	fx.Provide(NewRunner),
	fx.Invoke(registerRunner),
)
