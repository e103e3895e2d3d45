package nms

import "go.uber.org/fx"

// Module exposes the NMS API client via Fx.
var Module = fx.Options(
	fx.Provide(NewClient),
)
