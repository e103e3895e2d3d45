package app

import (
	"time"

	"github.com/DallanL/nms-like-n-subscribe/internal/app/api/server"
	"github.com/DallanL/nms-like-n-subscribe/internal/app/service/renewal"
	"github.com/DallanL/nms-like-n-subscribe/internal/app/service/subscription"
	"github.com/DallanL/nms-like-n-subscribe/internal/platform/db"
	"github.com/DallanL/nms-like-n-subscribe/internal/platform/nms"
	"github.com/DallanL/nms-like-n-subscribe/internal/store"
	"github.com/DallanL/nms-like-n-subscribe/pkg/config"
	"github.com/DallanL/nms-like-n-subscribe/pkg/logger"

	"go.uber.org/fx"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	store.Module,
	nms.Module,
	server.Module,
	subscription.Module,
	renewal.Module,
)
