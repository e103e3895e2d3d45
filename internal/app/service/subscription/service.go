package subscription

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DallanL/nms-like-n-subscribe/internal/models"
	"github.com/DallanL/nms-like-n-subscribe/internal/platform/nms"
	"github.com/DallanL/nms-like-n-subscribe/pkg/logctx"
	"github.com/DallanL/nms-like-n-subscribe/pkg/timefmt"
	"github.com/DallanL/nms-like-n-subscribe/pkg/types"
)

// Store is the slice of the subscription store the service needs.
type Store interface {
	Upsert(ctx context.Context, sub *models.Subscription) error
	FindBySubscriptionID(ctx context.Context, subscriptionID string) (*models.Subscription, error)
	FindByDomain(ctx context.Context, domain string) ([]*models.Subscription, error)
	UpdateRenewal(ctx context.Context, subscriptionID, expires, oauthToken, refreshToken, lastUpdated string) error
	Delete(ctx context.Context, subscriptionID string) error
}

// Client is the slice of the NMS API the service needs.
type Client interface {
	GetToken(ctx context.Context, username, password string) (*nms.TokenData, error)
	RefreshToken(ctx context.Context, refreshToken string) (*nms.TokenData, error)
	CreateSubscription(ctx context.Context, model, postURL, domain, user, token string) (*nms.SubscriptionData, error)
	DeleteSubscription(ctx context.Context, subscriptionID, domain, token string) error
}

var timeNow = time.Now

// Service orchestrates subscription creation and administrative deletion.
// Renewal of existing rows belongs to the renewal engine.
type Service struct {
	log    *zap.SugaredLogger
	store  Store
	client Client
	now    func() string
}

func NewService(log *zap.SugaredLogger, store Store, client Client) *Service {
	return &Service{
		log:    log,
		store:  store,
		client: client,
		now:    func() string { return timefmt.Format(timeNow()) },
	}
}

type CreateRequest struct {
	Domain   string `json:"domain" binding:"required" example:"1234567890.com"`
	Model    string `json:"model" binding:"required" example:"presence"`
	PostURL  string `json:"post_url" binding:"required" example:"https://example.com/callback"`
	User     string `json:"user" example:"1001"`
	Username string `json:"username" binding:"required" example:"apiuser"`
	Password string `json:"password" binding:"required" example:"strongpassword"`
}

type CreateResult struct {
	Status         string `json:"status"`
	SubscriptionID string `json:"subscription_id"`
	Expires        string `json:"expires"`
}

// ErrInvalidModel rejects creation requests with unknown event models before
// any remote call is made.
var ErrInvalidModel = fmt.Errorf("subscription: invalid model")

// Create trades user credentials for a token, registers the subscription on
// the platform, then persists the local row. A local row never exists without
// a confirmed remote subscription; if persistence fails after remote creation
// the orphan is logged for manual reconciliation, never compensated
// automatically.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*CreateResult, error) {
	log := logctx.FromCtx(ctx, s.log)
	if !types.SubscriptionModel(req.Model).Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidModel, req.Model)
	}

	log.Infow("creating subscription", "user", req.User+"@"+req.Domain, "model", req.Model)
	token, err := s.client.GetToken(ctx, req.Username, req.Password)
	if err != nil {
		return nil, fmt.Errorf("authenticate %s: %w", req.Username, err)
	}

	data, err := s.client.CreateSubscription(ctx, req.Model, req.PostURL, req.Domain, req.User, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("create remote subscription: %w", err)
	}

	row := &models.Subscription{
		SubscriptionID: data.SubscriptionID,
		Domain:         req.Domain,
		Model:          req.Model,
		PostURL:        req.PostURL,
		User:           req.User,
		Expires:        data.ExpiresAt,
		OauthToken:     token.AccessToken,
		RefreshToken:   token.RefreshToken,
		LastUpdated:    s.now(),
	}
	if err := s.store.Upsert(ctx, row); err != nil {
		// The remote subscription exists but has no local record, so it will
		// never be renewed. Manual reconciliation target.
		log.Errorw("orphaned remote subscription: local persistence failed after remote create",
			"subscription_id", data.SubscriptionID, "domain", req.Domain, "err", err)
		return nil, fmt.Errorf("persist subscription %s: %w", data.SubscriptionID, err)
	}

	return &CreateResult{
		Status:         "success",
		SubscriptionID: data.SubscriptionID,
		Expires:        data.ExpiresAt,
	}, nil
}

// Delete removes a subscription remotely and locally. Refresh tokens rotate
// on use, so the fresh pair is persisted to the domain's sibling rows before
// the target row goes away.
func (s *Service) Delete(ctx context.Context, subscriptionID string) error {
	log := logctx.FromCtx(ctx, s.log)

	row, err := s.store.FindBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		return err
	}

	token, err := s.client.RefreshToken(ctx, row.RefreshToken)
	if err != nil {
		return fmt.Errorf("refresh token for delete: %w", err)
	}

	siblings, err := s.store.FindByDomain(ctx, row.Domain)
	if err != nil {
		return err
	}
	for _, sibling := range siblings {
		if sibling.SubscriptionID == subscriptionID {
			continue
		}
		if err := s.store.UpdateRenewal(ctx, sibling.SubscriptionID, sibling.Expires, token.AccessToken, token.RefreshToken, s.now()); err != nil {
			log.Errorw("failed to rotate sibling credentials", "subscription_id", sibling.SubscriptionID, "err", err)
		}
	}

	if err := s.client.DeleteSubscription(ctx, subscriptionID, row.Domain, token.AccessToken); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, subscriptionID); err != nil {
		log.Errorw("remote subscription deleted but local row remains",
			"subscription_id", subscriptionID, "err", err)
		return err
	}
	log.Infow("subscription deleted", "subscription_id", subscriptionID, "domain", row.Domain)
	return nil
}

// ListByDomain returns the domain's rows for administrative inspection.
func (s *Service) ListByDomain(ctx context.Context, domain string) ([]*models.Subscription, error) {
	return s.store.FindByDomain(ctx, domain)
}
