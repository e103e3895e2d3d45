package nms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/DallanL/nms-like-n-subscribe/pkg/config"
	"github.com/DallanL/nms-like-n-subscribe/pkg/timefmt"
)

const (
	tokensPath        = "/ns-api/v2/tokens"
	subscriptionsPath = "/ns-api/v2/subscriptions"

	requestTimeout = 30 * time.Second
)

// Client talks to the NMS v2 API. It holds no local state beyond the endpoint
// and OAuth client pair; every call is pure request/response.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	log          *zap.SugaredLogger
}

func NewClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.NMS.BaseURL, "/"),
		clientID:     cfg.NMS.ClientID,
		clientSecret: cfg.NMS.ClientSecret,
		httpClient:   &http.Client{Timeout: requestTimeout},
		log:          log,
	}
}

// TokenData is the token endpoint response. Expires is the absolute expiry in
// storage layout, computed from the platform's expires_in lifetime.
type TokenData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Expires      string `json:"-"`
}

// GetToken exchanges user credentials for a token pair (password grant).
func (c *Client) GetToken(ctx context.Context, username, password string) (*TokenData, error) {
	payload := map[string]string{
		"grant_type":    "password",
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
		"username":      username,
		"password":      password,
	}
	td, err := c.requestToken(ctx, payload, ErrAuthenticationFailed)
	if err != nil {
		c.log.Errorw("failed to retrieve token", "user", username, "err", err)
		return nil, err
	}
	return td, nil
}

// RefreshToken exchanges a refresh token for a fresh token pair. Refresh
// tokens rotate, so the caller must persist the returned pair.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenData, error) {
	payload := map[string]string{
		"grant_type":    "refresh_token",
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
		"refresh_token": refreshToken,
	}
	td, err := c.requestToken(ctx, payload, ErrTokenRefresh)
	if err != nil {
		c.log.Errorw("failed to refresh token", "err", err)
		return nil, err
	}
	return td, nil
}

func (c *Client) requestToken(ctx context.Context, payload map[string]string, kind error) (*TokenData, error) {
	status, body, err := c.do(ctx, http.MethodPost, c.baseURL+tokensPath, payload, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kind, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", kind, status, truncate(body))
	}
	var td TokenData
	if err := json.Unmarshal(body, &td); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", kind, err)
	}
	if td.AccessToken == "" {
		return nil, fmt.Errorf("%w: no access token in response", kind)
	}
	td.Expires = timefmt.Format(time.Now().Add(time.Duration(td.ExpiresIn) * time.Second))
	return &td, nil
}

// SubscriptionData is the create response with platform datetimes reformatted
// to the storage layout.
type SubscriptionData struct {
	SubscriptionID string
	Domain         string
	User           string
	Model          string
	PostURL        string
	CreatedAt      string
	ExpiresAt      string
}

type subscriptionResponse struct {
	ID       string `json:"id"`
	Domain   string `json:"domain"`
	User     string `json:"user"`
	Model    string `json:"model"`
	PostURL  string `json:"post_url"`
	Creation string `json:"subscription-creation-datetime"`
	Expires  string `json:"subscription-expires-datetime"`
}

// CreateSubscription registers a new subscription; the platform assigns the
// identifier, which becomes the permanent join key.
func (c *Client) CreateSubscription(ctx context.Context, model, postURL, domain, user, token string) (*SubscriptionData, error) {
	payload := map[string]string{
		"model":    model,
		"post_url": postURL,
		"domain":   domain,
	}
	// Domain-wide subscriptions carry no user.
	if user != "" {
		payload["user"] = user
	}
	status, body, err := c.do(ctx, http.MethodPost, c.baseURL+subscriptionsPath, payload, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteCreate, err)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, fmt.Errorf("%w: status %d: %s", ErrRemoteCreate, status, truncate(body))
	}

	var resp subscriptionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrRemoteCreate, err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: no subscription id in response", ErrRemoteCreate)
	}
	createdAt, err := reformatPlatformTime(resp.Creation)
	if err != nil {
		return nil, fmt.Errorf("%w: creation datetime: %v", ErrRemoteCreate, err)
	}
	expiresAt, err := reformatPlatformTime(resp.Expires)
	if err != nil {
		return nil, fmt.Errorf("%w: expires datetime: %v", ErrRemoteCreate, err)
	}

	c.log.Infow("subscription created",
		"subscription_id", resp.ID,
		"user", resp.User+"@"+resp.Domain,
		"expires", expiresAt,
	)
	return &SubscriptionData{
		SubscriptionID: resp.ID,
		Domain:         resp.Domain,
		User:           resp.User,
		Model:          resp.Model,
		PostURL:        resp.PostURL,
		CreatedAt:      createdAt,
		ExpiresAt:      expiresAt,
	}, nil
}

// UpdateSubscription pushes a new expiry to the platform. The platform
// acknowledges with 202; retrying with the same newExpire is safe.
func (c *Client) UpdateSubscription(ctx context.Context, subscriptionID, newExpire, token, domain string) error {
	payload := map[string]string{
		"subscription-expires-datetime": newExpire,
		"domain":                        domain,
	}
	url := c.baseURL + subscriptionsPath + "/" + subscriptionID
	status, body, err := c.do(ctx, http.MethodPut, url, payload, token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteUpdate, err)
	}
	if status != http.StatusAccepted {
		return fmt.Errorf("%w: status %d: %s", ErrRemoteUpdate, status, truncate(body))
	}
	c.log.Infow("subscription updated", "subscription_id", subscriptionID, "expires", newExpire)
	return nil
}

// DeleteSubscription removes a subscription from the platform (202 expected).
func (c *Client) DeleteSubscription(ctx context.Context, subscriptionID, domain, token string) error {
	url := c.baseURL + subscriptionsPath + "/" + subscriptionID
	status, body, err := c.do(ctx, http.MethodDelete, url, nil, token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteDelete, err)
	}
	if status != http.StatusAccepted {
		return fmt.Errorf("%w: status %d: %s", ErrRemoteDelete, status, truncate(body))
	}
	c.log.Infow("subscription deleted", "subscription_id", subscriptionID, "domain", domain)
	return nil
}

func (c *Client) do(ctx context.Context, method, url string, payload map[string]string, token string) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		reqBody = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

// reformatPlatformTime converts the platform's RFC3339 datetimes to the
// storage layout; values already in storage layout pass through unchanged.
func reformatPlatformTime(s string) (string, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return timefmt.Format(t), nil
	}
	t, err := timefmt.Parse(s)
	if err != nil {
		return "", err
	}
	return timefmt.Format(t), nil
}

func truncate(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
