package subscription

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DallanL/nms-like-n-subscribe/internal/models"
	"github.com/DallanL/nms-like-n-subscribe/internal/platform/nms"
	"github.com/DallanL/nms-like-n-subscribe/internal/store"
)

type fakeStore struct {
	rows       map[string]*models.Subscription
	upsertErr  error
	deleted    []string
	rotated    []string
	upsertedID string
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string]*models.Subscription{}}
}

func (s *fakeStore) Upsert(ctx context.Context, sub *models.Subscription) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.rows[sub.SubscriptionID] = sub
	s.upsertedID = sub.SubscriptionID
	return nil
}

func (s *fakeStore) FindBySubscriptionID(ctx context.Context, subscriptionID string) (*models.Subscription, error) {
	row, ok := s.rows[subscriptionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, subscriptionID)
	}
	return row, nil
}

func (s *fakeStore) FindByDomain(ctx context.Context, domain string) ([]*models.Subscription, error) {
	var out []*models.Subscription
	for _, row := range s.rows {
		if row.Domain == domain {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateRenewal(ctx context.Context, subscriptionID, expires, oauthToken, refreshToken, lastUpdated string) error {
	row, ok := s.rows[subscriptionID]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrNotFound, subscriptionID)
	}
	row.OauthToken = oauthToken
	row.RefreshToken = refreshToken
	row.Expires = expires
	s.rotated = append(s.rotated, subscriptionID)
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, subscriptionID string) error {
	delete(s.rows, subscriptionID)
	s.deleted = append(s.deleted, subscriptionID)
	return nil
}

type fakeClient struct {
	tokenErr    error
	createErr   error
	deleteCalls []string
	created     bool
}

func (c *fakeClient) GetToken(ctx context.Context, username, password string) (*nms.TokenData, error) {
	if c.tokenErr != nil {
		return nil, c.tokenErr
	}
	return &nms.TokenData{AccessToken: "at-1", RefreshToken: "rt-1", Expires: "2025-03-01 13:00:00"}, nil
}

func (c *fakeClient) RefreshToken(ctx context.Context, refreshToken string) (*nms.TokenData, error) {
	return &nms.TokenData{AccessToken: "at-2", RefreshToken: "rt-2", Expires: "2025-03-01 13:00:00"}, nil
}

func (c *fakeClient) CreateSubscription(ctx context.Context, model, postURL, domain, user, token string) (*nms.SubscriptionData, error) {
	if c.createErr != nil {
		return nil, c.createErr
	}
	c.created = true
	return &nms.SubscriptionData{
		SubscriptionID: "sub-123",
		Domain:         domain,
		User:           user,
		Model:          model,
		PostURL:        postURL,
		CreatedAt:      "2025-03-01 12:00:00",
		ExpiresAt:      "2025-03-02 12:00:00",
	}, nil
}

func (c *fakeClient) DeleteSubscription(ctx context.Context, subscriptionID, domain, token string) error {
	c.deleteCalls = append(c.deleteCalls, subscriptionID)
	return nil
}

func validRequest() *CreateRequest {
	return &CreateRequest{
		Domain:   "1234567890.com",
		Model:    "presence",
		PostURL:  "https://example.com/callback",
		User:     "1001",
		Username: "apiuser",
		Password: "strongpassword",
	}
}

func TestCreate_PersistsRowFromRemoteResponse(t *testing.T) {
	st := newFakeStore()
	client := &fakeClient{}
	svc := NewService(zap.NewNop().Sugar(), st, client)

	res, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, "success", res.Status)
	require.Equal(t, "sub-123", res.SubscriptionID)
	require.Equal(t, "2025-03-02 12:00:00", res.Expires)

	row := st.rows["sub-123"]
	require.NotNil(t, row)
	require.Equal(t, "at-1", row.OauthToken)
	require.Equal(t, "rt-1", row.RefreshToken)
	require.Equal(t, "2025-03-02 12:00:00", row.Expires)
}

func TestCreate_InvalidModelRejectedBeforeRemoteCalls(t *testing.T) {
	st := newFakeStore()
	client := &fakeClient{}
	svc := NewService(zap.NewNop().Sugar(), st, client)

	req := validRequest()
	req.Model = "telegraph"
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidModel)
	require.False(t, client.created)
}

func TestCreate_AuthFailureSurfacesAuthenticationError(t *testing.T) {
	st := newFakeStore()
	client := &fakeClient{tokenErr: fmt.Errorf("wrapped: %w", nms.ErrAuthenticationFailed)}
	svc := NewService(zap.NewNop().Sugar(), st, client)

	_, err := svc.Create(context.Background(), validRequest())
	require.ErrorIs(t, err, nms.ErrAuthenticationFailed)
	require.Empty(t, st.rows)
}

func TestCreate_RemoteCreateFailureWritesNoRow(t *testing.T) {
	st := newFakeStore()
	client := &fakeClient{createErr: fmt.Errorf("wrapped: %w", nms.ErrRemoteCreate)}
	svc := NewService(zap.NewNop().Sugar(), st, client)

	_, err := svc.Create(context.Background(), validRequest())
	require.ErrorIs(t, err, nms.ErrRemoteCreate)
	require.Empty(t, st.rows)
}

func TestCreate_PersistFailureIsReportedAsOrphan(t *testing.T) {
	st := newFakeStore()
	st.upsertErr = fmt.Errorf("wrapped: %w", store.ErrPersistence)
	client := &fakeClient{}
	svc := NewService(zap.NewNop().Sugar(), st, client)

	_, err := svc.Create(context.Background(), validRequest())
	require.ErrorIs(t, err, store.ErrPersistence)
	// The remote create already happened; no compensation is attempted.
	require.True(t, client.created)
	require.Empty(t, client.deleteCalls)
}

func TestDelete_RotatesSiblingCredentialsAndRemovesRow(t *testing.T) {
	st := newFakeStore()
	st.rows["sub-1"] = &models.Subscription{SubscriptionID: "sub-1", Domain: "1234567890.com", RefreshToken: "rt-a", Expires: "2025-03-02 12:00:00"}
	st.rows["sub-2"] = &models.Subscription{SubscriptionID: "sub-2", Domain: "1234567890.com", RefreshToken: "rt-a", Expires: "2025-03-02 12:00:00"}
	client := &fakeClient{}
	svc := NewService(zap.NewNop().Sugar(), st, client)

	require.NoError(t, svc.Delete(context.Background(), "sub-1"))
	require.Equal(t, []string{"sub-1"}, client.deleteCalls)
	require.Equal(t, []string{"sub-1"}, st.deleted)

	// The surviving sibling holds the rotated pair.
	require.Equal(t, []string{"sub-2"}, st.rotated)
	require.Equal(t, "rt-2", st.rows["sub-2"].RefreshToken)
}

func TestDelete_UnknownSubscription(t *testing.T) {
	svc := NewService(zap.NewNop().Sugar(), newFakeStore(), &fakeClient{})
	err := svc.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}
