package nms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cfgpkg "github.com/DallanL/nms-like-n-subscribe/pkg/config"
	"github.com/DallanL/nms-like-n-subscribe/pkg/timefmt"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := &cfgpkg.Config{NMS: cfgpkg.NMSConfig{
		BaseURL:      srv.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	}}
	return NewClient(cfg, zap.NewNop().Sugar()), srv
}

func TestGetToken_ComputesAbsoluteExpiry(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/ns-api/v2/tokens", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "password", payload["grant_type"])
		require.Equal(t, "client-id", payload["client_id"])
		require.Equal(t, "apiuser", payload["username"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at-1",
			"refresh_token": "rt-1",
			"expires_in":    3600,
		})
	}))

	before := time.Now()
	td, err := client.GetToken(context.Background(), "apiuser", "secret")
	require.NoError(t, err)
	require.Equal(t, "at-1", td.AccessToken)
	require.Equal(t, "rt-1", td.RefreshToken)

	expires, err := timefmt.Parse(td.Expires)
	require.NoError(t, err)
	require.WithinDuration(t, before.Add(time.Hour), expires, 2*time.Second)
}

func TestGetToken_NonSuccessIsAuthenticationError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))

	_, err := client.GetToken(context.Background(), "apiuser", "wrong")
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestGetToken_MissingAccessTokenIsAuthenticationError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"expires_in": 3600})
	}))

	_, err := client.GetToken(context.Background(), "apiuser", "secret")
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestRefreshToken_UsesRefreshGrant(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "refresh_token", payload["grant_type"])
		require.Equal(t, "rt-old", payload["refresh_token"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at-new",
			"refresh_token": "rt-new",
			"expires_in":    1800,
		})
	}))

	td, err := client.RefreshToken(context.Background(), "rt-old")
	require.NoError(t, err)
	require.Equal(t, "at-new", td.AccessToken)
	require.Equal(t, "rt-new", td.RefreshToken)
}

func TestRefreshToken_FailureIsTokenRefreshError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "refresh token expired", http.StatusBadRequest)
	}))

	_, err := client.RefreshToken(context.Background(), "rt-stale")
	require.ErrorIs(t, err, ErrTokenRefresh)
	require.False(t, errors.Is(err, ErrAuthenticationFailed))
}

func TestCreateSubscription_ReformatsPlatformDatetimes(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		require.Equal(t, "/ns-api/v2/subscriptions", r.URL.Path)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":                             "sub-123",
			"domain":                         "1234567890.com",
			"user":                           "1001",
			"model":                          "presence",
			"post_url":                       "https://example.com/callback",
			"subscription-creation-datetime": "2025-03-01T10:00:00Z",
			"subscription-expires-datetime":  "2025-03-02T10:00:00Z",
		})
	}))

	data, err := client.CreateSubscription(context.Background(), "presence", "https://example.com/callback", "1234567890.com", "1001", "at-1")
	require.NoError(t, err)
	require.Equal(t, "sub-123", data.SubscriptionID)
	require.Equal(t, "2025-03-01 10:00:00", data.CreatedAt)
	require.Equal(t, "2025-03-02 10:00:00", data.ExpiresAt)
}

func TestCreateSubscription_NonSuccessIsRemoteCreateError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))

	_, err := client.CreateSubscription(context.Background(), "presence", "https://example.com/cb", "1234567890.com", "1001", "at-1")
	require.ErrorIs(t, err, ErrRemoteCreate)
}

func TestUpdateSubscription_AcceptsOnly202(t *testing.T) {
	var gotBody map[string]string
	status := http.StatusAccepted
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/ns-api/v2/subscriptions/sub-123", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(status)
	}))

	err := client.UpdateSubscription(context.Background(), "sub-123", "2025-03-02 10:00:00", "at-1", "1234567890.com")
	require.NoError(t, err)
	require.Equal(t, "2025-03-02 10:00:00", gotBody["subscription-expires-datetime"])
	require.Equal(t, "1234567890.com", gotBody["domain"])

	// A plain 200 is not an acknowledgement for updates.
	status = http.StatusOK
	err = client.UpdateSubscription(context.Background(), "sub-123", "2025-03-02 10:00:00", "at-1", "1234567890.com")
	require.ErrorIs(t, err, ErrRemoteUpdate)
}

func TestDeleteSubscription_AcceptsOnly202(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusAccepted)
	}))

	require.NoError(t, client.DeleteSubscription(context.Background(), "sub-123", "1234567890.com", "at-1"))
}
