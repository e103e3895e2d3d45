package handlers

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRegisterRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterHealthRoutes(r)
	RegisterSubscriptionRoutes(r, nil)
	RegisterAdminRoutes(r.Group("/api/v1/admin"), nil)

	routes := r.Routes()
	contains := func(target string) bool {
		for _, rt := range routes {
			if rt.Method+" "+rt.Path == target {
				return true
			}
		}
		return false
	}

	require.True(t, contains("GET /healthz"))
	require.True(t, contains("GET /status"))
	require.True(t, contains("POST /create-subscription"))
	require.True(t, contains("GET /api/v1/admin/subscriptions"))
	require.True(t, contains("DELETE /api/v1/admin/subscriptions/:id"))
}
