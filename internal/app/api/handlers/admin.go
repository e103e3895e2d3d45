package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	subsvc "github.com/DallanL/nms-like-n-subscribe/internal/app/service/subscription"
	"github.com/DallanL/nms-like-n-subscribe/internal/models"
	"github.com/DallanL/nms-like-n-subscribe/internal/store"
	"github.com/DallanL/nms-like-n-subscribe/pkg/response"
)

// SubscriptionItem is the administrative view of a stored subscription.
// Token columns are deliberately absent.
type SubscriptionItem struct {
	SubscriptionID string `json:"subscription_id"`
	Domain         string `json:"domain"`
	Model          string `json:"model"`
	PostURL        string `json:"post_url"`
	User           string `json:"user"`
	Expires        string `json:"expires"`
	LastUpdated    string `json:"last_updated"`
}

type ListSubscriptionsResponse struct {
	Items []*SubscriptionItem `json:"items"`
	Total int                 `json:"total"`
}

// @Summary      List subscriptions by domain
// @Description  Returns every locally tracked subscription for a domain.
// @Tags         Admin
// @Produce      json
// @Param        domain query string true "Domain to list"
// @Success      200  {object}  handlers.RespListSubscriptions
// @Router       /api/v1/admin/subscriptions [get]
func ApiAdminListSubscriptions(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		domain := c.Query("domain")
		if domain == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing domain"))
			return
		}

		rows, err := svc.ListByDomain(c.Request.Context(), domain)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		items := lo.Map(rows, func(row *models.Subscription, _ int) *SubscriptionItem {
			return &SubscriptionItem{
				SubscriptionID: row.SubscriptionID,
				Domain:         row.Domain,
				Model:          row.Model,
				PostURL:        row.PostURL,
				User:           row.User,
				Expires:        row.Expires,
				LastUpdated:    row.LastUpdated,
			}
		})
		c.JSON(http.StatusOK, response.OKT(&ListSubscriptionsResponse{Items: items, Total: len(items)}))
	}
}

// @Summary      Delete subscription
// @Description  Removes a subscription from the platform and the local store.
// @Tags         Admin
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/subscriptions/{id} [delete]
func ApiAdminDeleteSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if id == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing subscription id"))
			return
		}

		if err := svc.Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterAdminRoutes(r gin.IRouter, svc *subsvc.Service) {
	r.GET("/subscriptions", ApiAdminListSubscriptions(svc))
	r.DELETE("/subscriptions/:id", ApiAdminDeleteSubscription(svc))
}
